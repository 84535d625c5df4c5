package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/banking-core/internal/domain"
)

// AmortizationRow splits one scheduled payment into interest and principal.
type AmortizationRow struct {
	Month            int
	Payment          decimal.Decimal
	Interest         decimal.Decimal
	Principal        decimal.Decimal
	RemainingBalance decimal.Decimal
}

// MonthlyPayment returns the fixed monthly payment that retires the principal
// over termYears at the given annual rate, using the annuity formula
//
//	payment = P * r * (1+r)^n / ((1+r)^n - 1)
//
// rounded half-up to whole currency units.
func MonthlyPayment(outstandingPrincipal, annualRatePercent decimal.Decimal, termYears int) (decimal.Decimal, error) {
	if outstandingPrincipal.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrNegativePrincipal, outstandingPrincipal)
	}
	if !annualRatePercent.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrRateUndefined, annualRatePercent)
	}
	if termYears < 1 {
		return decimal.Zero, fmt.Errorf("%w: got %d", ErrInvalidTerm, termYears)
	}

	r := MonthlyRate(annualRatePercent)
	if r.IsZero() {
		// Rates below the monthly precision round away entirely.
		return decimal.Zero, fmt.Errorf("%w: %s rounds to a zero monthly rate", ErrRateUndefined, annualRatePercent)
	}

	n := decimal.NewFromInt(int64(termYears) * 12)
	factor := decimal.NewFromInt(1).Add(r).Pow(n)

	payment := outstandingPrincipal.Mul(r).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))
	return payment.Round(0), nil
}

// MortgagePayment returns the monthly payment for a mortgage account.
// ok is false when the account is not a mortgage or has no positive rate, in
// which case the payment is undefined.
func MortgagePayment(account domain.Account, termYears int) (payment decimal.Decimal, ok bool) {
	if account.Type != domain.AccountTypeMortgage {
		return decimal.Zero, false
	}

	rate, hasRate := account.AnnualRate()
	if !hasRate || !rate.IsPositive() {
		return decimal.Zero, false
	}

	payment, err := MonthlyPayment(account.OutstandingPrincipal(), rate, termYears)
	if err != nil {
		return decimal.Zero, false
	}
	return payment, true
}

// Schedule lays out every payment of the loan. The last row absorbs the
// rounding of the fixed payment so the remaining balance ends at zero.
func Schedule(outstandingPrincipal, annualRatePercent decimal.Decimal, termYears int) ([]AmortizationRow, error) {
	payment, err := MonthlyPayment(outstandingPrincipal, annualRatePercent, termYears)
	if err != nil {
		return nil, err
	}

	r := MonthlyRate(annualRatePercent)
	balance := outstandingPrincipal
	rows := make([]AmortizationRow, termYears*12)

	for i := range rows {
		interest := balance.Mul(r).Round(2)
		principal := payment.Sub(interest)
		if i == len(rows)-1 || principal.GreaterThan(balance) {
			principal = balance
		}
		balance = balance.Sub(principal)

		rows[i] = AmortizationRow{
			Month:            i + 1,
			Payment:          principal.Add(interest),
			Interest:         interest,
			Principal:        principal,
			RemainingBalance: balance,
		}
	}

	return rows, nil
}
