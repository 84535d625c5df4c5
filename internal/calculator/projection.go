package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/banking-core/internal/domain"
)

// ProjectionEntry is one month of a savings projection.
type ProjectionEntry struct {
	Month              int
	EndingBalance      decimal.Decimal
	MonthlyInterest    decimal.Decimal
	CumulativeInterest decimal.Decimal
}

// Project computes a month-by-month schedule of interest compounded monthly
// on the running balance. A zero rate or zero principal yields entries with
// zero interest rather than an error.
func Project(principal, annualRatePercent decimal.Decimal, months int) ([]ProjectionEntry, error) {
	if months < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMonths, months)
	}
	if annualRatePercent.IsNegative() {
		return nil, fmt.Errorf("%w: got %s", ErrNegativeRate, annualRatePercent)
	}

	monthlyRate := MonthlyRate(annualRatePercent)
	balance := principal
	cumulative := decimal.Zero

	entries := make([]ProjectionEntry, months)
	for i := range entries {
		interest := balance.Mul(monthlyRate)
		balance = balance.Add(interest)
		cumulative = cumulative.Add(interest)

		entries[i] = ProjectionEntry{
			Month:              i + 1,
			EndingBalance:      balance,
			MonthlyInterest:    interest,
			CumulativeInterest: cumulative,
		}
	}

	return entries, nil
}

// ProjectAccount projects a saving account from its current balance and rate.
func ProjectAccount(account domain.Account, months int) ([]ProjectionEntry, error) {
	if account.Type != domain.AccountTypeSaving {
		return nil, fmt.Errorf("account %s (%s): %w", account.ID, account.Type, ErrNotSavings)
	}

	rate, ok := account.AnnualRate()
	if !ok {
		return nil, fmt.Errorf("account %s: %w", account.ID, ErrRateUndefined)
	}

	return Project(account.Balance, rate, months)
}
