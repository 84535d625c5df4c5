package calculator

import (
	"errors"

	"github.com/shopspring/decimal"
)

// DefaultTermYears is the mortgage term used when the caller has no better
// figure. Accounts carry no term of their own.
const DefaultTermYears = 20

// monthlyRatePrecision is the number of fractional digits kept on the
// monthly rate derived from an annual percentage.
const monthlyRatePrecision = 6

var (
	ErrInvalidMonths     = errors.New("calculator: months must be at least 1")
	ErrInvalidTerm       = errors.New("calculator: term must be at least 1 year")
	ErrNegativeRate      = errors.New("calculator: annual rate must not be negative")
	ErrNegativePrincipal = errors.New("calculator: principal must not be negative")
	ErrRateUndefined     = errors.New("calculator: annual rate must be positive")
	ErrNotSavings        = errors.New("calculator: account is not a saving account")
)

var (
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
)

// MonthlyRate converts an annual percentage rate into the monthly fraction
// used for compounding, rounded half-up to six fractional digits.
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.Div(hundred).DivRound(monthsInYear, monthlyRatePrecision)
}
