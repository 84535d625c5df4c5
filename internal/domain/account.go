package domain

import (
	"fmt"

	"github.com/aarondl/opt/omit"
	"github.com/shopspring/decimal"
)

// AccountType represents the kind of account held at the bank.
type AccountType int8

const (
	AccountTypeChecking AccountType = iota
	AccountTypeSaving
	AccountTypeMortgage
)

func (t AccountType) String() string {
	switch t {
	case AccountTypeChecking:
		return "CHECKING"
	case AccountTypeSaving:
		return "SAVING"
	case AccountTypeMortgage:
		return "MORTGAGE"
	default:
		return fmt.Sprintf("AccountType(%d)", int8(t))
	}
}

// HasInterest reports whether accounts of this type carry an annual interest rate.
func (t AccountType) HasInterest() bool {
	return t == AccountTypeSaving || t == AccountTypeMortgage
}

// ParseAccountType converts the backend representation of an account type.
func ParseAccountType(s string) (AccountType, error) {
	switch s {
	case "CHECKING":
		return AccountTypeChecking, nil
	case "SAVING":
		return AccountTypeSaving, nil
	case "MORTGAGE":
		return AccountTypeMortgage, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAccountType, s)
	}
}

// Account is an immutable snapshot of one account as supplied by the backend.
// Mortgage balances are stored as the negative of the outstanding principal.
type Account struct {
	ID            string
	OwnerID       string
	AccountNumber string
	Type          AccountType
	Balance       decimal.Decimal
	InterestRate  omit.Val[decimal.Decimal]
	Currency      string
	Active        bool
}

// Validate checks the account invariants.
func (a Account) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidAccount)
	}

	switch a.Type {
	case AccountTypeChecking, AccountTypeSaving, AccountTypeMortgage:
	default:
		return fmt.Errorf("%w: %v", ErrUnknownAccountType, a.Type)
	}

	if a.InterestRate.IsValue() && !a.Type.HasInterest() {
		return fmt.Errorf("account %s: %w", a.ID, ErrRateNotAllowed)
	}

	return nil
}

// AnnualRate returns the annual interest rate in percent, if the account has one.
func (a Account) AnnualRate() (decimal.Decimal, bool) {
	return a.InterestRate.Get()
}

// OutstandingPrincipal returns the loan principal still owed on a mortgage account.
// For other account types it returns zero.
func (a Account) OutstandingPrincipal() decimal.Decimal {
	if a.Type != AccountTypeMortgage {
		return decimal.Zero
	}
	return a.Balance.Abs()
}
