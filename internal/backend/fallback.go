package backend

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/aarondl/opt/omit"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/banking-core/internal/domain"
)

// FallbackProvider supplies account data when the backend is unreachable.
// It is an explicit offline strategy; nothing uses it unless it is injected.
type FallbackProvider interface {
	Accounts(ownerID string) ([]domain.Account, error)
}

// StaticFallback serves a fixed set of accounts, typically for offline demos.
type StaticFallback struct {
	accounts []domain.Account
}

type fallbackFile struct {
	Accounts []fallbackAccount `toml:"accounts"`
}

type fallbackAccount struct {
	ID            string `toml:"id"`
	OwnerID       string `toml:"owner_id"`
	AccountNumber string `toml:"account_number"`
	Type          string `toml:"type"`
	Balance       string `toml:"balance"`
	InterestRate  string `toml:"interest_rate"`
	Currency      string `toml:"currency"`
	Active        bool   `toml:"active"`
}

func NewStaticFallback(accounts []domain.Account) *StaticFallback {
	return &StaticFallback{accounts: accounts}
}

// LoadStaticFallback reads [[accounts]] tables from a TOML file.
func LoadStaticFallback(path string) (*StaticFallback, error) {
	var file fallbackFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("load fallback %s: %w", path, err)
	}

	accounts := make([]domain.Account, 0, len(file.Accounts))
	for i, raw := range file.Accounts {
		account, err := raw.toDomain()
		if err != nil {
			return nil, fmt.Errorf("load fallback %s: account %d: %w", path, i, err)
		}
		accounts = append(accounts, account)
	}

	return NewStaticFallback(accounts), nil
}

// Accounts returns the accounts owned by ownerID. An empty ownerID matches
// every account.
func (f *StaticFallback) Accounts(ownerID string) ([]domain.Account, error) {
	result := make([]domain.Account, 0, len(f.accounts))
	for _, account := range f.accounts {
		if ownerID == "" || account.OwnerID == ownerID {
			result = append(result, account)
		}
	}
	return result, nil
}

func (a fallbackAccount) toDomain() (domain.Account, error) {
	accountType, err := domain.ParseAccountType(a.Type)
	if err != nil {
		return domain.Account{}, err
	}

	balance, err := decimal.NewFromString(a.Balance)
	if err != nil {
		return domain.Account{}, fmt.Errorf("balance: %w", err)
	}

	var rate omit.Val[decimal.Decimal]
	if a.InterestRate != "" {
		parsed, err := decimal.NewFromString(a.InterestRate)
		if err != nil {
			return domain.Account{}, fmt.Errorf("interest_rate: %w", err)
		}
		rate = omit.From(parsed)
	}

	account := domain.Account{
		ID:            a.ID,
		OwnerID:       a.OwnerID,
		AccountNumber: a.AccountNumber,
		Type:          accountType,
		Balance:       balance,
		InterestRate:  rate,
		Currency:      a.Currency,
		Active:        a.Active,
	}
	return account, account.Validate()
}
