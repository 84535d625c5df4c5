package account

import (
	"github.com/carson-networks/banking-core/internal/storage/account"
)

// Account is the API response model for an account.
type Account struct {
	ID            string  `json:"id" doc:"Account UUID"`
	OwnerID       string  `json:"ownerId" doc:"Owner the account belongs to"`
	AccountNumber string  `json:"accountNumber" doc:"Number used as a transfer destination"`
	Type          string  `json:"type" enum:"CHECKING,SAVING,MORTGAGE" doc:"Account type"`
	Balance       string  `json:"balance" doc:"Decimal balance, negative for outstanding mortgage principal"`
	InterestRate  *string `json:"interestRate,omitempty" doc:"Annual rate in percent, saving and mortgage accounts only"`
	Currency      string  `json:"currency" doc:"ISO currency code"`
	Active        bool    `json:"active" doc:"Whether the account can send money"`
}

func fromStorage(a *account.Account) Account {
	out := Account{
		ID:            a.ID.String(),
		OwnerID:       a.OwnerID,
		AccountNumber: a.AccountNumber,
		Type:          a.Type,
		Balance:       a.Balance.String(),
		Currency:      a.Currency,
		Active:        a.Active,
	}
	if a.InterestRate.Valid {
		rate := a.InterestRate.Decimal.String()
		out.InterestRate = &rate
	}
	return out
}
