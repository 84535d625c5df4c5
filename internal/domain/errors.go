package domain

import "errors"

var (
	// Lookup errors
	ErrNotFound = errors.New("not found")

	// Account errors
	ErrInvalidAccount     = errors.New("invalid account")
	ErrUnknownAccountType = errors.New("unknown account type")
	ErrRateNotAllowed     = errors.New("interest rate is only allowed on saving and mortgage accounts")

	// Transaction errors
	ErrUnknownTransactionType   = errors.New("unknown transaction type")
	ErrUnknownTransactionStatus = errors.New("unknown transaction status")
)
