package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository stores wallets. Credit and Debit are single atomic statements so
// concurrent movements never lose updates.
type Repository interface {
	// GetOrCreate returns the owner's wallet, creating it with a zero
	// balance if it does not exist. Safe under concurrent calls for the
	// same owner.
	GetOrCreate(ctx context.Context, owner Owner) (*Wallet, error)

	// GetByOwner returns the owner's wallet or ErrWalletNotFound.
	GetByOwner(ctx context.Context, owner Owner) (*Wallet, error)

	// Credit adds amount to the owner's balance and returns the updated
	// wallet. Returns ErrWalletNotFound if no wallet exists.
	Credit(ctx context.Context, owner Owner, amount decimal.Decimal) (*Wallet, error)

	// Debit subtracts amount from the owner's balance, refusing to go
	// negative. Returns ErrInsufficientFunds when the balance is too low
	// and ErrWalletNotFound when no wallet exists.
	Debit(ctx context.Context, owner Owner, amount decimal.Decimal) (*Wallet, error)
}
