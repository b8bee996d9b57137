package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

type Service struct {
	wallets Repository
}

func NewService(wallets Repository) *Service {
	return &Service{wallets: wallets}
}

// EnsureWallet returns the owner's wallet, provisioning an empty one on first
// use. Every collaborator goes through this before reading a balance, so a
// missing wallet and a zero balance look the same to callers.
func (s *Service) EnsureWallet(ctx context.Context, owner Owner) (*Wallet, error) {
	return s.wallets.GetOrCreate(ctx, owner)
}

// Balance returns the owner's current balance, provisioning the wallet if
// needed.
func (s *Service) Balance(ctx context.Context, owner Owner) (decimal.Decimal, error) {
	w, err := s.EnsureWallet(ctx, owner)
	if err != nil {
		return decimal.Zero, err
	}
	return w.Balance, nil
}

// Credit adds amount to the owner's wallet.
func (s *Service) Credit(ctx context.Context, owner Owner, amount decimal.Decimal) (*Wallet, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return s.wallets.Credit(ctx, owner, amount)
}

// Debit subtracts amount from the owner's wallet, never below zero.
func (s *Service) Debit(ctx context.Context, owner Owner, amount decimal.Decimal) (*Wallet, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return s.wallets.Debit(ctx, owner, amount)
}
