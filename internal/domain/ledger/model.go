package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OwnerKind distinguishes patient wallets from the collection wallet.
type OwnerKind string

const (
	OwnerPatient OwnerKind = "patient"
	OwnerAdmin   OwnerKind = "admin"
)

// Owner identifies a wallet owner. There is exactly one wallet per owner.
type Owner struct {
	Kind OwnerKind `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// CollectionOwner is the singleton owner of the collection wallet that
// receives settled payments.
var CollectionOwner = Owner{Kind: OwnerAdmin, ID: uuid.Nil}

// PatientOwner returns the owner key for a patient's wallet.
func PatientOwner(patientID uuid.UUID) Owner {
	return Owner{Kind: OwnerPatient, ID: patientID}
}

// Wallet is a money balance owned by a patient or by the collection account.
// Balances never go negative; the repository enforces that on every debit.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	OwnerKind OwnerKind       `json:"owner_kind"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Owner returns the wallet's owner key.
func (w *Wallet) Owner() Owner {
	return Owner{Kind: w.OwnerKind, ID: w.OwnerID}
}

var (
	// ErrInvalidAmount is returned for zero or negative amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInsufficientFunds is returned when a debit exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrWalletNotFound is returned when no wallet exists for the owner.
	ErrWalletNotFound = errors.New("wallet not found")
)
