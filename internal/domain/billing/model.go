package billing

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeStatus is the settlement state of a charge. The set is closed: a
// charge is pending until it settles, then completed forever.
type ChargeStatus string

const (
	StatusPending   ChargeStatus = "pending"
	StatusCompleted ChargeStatus = "completed"
)

// Charge is a bill raised against a patient for a medical record.
type Charge struct {
	ID            uuid.UUID       `json:"id"`
	PatientID     uuid.UUID       `json:"patient_id"`
	RecordID      uuid.UUID       `json:"record_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        ChargeStatus    `json:"status"`
	SettlementRef *uuid.UUID      `json:"settlement_ref,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	SettledAt     *time.Time      `json:"settled_at,omitempty"`
}

var (
	// ErrNotFound is returned when no charge matches.
	ErrNotFound = errors.New("charge not found")
	// ErrAlreadySettled is returned when a completed charge is settled again.
	ErrAlreadySettled = errors.New("charge already settled")
	// ErrInvalidAmount is returned for zero or negative charge amounts.
	ErrInvalidAmount = errors.New("charge amount must be positive")
)
