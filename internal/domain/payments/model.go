package payments

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settlement is the durable record of one completed payment. Ref is minted
// fresh for each settlement and unique across the table.
type Settlement struct {
	Ref       uuid.UUID       `json:"ref"`
	ChargeID  uuid.UUID       `json:"charge_id"`
	PatientID uuid.UUID       `json:"patient_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// Receipt is what a successful payment returns to the caller.
type Receipt struct {
	ChargeID      uuid.UUID       `json:"charge_id"`
	Amount        decimal.Decimal `json:"amount"`
	SettlementRef uuid.UUID       `json:"settlement_ref"`
	PaidAt        time.Time       `json:"paid_at"`
}

// ErrAmountMismatch is returned when the offered amount differs from the
// charge amount. Partial payments are not accepted.
var ErrAmountMismatch = errors.New("payment amount does not match charge amount")
