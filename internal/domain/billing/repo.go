package billing

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores charges.
type Repository interface {
	Create(ctx context.Context, ch *Charge) error

	// GetByID returns the charge or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Charge, error)

	// GetByIDForUpdate returns the charge with a row lock held for the
	// duration of the ambient transaction. ErrNotFound when absent.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Charge, error)

	ListPending(ctx context.Context, patientID uuid.UUID) ([]*Charge, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Charge, int, error)
	List(ctx context.Context, limit, offset int) ([]*Charge, int, error)

	// MarkCompleted flips a pending charge to completed, recording the
	// settlement reference. ErrNotFound when absent, ErrAlreadySettled
	// when the charge is no longer pending.
	MarkCompleted(ctx context.Context, id uuid.UUID, settlementRef uuid.UUID) error
}
