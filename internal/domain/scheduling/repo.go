package scheduling

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores appointments.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error

	// GetByID returns the appointment or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	Update(ctx context.Context, a *Appointment) error

	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
}
