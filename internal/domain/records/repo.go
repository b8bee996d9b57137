package records

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores medical records.
type Repository interface {
	Create(ctx context.Context, rec *MedicalRecord) error

	// GetByID returns the record or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)

	Update(ctx context.Context, rec *MedicalRecord) error
	Delete(ctx context.Context, id uuid.UUID) error

	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error)
	List(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error)
}
