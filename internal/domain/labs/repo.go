package labs

import (
	"context"

	"github.com/google/uuid"
)

// CatalogRepository stores the lab-test catalog.
type CatalogRepository interface {
	Create(ctx context.Context, t *LabTest) error

	// GetByID returns the test or ErrTestNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*LabTest, error)

	Update(ctx context.Context, t *LabTest) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*LabTest, int, error)
}

// AssignmentRepository stores test assignments and their results.
type AssignmentRepository interface {
	Create(ctx context.Context, a *Assignment) error

	// GetByID returns the assignment or ErrAssignmentNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Assignment, error)

	// SetResult records the result on an assigned test exactly once.
	// ErrAssignmentNotFound when absent, ErrResultRecorded when already
	// completed.
	SetResult(ctx context.Context, id uuid.UUID, result string) error

	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Assignment, int, error)
	ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*Assignment, error)
}
