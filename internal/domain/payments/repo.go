package payments

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores the settlement log.
type Repository interface {
	Insert(ctx context.Context, s *Settlement) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Settlement, int, error)
}
