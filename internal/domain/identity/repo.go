package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/healthrec/ehr/internal/platform/auth"
)

// Repository stores accounts.
type Repository interface {
	// Create inserts the account. ErrEmailTaken when the email is already
	// registered for the same role.
	Create(ctx context.Context, a *Account) error

	// GetByID returns the account or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetByEmail returns the account registered under the role and email,
	// or ErrNotFound.
	GetByEmail(ctx context.Context, role auth.Role, email string) (*Account, error)

	// List returns accounts of the given role.
	List(ctx context.Context, role auth.Role, limit, offset int) ([]*Account, int, error)
}
