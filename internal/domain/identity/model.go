package identity

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/healthrec/ehr/internal/platform/auth"
)

// Account is a login-capable identity. Role-specific fields are nil for the
// roles they do not apply to.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Role         auth.Role `json:"role"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`

	// Patient profile.
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Address     *string    `json:"address,omitempty"`
	Phone       *string    `json:"phone,omitempty"`

	// Doctor profile.
	Specialization *string `json:"specialization,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

var (
	// ErrNotFound is returned when no account matches.
	ErrNotFound = errors.New("account not found")
	// ErrEmailTaken is returned when an email is already registered for the role.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned for a bad email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
