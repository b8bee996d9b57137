package identity

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/healthrec/ehr/internal/domain/ledger"
	"github.com/healthrec/ehr/internal/platform/auth"
)

type Service struct {
	accounts Repository
	wallets  *ledger.Service
	tokens   *auth.TokenIssuer
}

func NewService(accounts Repository, wallets *ledger.Service, tokens *auth.TokenIssuer) *Service {
	return &Service{accounts: accounts, wallets: wallets, tokens: tokens}
}

// PatientSignup carries a patient registration.
type PatientSignup struct {
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Address     *string    `json:"address,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
}

// DoctorSignup carries a doctor registration.
type DoctorSignup struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	Specialization *string `json:"specialization,omitempty"`
}

// SignupPatient registers a patient and provisions their wallet so the first
// balance read never sees a missing wallet.
func (s *Service) SignupPatient(ctx context.Context, req PatientSignup) (*Account, error) {
	a := &Account{
		Role:        auth.RolePatient,
		Name:        req.Name,
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
		Address:     req.Address,
		Phone:       req.Phone,
	}
	if err := s.register(ctx, a, req.Password); err != nil {
		return nil, err
	}

	if _, err := s.wallets.EnsureWallet(ctx, ledger.PatientOwner(a.ID)); err != nil {
		return nil, fmt.Errorf("provision wallet: %w", err)
	}
	return a, nil
}

// SignupDoctor registers a doctor.
func (s *Service) SignupDoctor(ctx context.Context, req DoctorSignup) (*Account, error) {
	a := &Account{
		Role:           auth.RoleDoctor,
		Name:           req.Name,
		Email:          req.Email,
		Specialization: req.Specialization,
	}
	if err := s.register(ctx, a, req.Password); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateAdmin registers an admin account. Only reachable through admin-gated
// routes.
func (s *Service) CreateAdmin(ctx context.Context, name, email, password string) (*Account, error) {
	a := &Account{Role: auth.RoleAdmin, Name: name, Email: email}
	if err := s.register(ctx, a, password); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) register(ctx context.Context, a *Account, password string) error {
	a.Name = strings.TrimSpace(a.Name)
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))

	if a.Name == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := mail.ParseAddress(a.Email); err != nil {
		return fmt.Errorf("invalid email address")
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	a.PasswordHash = hash

	return s.accounts.Create(ctx, a)
}

// Login verifies credentials for the given role and issues a session token.
// A wrong role, unknown email, or wrong password all produce the same error.
func (s *Service) Login(ctx context.Context, role auth.Role, email, password string) (*Account, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	a, err := s.accounts.GetByEmail(ctx, role, email)
	if err != nil {
		if err == ErrNotFound {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !auth.CheckPassword(a.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(a.ID, a.Role, a.Name)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return a, token, nil
}

func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// ListByRole returns accounts of one role, for admin and doctor directories.
func (s *Service) ListByRole(ctx context.Context, role auth.Role, limit, offset int) ([]*Account, int, error) {
	return s.accounts.List(ctx, role, limit, offset)
}
