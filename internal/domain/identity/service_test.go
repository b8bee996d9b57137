package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/healthrec/ehr/internal/domain/ledger"
	"github.com/healthrec/ehr/internal/platform/auth"
)

type accountKey struct {
	role  auth.Role
	email string
}

type mockRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*Account
	byEmail map[accountKey]*Account
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		byID:    make(map[uuid.UUID]*Account),
		byEmail: make(map[accountKey]*Account),
	}
}

func (m *mockRepo) Create(_ context.Context, a *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := accountKey{a.Role, a.Email}
	if _, ok := m.byEmail[key]; ok {
		return ErrEmailTaken
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	cp := *a
	m.byID[a.ID] = &cp
	m.byEmail[key] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, role auth.Role, email string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byEmail[accountKey{role, email}]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, role auth.Role, limit, offset int) ([]*Account, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Account
	for _, a := range m.byID {
		if a.Role == role {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

type mockWalletRepo struct {
	mu      sync.Mutex
	wallets map[ledger.Owner]*ledger.Wallet
}

func newMockWalletRepo() *mockWalletRepo {
	return &mockWalletRepo{wallets: make(map[ledger.Owner]*ledger.Wallet)}
}

func (m *mockWalletRepo) GetOrCreate(_ context.Context, owner ledger.Owner) (*ledger.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.wallets[owner]; ok {
		cp := *w
		return &cp, nil
	}
	w := &ledger.Wallet{ID: uuid.New(), OwnerKind: owner.Kind, OwnerID: owner.ID}
	m.wallets[owner] = w
	cp := *w
	return &cp, nil
}

func (m *mockWalletRepo) GetByOwner(_ context.Context, owner ledger.Owner) (*ledger.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[owner]
	if !ok {
		return nil, ledger.ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *mockWalletRepo) Credit(context.Context, ledger.Owner, decimal.Decimal) (*ledger.Wallet, error) {
	panic("not used")
}

func (m *mockWalletRepo) Debit(context.Context, ledger.Owner, decimal.Decimal) (*ledger.Wallet, error) {
	panic("not used")
}

func newTestService(t *testing.T) (*Service, *mockWalletRepo) {
	t.Helper()
	walletRepo := newMockWalletRepo()
	tokens := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	svc := NewService(newMockRepo(), ledger.NewService(walletRepo), tokens)
	return svc, walletRepo
}

func TestSignupPatientProvisionsWallet(t *testing.T) {
	svc, wallets := newTestService(t)
	ctx := context.Background()

	a, err := svc.SignupPatient(ctx, PatientSignup{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("SignupPatient: %v", err)
	}
	if a.Role != auth.RolePatient {
		t.Errorf("role = %s, want patient", a.Role)
	}
	if a.PasswordHash == "correct-horse" {
		t.Error("password must be stored hashed")
	}

	if _, err := wallets.GetByOwner(ctx, ledger.PatientOwner(a.ID)); err != nil {
		t.Errorf("expected wallet provisioned at signup: %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  PatientSignup
	}{
		{"missing name", PatientSignup{Email: "a@example.com", Password: "longenough"}},
		{"bad email", PatientSignup{Name: "A", Email: "not-an-email", Password: "longenough"}},
		{"short password", PatientSignup{Name: "A", Email: "a@example.com", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SignupPatient(ctx, tt.req); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := PatientSignup{Name: "Ada", Email: "ada@example.com", Password: "correct-horse"}
	if _, err := svc.SignupPatient(ctx, req); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := svc.SignupPatient(ctx, req); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("second signup: expected ErrEmailTaken, got %v", err)
	}

	// The same email may register under a different role.
	if _, err := svc.SignupDoctor(ctx, DoctorSignup{
		Name: "Dr. Ada", Email: "ada@example.com", Password: "correct-horse",
	}); err != nil {
		t.Fatalf("doctor signup with same email: %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.SignupPatient(ctx, PatientSignup{
		Name: "Ada", Email: "Ada@Example.com", Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("SignupPatient: %v", err)
	}

	// Email matching is case-insensitive.
	got, token, err := svc.Login(ctx, auth.RolePatient, "ada@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("logged-in account = %s, want %s", got.ID, a.ID)
	}
	if token == "" {
		t.Error("expected a session token")
	}

	if _, _, err := svc.Login(ctx, auth.RolePatient, "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, auth.RoleDoctor, "ada@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong role: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, auth.RolePatient, "nobody@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}
