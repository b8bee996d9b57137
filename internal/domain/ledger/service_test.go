package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// mockRepo is an in-memory Repository with the same atomicity guarantees the
// SQL implementation gets from single-statement updates.
type mockRepo struct {
	mu      sync.Mutex
	wallets map[Owner]*Wallet
}

func newMockRepo() *mockRepo {
	return &mockRepo{wallets: make(map[Owner]*Wallet)}
}

func (m *mockRepo) GetOrCreate(_ context.Context, owner Owner) (*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.wallets[owner]; ok {
		cp := *w
		return &cp, nil
	}
	w := &Wallet{ID: uuid.New(), OwnerKind: owner.Kind, OwnerID: owner.ID, Balance: decimal.Zero}
	m.wallets[owner] = w
	cp := *w
	return &cp, nil
}

func (m *mockRepo) GetByOwner(_ context.Context, owner Owner) (*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[owner]
	if !ok {
		return nil, ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *mockRepo) Credit(_ context.Context, owner Owner, amount decimal.Decimal) (*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[owner]
	if !ok {
		return nil, ErrWalletNotFound
	}
	w.Balance = w.Balance.Add(amount)
	cp := *w
	return &cp, nil
}

func (m *mockRepo) Debit(_ context.Context, owner Owner, amount decimal.Decimal) (*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[owner]
	if !ok {
		return nil, ErrWalletNotFound
	}
	if w.Balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}
	w.Balance = w.Balance.Sub(amount)
	cp := *w
	return &cp, nil
}

func TestEnsureWalletIsIdempotent(t *testing.T) {
	svc := NewService(newMockRepo())
	owner := PatientOwner(uuid.New())

	first, err := svc.EnsureWallet(context.Background(), owner)
	if err != nil {
		t.Fatalf("EnsureWallet: %v", err)
	}
	if !first.Balance.IsZero() {
		t.Errorf("new wallet balance = %s, want 0", first.Balance)
	}

	second, err := svc.EnsureWallet(context.Background(), owner)
	if err != nil {
		t.Fatalf("EnsureWallet (again): %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("repeated EnsureWallet returned different wallets: %s vs %s", first.ID, second.ID)
	}
}

func TestEnsureWalletConcurrent(t *testing.T) {
	svc := NewService(newMockRepo())
	owner := PatientOwner(uuid.New())

	const n = 20
	ids := make(chan uuid.UUID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, err := svc.EnsureWallet(context.Background(), owner)
			if err != nil {
				t.Errorf("EnsureWallet: %v", err)
				return
			}
			ids <- w.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uuid.UUID]bool)
	for id := range ids {
		seen[id] = true
	}
	if len(seen) != 1 {
		t.Errorf("expected a single wallet, got %d distinct ids", len(seen))
	}
}

func TestCreditAndDebit(t *testing.T) {
	svc := NewService(newMockRepo())
	owner := PatientOwner(uuid.New())
	ctx := context.Background()

	if _, err := svc.EnsureWallet(ctx, owner); err != nil {
		t.Fatalf("EnsureWallet: %v", err)
	}

	w, err := svc.Credit(ctx, owner, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if !w.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance after credit = %s, want 100", w.Balance)
	}

	w, err = svc.Debit(ctx, owner, decimal.NewFromInt(60))
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if !w.Balance.Equal(decimal.NewFromInt(40)) {
		t.Errorf("balance after debit = %s, want 40", w.Balance)
	}
}

func TestDebitInsufficientFunds(t *testing.T) {
	svc := NewService(newMockRepo())
	owner := PatientOwner(uuid.New())
	ctx := context.Background()

	if _, err := svc.EnsureWallet(ctx, owner); err != nil {
		t.Fatalf("EnsureWallet: %v", err)
	}
	if _, err := svc.Credit(ctx, owner, decimal.NewFromInt(30)); err != nil {
		t.Fatalf("Credit: %v", err)
	}

	_, err := svc.Debit(ctx, owner, decimal.NewFromInt(60))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// The failed debit must not have moved the balance.
	bal, err := svc.Balance(ctx, owner)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !bal.Equal(decimal.NewFromInt(30)) {
		t.Errorf("balance after failed debit = %s, want 30", bal)
	}
}

func TestInvalidAmounts(t *testing.T) {
	svc := NewService(newMockRepo())
	owner := PatientOwner(uuid.New())
	ctx := context.Background()

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		if _, err := svc.Credit(ctx, owner, amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Credit(%s): expected ErrInvalidAmount, got %v", amount, err)
		}
		if _, err := svc.Debit(ctx, owner, amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Debit(%s): expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestDebitMissingWallet(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Debit(context.Background(), PatientOwner(uuid.New()), decimal.NewFromInt(10))
	if !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("expected ErrWalletNotFound, got %v", err)
	}
}
