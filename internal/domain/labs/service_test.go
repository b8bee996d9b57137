package labs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type mockCatalog struct {
	mu    sync.Mutex
	tests map[uuid.UUID]*LabTest
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{tests: make(map[uuid.UUID]*LabTest)}
}

func (m *mockCatalog) Create(_ context.Context, t *LabTest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	cp := *t
	m.tests[t.ID] = &cp
	return nil
}

func (m *mockCatalog) GetByID(_ context.Context, id uuid.UUID) (*LabTest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tests[id]
	if !ok {
		return nil, ErrTestNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockCatalog) Update(_ context.Context, t *LabTest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tests[t.ID]
	if !ok {
		return ErrTestNotFound
	}
	t.CreatedAt = existing.CreatedAt
	cp := *t
	m.tests[t.ID] = &cp
	return nil
}

func (m *mockCatalog) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[id]; !ok {
		return ErrTestNotFound
	}
	delete(m.tests, id)
	return nil
}

func (m *mockCatalog) List(_ context.Context, limit, offset int) ([]*LabTest, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*LabTest
	for _, t := range m.tests {
		cp := *t
		out = append(out, &cp)
	}
	return out, len(out), nil
}

type mockAssignments struct {
	mu          sync.Mutex
	assignments map[uuid.UUID]*Assignment
}

func newMockAssignments() *mockAssignments {
	return &mockAssignments{assignments: make(map[uuid.UUID]*Assignment)}
}

func (m *mockAssignments) Create(_ context.Context, a *Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.New()
	a.Status = StatusAssigned
	a.CreatedAt = time.Now()
	cp := *a
	m.assignments[a.ID] = &cp
	return nil
}

func (m *mockAssignments) GetByID(_ context.Context, id uuid.UUID) (*Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return nil, ErrAssignmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAssignments) SetResult(_ context.Context, id uuid.UUID, result string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return ErrAssignmentNotFound
	}
	if a.Status != StatusAssigned {
		return ErrResultRecorded
	}
	now := time.Now()
	a.Status = StatusCompleted
	a.Result = &result
	a.ResultAt = &now
	return nil
}

func (m *mockAssignments) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Assignment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Assignment
	for _, a := range m.assignments {
		if a.PatientID == patientID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockAssignments) ListByRecord(_ context.Context, recordID uuid.UUID) ([]*Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Assignment
	for _, a := range m.assignments {
		if a.RecordID == recordID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func newTestService() *Service {
	return NewService(newMockCatalog(), newMockAssignments())
}

func TestCatalogCRUD(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	test, err := svc.CreateTest(ctx, "CBC", nil, decimal.NewFromInt(45))
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}

	updated, err := svc.UpdateTest(ctx, test.ID, "Complete Blood Count", nil, decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("UpdateTest: %v", err)
	}
	if updated.Name != "Complete Blood Count" {
		t.Errorf("name = %q", updated.Name)
	}
	if !updated.Cost.Equal(decimal.NewFromInt(50)) {
		t.Errorf("cost = %s, want 50", updated.Cost)
	}

	if err := svc.DeleteTest(ctx, test.ID); err != nil {
		t.Fatalf("DeleteTest: %v", err)
	}
	if _, err := svc.GetTest(ctx, test.ID); !errors.Is(err, ErrTestNotFound) {
		t.Errorf("expected ErrTestNotFound after delete, got %v", err)
	}
}

func TestCatalogValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateTest(ctx, "", nil, decimal.NewFromInt(10)); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := svc.CreateTest(ctx, "X-Ray", nil, decimal.NewFromInt(-10)); err == nil {
		t.Error("expected error for negative cost")
	}
}

func TestAssignRequiresKnownTest(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Assign(ctx, uuid.New(), uuid.New(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("expected ErrTestNotFound, got %v", err)
	}
}

func TestAssignAndRecordResult(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	test, err := svc.CreateTest(ctx, "Lipid Panel", nil, decimal.NewFromInt(80))
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}

	patientID := uuid.New()
	a, err := svc.Assign(ctx, test.ID, uuid.New(), patientID, uuid.New())
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if a.Status != StatusAssigned {
		t.Errorf("status = %s, want assigned", a.Status)
	}

	done, err := svc.RecordResult(ctx, a.ID, "within normal range")
	if err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Errorf("status = %s, want completed", done.Status)
	}
	if done.Result == nil || *done.Result != "within normal range" {
		t.Error("result not stored")
	}

	// A result is written exactly once.
	if _, err := svc.RecordResult(ctx, a.ID, "second opinion"); !errors.Is(err, ErrResultRecorded) {
		t.Errorf("expected ErrResultRecorded, got %v", err)
	}

	assignments, total, err := svc.ListByPatient(ctx, patientID, 10, 0)
	if err != nil {
		t.Fatalf("ListByPatient: %v", err)
	}
	if total != 1 || len(assignments) != 1 {
		t.Fatalf("expected 1 assignment, got %d", total)
	}
}
