package labs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	catalog     CatalogRepository
	assignments AssignmentRepository
}

func NewService(catalog CatalogRepository, assignments AssignmentRepository) *Service {
	return &Service{catalog: catalog, assignments: assignments}
}

// -- Catalog --

func (s *Service) CreateTest(ctx context.Context, name string, description *string, cost decimal.Decimal) (*LabTest, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if cost.IsNegative() {
		return nil, fmt.Errorf("cost must not be negative")
	}

	t := &LabTest{Name: name, Description: description, Cost: cost}
	if err := s.catalog.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) GetTest(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	return s.catalog.GetByID(ctx, id)
}

func (s *Service) UpdateTest(ctx context.Context, id uuid.UUID, name string, description *string, cost decimal.Decimal) (*LabTest, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if cost.IsNegative() {
		return nil, fmt.Errorf("cost must not be negative")
	}

	t := &LabTest{ID: id, Name: name, Description: description, Cost: cost}
	if err := s.catalog.Update(ctx, t); err != nil {
		return nil, err
	}
	return s.catalog.GetByID(ctx, id)
}

func (s *Service) DeleteTest(ctx context.Context, id uuid.UUID) error {
	return s.catalog.Delete(ctx, id)
}

func (s *Service) ListTests(ctx context.Context, limit, offset int) ([]*LabTest, int, error) {
	return s.catalog.List(ctx, limit, offset)
}

// -- Assignments --

// Assign orders a catalog test for a patient against a medical record.
func (s *Service) Assign(ctx context.Context, testID, recordID, patientID, doctorID uuid.UUID) (*Assignment, error) {
	if recordID == uuid.Nil {
		return nil, fmt.Errorf("record_id is required")
	}
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}

	// Reject unknown catalog tests up front.
	if _, err := s.catalog.GetByID(ctx, testID); err != nil {
		return nil, err
	}

	a := &Assignment{TestID: testID, RecordID: recordID, PatientID: patientID, DoctorID: doctorID}
	if err := s.assignments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// RecordResult stores the result for an assigned test. A result is written
// exactly once.
func (s *Service) RecordResult(ctx context.Context, assignmentID uuid.UUID, result string) (*Assignment, error) {
	if result == "" {
		return nil, fmt.Errorf("result is required")
	}
	if err := s.assignments.SetResult(ctx, assignmentID, result); err != nil {
		return nil, err
	}
	return s.assignments.GetByID(ctx, assignmentID)
}

func (s *Service) GetAssignment(ctx context.Context, id uuid.UUID) (*Assignment, error) {
	return s.assignments.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Assignment, int, error) {
	return s.assignments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*Assignment, error) {
	return s.assignments.ListByRecord(ctx, recordID)
}
