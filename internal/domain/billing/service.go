package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	charges Repository
}

func NewService(charges Repository) *Service {
	return &Service{charges: charges}
}

// CreateCharge raises a pending charge against a patient for a medical
// record.
func (s *Service) CreateCharge(ctx context.Context, patientID, recordID uuid.UUID, amount decimal.Decimal) (*Charge, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if recordID == uuid.Nil {
		return nil, fmt.Errorf("record_id is required")
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	ch := &Charge{PatientID: patientID, RecordID: recordID, Amount: amount}
	if err := s.charges.Create(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *Service) GetCharge(ctx context.Context, id uuid.UUID) (*Charge, error) {
	return s.charges.GetByID(ctx, id)
}

// ListPending returns the patient's unsettled charges, newest first.
func (s *Service) ListPending(ctx context.Context, patientID uuid.UUID) ([]*Charge, error) {
	return s.charges.ListPending(ctx, patientID)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Charge, int, error) {
	return s.charges.ListByPatient(ctx, patientID, limit, offset)
}

// List returns every charge in the system, for the admin billing view.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Charge, int, error) {
	return s.charges.List(ctx, limit, offset)
}
