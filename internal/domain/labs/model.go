package labs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LabTest is a catalog entry managed by admins.
type LabTest struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Cost        decimal.Decimal `json:"cost"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AssignmentStatus tracks an ordered test until its result arrives.
type AssignmentStatus string

const (
	StatusAssigned  AssignmentStatus = "assigned"
	StatusCompleted AssignmentStatus = "completed"
)

// Assignment links a catalog test to a patient's medical record.
type Assignment struct {
	ID        uuid.UUID        `json:"id"`
	TestID    uuid.UUID        `json:"test_id"`
	RecordID  uuid.UUID        `json:"record_id"`
	PatientID uuid.UUID        `json:"patient_id"`
	DoctorID  uuid.UUID        `json:"doctor_id"`
	Status    AssignmentStatus `json:"status"`
	Result    *string          `json:"result,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	ResultAt  *time.Time       `json:"result_at,omitempty"`
}

var (
	// ErrTestNotFound is returned when no catalog test matches.
	ErrTestNotFound = errors.New("lab test not found")
	// ErrAssignmentNotFound is returned when no assignment matches.
	ErrAssignmentNotFound = errors.New("lab assignment not found")
	// ErrResultRecorded is returned when a result is entered twice.
	ErrResultRecorded = errors.New("result already recorded")
)
