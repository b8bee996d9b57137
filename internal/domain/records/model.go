package records

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MedicalRecord is a doctor's write-up for a patient visit. Charges and lab
// assignments reference records by id.
type MedicalRecord struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	DoctorID      uuid.UUID  `json:"doctor_id"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	Diagnosis     string     `json:"diagnosis"`
	Prescription  *string    `json:"prescription,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("medical record not found")
