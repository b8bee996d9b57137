package scheduling

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus tracks an appointment through its lifecycle.
type AppointmentStatus string

const (
	StatusBooked    AppointmentStatus = "booked"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment is a patient's booking with a doctor at a point in time.
type Appointment struct {
	ID          uuid.UUID         `json:"id"`
	PatientID   uuid.UUID         `json:"patient_id"`
	DoctorID    uuid.UUID         `json:"doctor_id"`
	ScheduledAt time.Time         `json:"scheduled_at"`
	Reason      *string           `json:"reason,omitempty"`
	Status      AppointmentStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

var (
	// ErrNotFound is returned when no appointment matches.
	ErrNotFound = errors.New("appointment not found")
	// ErrCancelled is returned when changing an appointment that was
	// already cancelled.
	ErrCancelled = errors.New("appointment is cancelled")
)
