package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/clinica/clinic-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAppointmentBooked    EventType = "appointment_booked"
	EventAppointmentUpdated   EventType = "appointment_updated"
	EventAppointmentCancelled EventType = "appointment_cancelled"
)

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	AppointmentID int         `json:"id_cita"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// AppointmentPayload describes the appointment state carried by an event.
type AppointmentPayload struct {
	PatientID int             `json:"id_paciente"`
	DoctorID  int             `json:"id_doctor"`
	Date      domain.Date     `json:"fecha"`
	Time      domain.Clock    `json:"hora"`
	Status    string          `json:"estado"`
	Cost      decimal.Decimal `json:"precio_costo"`
}

// NewAppointmentPayload snapshots an appointment for publication.
func NewAppointmentPayload(a domain.Appointment) AppointmentPayload {
	return AppointmentPayload{
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		Date:      a.Date,
		Time:      a.Time,
		Status:    a.Status,
		Cost:      a.Cost,
	}
}
