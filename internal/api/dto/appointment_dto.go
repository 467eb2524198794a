package dto

import (
	"github.com/shopspring/decimal"

	"github.com/clinica/clinic-api/internal/domain"
)

// AppointmentCreateRequest payload for POST /citas. Required fields are
// reported in declaration order. Estado is accepted but every new
// appointment starts as "nueva".
type AppointmentCreateRequest struct {
	PatientID *int    `json:"id_paciente" validate:"required"`
	DoctorID  *int    `json:"id_doctor" validate:"required"`
	Date      *string `json:"fecha" validate:"required"`
	Time      *string `json:"hora" validate:"required"`
	Reason    *string `json:"motivo" validate:"required"`
	Cost      *Amount `json:"precio_costo" validate:"required"`
	Status    *string `json:"estado"`
}

// AppointmentUpdateRequest payload for PUT /citas/:id.
type AppointmentUpdateRequest struct {
	Date   *string `json:"fecha"`
	Time   *string `json:"hora"`
	Status *string `json:"estado"`
	Reason *string `json:"motivo"`
	Cost   *Amount `json:"precio_costo"`
}

// CostString returns the raw cost, if supplied.
func (r AppointmentUpdateRequest) CostString() *string {
	if r.Cost == nil {
		return nil
	}
	s := string(*r.Cost)
	return &s
}

// AppointmentCreated is returned by POST /citas.
type AppointmentCreated struct {
	ID int `json:"id_cita"`
}

// AppointmentResponse is an appointment with display names.
type AppointmentResponse struct {
	ID            int             `json:"id_cita"`
	PatientID     int             `json:"id_paciente"`
	DoctorID      int             `json:"id_doctor"`
	Date          domain.Date     `json:"fecha"`
	Time          domain.Clock    `json:"hora"`
	Status        string          `json:"estado"`
	Reason        string          `json:"motivo"`
	Cost          decimal.Decimal `json:"precio_costo"`
	PatientName   string          `json:"paciente,omitempty"`
	DoctorName    string          `json:"doctor,omitempty"`
	SpecialtyName string          `json:"especialidad,omitempty"`
}

func NewAppointmentResponse(a domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:            a.ID,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		Date:          a.Date,
		Time:          a.Time,
		Status:        a.Status,
		Reason:        a.Reason,
		Cost:          a.Cost,
		PatientName:   a.PatientName,
		DoctorName:    a.DoctorName,
		SpecialtyName: a.SpecialtyName,
	}
}

// NewAppointmentList maps a result set.
func NewAppointmentList(items []domain.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, NewAppointmentResponse(a))
	}
	return out
}
