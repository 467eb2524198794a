package dto

import (
	"time"

	"github.com/clinica/clinic-api/internal/domain"
)

// PatientCreateRequest payload for POST /pacientes.
type PatientCreateRequest struct {
	Name           *string `json:"nombre" validate:"required"`
	LastName       *string `json:"apellido" validate:"required"`
	BirthDate      *string `json:"fecha_nacimiento" validate:"required"`
	Sex            *string `json:"sexo" validate:"required"`
	Phone          *string `json:"telefono" validate:"required"`
	Email          *string `json:"correo" validate:"required"`
	Address        *string `json:"direccion" validate:"required"`
	MedicalHistory *string `json:"historial_medico" validate:"required"`
}

// PatientUpdateRequest payload for PUT /pacientes/:id.
type PatientUpdateRequest struct {
	Name           *string `json:"nombre"`
	LastName       *string `json:"apellido"`
	BirthDate      *string `json:"fecha_nacimiento"`
	Sex            *string `json:"sexo"`
	Phone          *string `json:"telefono"`
	Email          *string `json:"correo"`
	Address        *string `json:"direccion"`
	MedicalHistory *string `json:"historial_medico"`
}

// PatientResponse is the public shape of a patient.
type PatientResponse struct {
	ID             int         `json:"id_paciente"`
	Name           string      `json:"nombre"`
	LastName       string      `json:"apellido"`
	BirthDate      domain.Date `json:"fecha_nacimiento"`
	Sex            string      `json:"sexo"`
	Phone          string      `json:"telefono"`
	Email          string      `json:"correo"`
	Address        string      `json:"direccion"`
	MedicalHistory string      `json:"historial_medico"`
	RegisteredAt   time.Time   `json:"fecha_registro"`
}

func NewPatientResponse(p domain.Patient) PatientResponse {
	return PatientResponse{
		ID:             p.ID,
		Name:           p.Name,
		LastName:       p.LastName,
		BirthDate:      p.BirthDate,
		Sex:            p.Sex,
		Phone:          p.Phone,
		Email:          p.Email,
		Address:        p.Address,
		MedicalHistory: p.MedicalHistory,
		RegisteredAt:   p.RegisteredAt,
	}
}
