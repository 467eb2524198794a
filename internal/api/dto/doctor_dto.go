package dto

import "github.com/clinica/clinic-api/internal/domain"

// DoctorCreateRequest payload for POST /doctores.
type DoctorCreateRequest struct {
	Name        *string `json:"nombre" validate:"required"`
	LastName    *string `json:"apellido" validate:"required"`
	License     *string `json:"cedula_profesional" validate:"required"`
	Phone       *string `json:"telefono" validate:"required"`
	Email       *string `json:"correo" validate:"required"`
	SpecialtyID *int    `json:"id_especialidad" validate:"required"`
}

// DoctorUpdateRequest payload for PUT /doctores/:id.
type DoctorUpdateRequest struct {
	Name        *string `json:"nombre"`
	LastName    *string `json:"apellido"`
	License     *string `json:"cedula_profesional"`
	Phone       *string `json:"telefono"`
	Email       *string `json:"correo"`
	SpecialtyID *int    `json:"id_especialidad"`
}

func (r DoctorUpdateRequest) Patch() domain.DoctorPatch {
	return domain.DoctorPatch{
		Name:        r.Name,
		LastName:    r.LastName,
		License:     r.License,
		Phone:       r.Phone,
		Email:       r.Email,
		SpecialtyID: r.SpecialtyID,
	}
}

// DoctorResponse includes the specialty name.
type DoctorResponse struct {
	ID            int    `json:"id_doctor"`
	Name          string `json:"nombre"`
	LastName      string `json:"apellido"`
	License       string `json:"cedula_profesional"`
	Phone         string `json:"telefono"`
	Email         string `json:"correo"`
	SpecialtyID   int    `json:"id_especialidad"`
	SpecialtyName string `json:"especialidad"`
}

func NewDoctorResponse(d domain.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:            d.ID,
		Name:          d.Name,
		LastName:      d.LastName,
		License:       d.License,
		Phone:         d.Phone,
		Email:         d.Email,
		SpecialtyID:   d.SpecialtyID,
		SpecialtyName: d.SpecialtyName,
	}
}

// SpecialtyResponse is a catalogue entry.
type SpecialtyResponse struct {
	ID   int    `json:"id_especialidad"`
	Name string `json:"nombre"`
}
