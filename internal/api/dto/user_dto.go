package dto

import (
	"github.com/clinica/clinic-api/internal/domain"
)

// UserCreateRequest payload for POST /usuarios.
type UserCreateRequest struct {
	Username  *string `json:"username" validate:"required"`
	Password  *string `json:"password" validate:"required"`
	Role      *string `json:"rol" validate:"required"`
	Name      *string `json:"nombre"`
	PatientID *int    `json:"id_paciente"`
	DoctorID  *int    `json:"id_doctor"`
}

// UserUpdateRequest payload for PUT /usuarios/:id.
type UserUpdateRequest struct {
	Name      *string    `json:"nombre"`
	Username  *string    `json:"username"`
	Password  *string    `json:"password"`
	Role      *string    `json:"rol"`
	PatientID OptionalID `json:"id_paciente"`
	DoctorID  OptionalID `json:"id_doctor"`
}

// Patch converts the request into a domain patch.
func (r UserUpdateRequest) Patch() domain.UserPatch {
	patch := domain.UserPatch{
		Name:      r.Name,
		Username:  r.Username,
		Password:  r.Password,
		PatientID: domain.Link{Set: r.PatientID.Set, ID: r.PatientID.Value},
		DoctorID:  domain.Link{Set: r.DoctorID.Set, ID: r.DoctorID.Value},
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		patch.Role = &role
	}
	return patch
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID          int     `json:"id_usuario"`
	Name        *string `json:"nombre"`
	Username    string  `json:"username"`
	Role        string  `json:"rol"`
	PatientID   *int    `json:"id_paciente"`
	DoctorID    *int    `json:"id_doctor"`
	HasPassword bool    `json:"has_password"`
}

// NewUserResponse maps a stored credential.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Username:    u.Username,
		Role:        string(u.Role),
		PatientID:   u.PatientID,
		DoctorID:    u.DoctorID,
		HasPassword: u.HasPassword(),
	}
}
