package domain

import "errors"

// Role enumerates the roles a credential can carry.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "paciente"
	RoleStaff   Role = "staff"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleDoctor, RolePatient, RoleStaff}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient, RoleStaff:
		return true
	}
	return false
}

// User is a stored login credential, optionally linked to a patient or a doctor.
type User struct {
	ID           int
	Name         *string
	Username     string
	PasswordHash string
	Role         Role
	PatientID    *int
	DoctorID     *int
}

// HasPassword reports whether a hash is stored for the credential.
func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}

var (
	ErrInvalidRole        = errors.New("Rol inválido")
	ErrDoctorLinkRequired = errors.New("Un usuario con rol doctor requiere id_doctor")
	ErrPatientLinkReq     = errors.New("Un usuario con rol paciente requiere id_paciente")
	ErrBothLinks          = errors.New("Un usuario no puede estar vinculado a un paciente y a un doctor")
	ErrLinkRoleMismatch   = errors.New("El vínculo del usuario no corresponde con su rol")
)

// ValidateRoleLinks checks the role and the patient/doctor links agree.
func (u User) ValidateRoleLinks() error {
	if !u.Role.Valid() {
		return ErrInvalidRole
	}
	if u.PatientID != nil && u.DoctorID != nil {
		return ErrBothLinks
	}
	switch u.Role {
	case RoleDoctor:
		if u.DoctorID == nil {
			return ErrDoctorLinkRequired
		}
	case RolePatient:
		if u.PatientID == nil {
			return ErrPatientLinkReq
		}
	default:
		if u.PatientID != nil || u.DoctorID != nil {
			return ErrLinkRoleMismatch
		}
	}
	return nil
}

// Link is an optional nullable reference in a patch. Set distinguishes
// "absent" from an explicit null.
type Link struct {
	Set bool
	ID  *int
}

// UserPatch carries the fields a user update may change.
type UserPatch struct {
	Name      *string
	Username  *string
	Password  *string
	Role      *Role
	PatientID Link
	DoctorID  Link
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Username == nil && p.Password == nil && p.Role == nil &&
		!p.PatientID.Set && !p.DoctorID.Set
}

// TouchesPrivileges reports whether the patch changes the role or a link.
func (p UserPatch) TouchesPrivileges() bool {
	return p.Role != nil || p.PatientID.Set || p.DoctorID.Set
}

// Apply merges the patch into u. The password is handled by the caller.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = p.Name
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.PatientID.Set {
		u.PatientID = p.PatientID.ID
	}
	if p.DoctorID.Set {
		u.DoctorID = p.DoctorID.ID
	}
}
