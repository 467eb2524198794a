package domain

import "time"

// Patient is a person receiving care at the clinic.
type Patient struct {
	ID             int
	Name           string
	LastName       string
	BirthDate      Date
	Sex            string
	Phone          string
	Email          string
	Address        string
	MedicalHistory string
	RegisteredAt   time.Time
}

// PatientPatch carries the fields a patient update may change.
type PatientPatch struct {
	Name           *string
	LastName       *string
	BirthDate      *Date
	Sex            *string
	Phone          *string
	Email          *string
	Address        *string
	MedicalHistory *string
}

// Empty reports whether the patch changes nothing.
func (p PatientPatch) Empty() bool {
	return p.Name == nil && p.LastName == nil && p.BirthDate == nil && p.Sex == nil &&
		p.Phone == nil && p.Email == nil && p.Address == nil && p.MedicalHistory == nil
}
