package domain

// Specialty is a medical specialty a doctor practices.
type Specialty struct {
	ID   int
	Name string
}

// Doctor is a practitioner who can be booked.
type Doctor struct {
	ID            int
	Name          string
	LastName      string
	License       string
	Phone         string
	Email         string
	SpecialtyID   int
	SpecialtyName string
}

// DoctorPatch carries the fields a doctor update may change.
type DoctorPatch struct {
	Name        *string
	LastName    *string
	License     *string
	Phone       *string
	Email       *string
	SpecialtyID *int
}

// Empty reports whether the patch changes nothing.
func (p DoctorPatch) Empty() bool {
	return p.Name == nil && p.LastName == nil && p.License == nil &&
		p.Phone == nil && p.Email == nil && p.SpecialtyID == nil
}
