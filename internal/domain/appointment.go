package domain

import "github.com/shopspring/decimal"

// AppointmentStatusNew is assigned to every freshly booked appointment.
const AppointmentStatusNew = "nueva"

// Appointment books a doctor for a patient at a date and time.
type Appointment struct {
	ID        int
	PatientID int
	DoctorID  int
	Date      Date
	Time      Clock
	Status    string
	Reason    string
	Cost      decimal.Decimal

	// Display fields filled on reads.
	PatientName   string
	DoctorName    string
	SpecialtyName string
}

// Slot identifies the doctor time slot an appointment occupies.
type Slot struct {
	DoctorID int
	Date     Date
	Time     Clock
}

// Slot returns the slot held by a.
func (a Appointment) Slot() Slot {
	return Slot{DoctorID: a.DoctorID, Date: a.Date, Time: a.Time}
}

// Same reports whether both slots refer to the same doctor, day and time.
func (s Slot) Same(other Slot) bool {
	return s.DoctorID == other.DoctorID && s.Date.Equal(other.Date) && s.Time == other.Time
}
