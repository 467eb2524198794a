package http

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clinica/clinic-api/internal/domain"
	"github.com/clinica/clinic-api/internal/repository"
)

// fakeStore backs every repository with maps. Writes apply immediately, so
// the transactor only serializes units of work.
type fakeStore struct {
	mu           sync.Mutex
	nextID       int
	failWith     error
	users        map[int]domain.User
	patients     map[int]domain.Patient
	doctors      map[int]domain.Doctor
	specialties  map[int]domain.Specialty
	appointments map[int]domain.Appointment
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:       1,
		users:        map[int]domain.User{},
		patients:     map[int]domain.Patient{},
		doctors:      map[int]domain.Doctor{},
		specialties:  map[int]domain.Specialty{},
		appointments: map[int]domain.Appointment{},
	}
}

func (s *fakeStore) id() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *fakeStore) repos() repository.Repositories {
	return repository.Repositories{
		Users:        fakeUsers{s},
		Patients:     fakePatients{s},
		Doctors:      fakeDoctors{s},
		Specialties:  fakeSpecialties{s},
		Appointments: fakeAppointments{s},
	}
}

func (s *fakeStore) WithTx(ctx context.Context, fn repository.TxFunc) error {
	if s.failWith != nil {
		return s.failWith
	}
	return fn(ctx, s.repos())
}

func sortedValues[T any](m map[int]T) []T {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// sameName matches the store's lower(col) = lower($1) comparison.
func sameName(a, b string) bool {
	return strings.EqualFold(a, b)
}

type fakeUsers struct{ s *fakeStore }

func (r fakeUsers) List(context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	return sortedValues(r.s.users), nil
}

func (r fakeUsers) GetByID(_ context.Context, id int) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r fakeUsers) GetByIDForUpdate(ctx context.Context, id int) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r fakeUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r fakeUsers) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return repository.ErrUniqueViolation
		}
	}
	user.ID = r.s.id()
	r.s.users[user.ID] = *user
	return nil
}

func (r fakeUsers) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r fakeUsers) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

type fakePatients struct{ s *fakeStore }

func (r fakePatients) List(context.Context) ([]domain.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedValues(r.s.patients), nil
}

func (r fakePatients) GetByID(_ context.Context, id int) (*domain.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r fakePatients) SearchByName(_ context.Context, name string) ([]domain.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Patient
	for _, p := range sortedValues(r.s.patients) {
		if sameName(p.Name, name) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r fakePatients) Exists(_ context.Context, id int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.patients[id]
	return ok, nil
}

func (r fakePatients) Create(_ context.Context, patient *domain.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	patient.ID = r.s.id()
	patient.RegisteredAt = time.Now()
	r.s.patients[patient.ID] = *patient
	return nil
}

func (r fakePatients) Update(_ context.Context, id int, patch domain.PatientPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	r.s.patients[id] = p
	return nil
}

func (r fakePatients) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[id]; !ok {
		return repository.ErrNotFound
	}
	for _, a := range r.s.appointments {
		if a.PatientID == id {
			return repository.ErrForeignKeyViolation
		}
	}
	delete(r.s.patients, id)
	return nil
}

type fakeDoctors struct{ s *fakeStore }

func (r fakeDoctors) List(context.Context) ([]domain.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedValues(r.s.doctors), nil
}

func (r fakeDoctors) GetByID(_ context.Context, id int) (*domain.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r fakeDoctors) SearchByName(_ context.Context, name string) ([]domain.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Doctor
	for _, d := range sortedValues(r.s.doctors) {
		if sameName(d.Name, name) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r fakeDoctors) LockByID(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.doctors[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (r fakeDoctors) Create(_ context.Context, doctor *domain.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	doctor.ID = r.s.id()
	doctor.SpecialtyName = r.s.specialties[doctor.SpecialtyID].Name
	r.s.doctors[doctor.ID] = *doctor
	return nil
}

func (r fakeDoctors) Update(_ context.Context, id int, patch domain.DoctorPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.doctors[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Name != nil {
		d.Name = *patch.Name
	}
	r.s.doctors[id] = d
	return nil
}

func (r fakeDoctors) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.doctors[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.doctors, id)
	return nil
}

type fakeSpecialties struct{ s *fakeStore }

func (r fakeSpecialties) List(context.Context) ([]domain.Specialty, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedValues(r.s.specialties), nil
}

func (r fakeSpecialties) Exists(_ context.Context, id int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.specialties[id]
	return ok, nil
}

type fakeAppointments struct{ s *fakeStore }

func (r fakeAppointments) filter(keep func(domain.Appointment) bool) []domain.Appointment {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Appointment
	for _, a := range sortedValues(r.s.appointments) {
		a.PatientName = r.s.patients[a.PatientID].Name
		a.DoctorName = r.s.doctors[a.DoctorID].Name
		a.SpecialtyName = r.s.doctors[a.DoctorID].SpecialtyName
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func (r fakeAppointments) List(context.Context) ([]domain.Appointment, error) {
	return r.filter(func(domain.Appointment) bool { return true }), nil
}

func (r fakeAppointments) GetByID(_ context.Context, id int) (*domain.Appointment, error) {
	found := r.filter(func(a domain.Appointment) bool { return a.ID == id })
	if len(found) == 0 {
		return nil, repository.ErrNotFound
	}
	return &found[0], nil
}

func (r fakeAppointments) GetByIDForUpdate(ctx context.Context, id int) (*domain.Appointment, error) {
	return r.GetByID(ctx, id)
}

func (r fakeAppointments) ListByDoctorName(_ context.Context, name string) ([]domain.Appointment, error) {
	return r.filter(func(a domain.Appointment) bool { return sameName(a.DoctorName, name) }), nil
}

func (r fakeAppointments) ListByPatientName(_ context.Context, name string) ([]domain.Appointment, error) {
	return r.filter(func(a domain.Appointment) bool { return sameName(a.PatientName, name) }), nil
}

func (r fakeAppointments) ListByDate(_ context.Context, date domain.Date) ([]domain.Appointment, error) {
	return r.filter(func(a domain.Appointment) bool { return a.Date.Equal(date) }), nil
}

func (r fakeAppointments) ListBySpecialty(_ context.Context, name string) ([]domain.Appointment, error) {
	return r.filter(func(a domain.Appointment) bool { return sameName(a.SpecialtyName, name) }), nil
}

func (r fakeAppointments) SlotTaken(_ context.Context, slot domain.Slot, excludeID int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.appointments {
		if a.ID != excludeID && a.Slot().Same(slot) {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeAppointments) Create(_ context.Context, appt *domain.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	appt.ID = r.s.id()
	r.s.appointments[appt.ID] = *appt
	return nil
}

func (r fakeAppointments) Update(_ context.Context, appt *domain.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.appointments[appt.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.appointments[appt.ID] = *appt
	return nil
}

func (r fakeAppointments) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.appointments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.appointments, id)
	return nil
}
