package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clinica/clinic-api/internal/domain"
	"github.com/clinica/clinic-api/internal/events"
	"github.com/clinica/clinic-api/internal/observability"
	"github.com/clinica/clinic-api/internal/repository"
)

// memState is a snapshot of every table. Transactions work on a clone and
// replace the committed state on success.
type memState struct {
	nextID       int
	users        map[int]domain.User
	patients     map[int]domain.Patient
	doctors      map[int]domain.Doctor
	specialties  map[int]domain.Specialty
	appointments map[int]domain.Appointment
}

func newMemState() *memState {
	return &memState{
		nextID:       1,
		users:        map[int]domain.User{},
		patients:     map[int]domain.Patient{},
		doctors:      map[int]domain.Doctor{},
		specialties:  map[int]domain.Specialty{},
		appointments: map[int]domain.Appointment{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	c.nextID = s.nextID
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.patients {
		c.patients[k] = v
	}
	for k, v := range s.doctors {
		c.doctors[k] = v
	}
	for k, v := range s.specialties {
		c.specialties[k] = v
	}
	for k, v := range s.appointments {
		c.appointments[k] = v
	}
	return c
}

func (s *memState) id() int {
	id := s.nextID
	s.nextID++
	return id
}

// memDB serializes transactions with a mutex, standing in for the doctor
// row lock taken by the Postgres repositories.
type memDB struct {
	mu    sync.Mutex
	state *memState
	// failCommit makes the next transaction fail after fn succeeds.
	failCommit error
}

func newMemDB() *memDB {
	return &memDB{state: newMemState()}
}

func (db *memDB) committed() *memState {
	return db.state
}

// repos returns repositories reading the committed state.
func (db *memDB) repos() repository.Repositories {
	return bindRepos(db.committed)
}

func (db *memDB) WithTx(ctx context.Context, fn repository.TxFunc) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	work := db.state.clone()
	if err := fn(ctx, bindRepos(func() *memState { return work })); err != nil {
		return err
	}
	if db.failCommit != nil {
		err := db.failCommit
		db.failCommit = nil
		return err
	}
	db.state = work
	return nil
}

func bindRepos(state func() *memState) repository.Repositories {
	return repository.Repositories{
		Users:        &memUsers{state: state},
		Patients:     &memPatients{state: state},
		Doctors:      &memDoctors{state: state},
		Specialties:  &memSpecialties{state: state},
		Appointments: &memAppointments{state: state},
	}
}

func (db *memDB) addSpecialty(name string) int {
	s := db.state
	id := s.id()
	s.specialties[id] = domain.Specialty{ID: id, Name: name}
	return id
}

func (db *memDB) addDoctor(name string, specialtyID int) int {
	s := db.state
	id := s.id()
	s.doctors[id] = domain.Doctor{
		ID: id, Name: name, LastName: "Pérez", License: fmt.Sprintf("LIC-%d", id),
		SpecialtyID: specialtyID, SpecialtyName: s.specialties[specialtyID].Name,
	}
	return id
}

func (db *memDB) addPatient(name string) int {
	s := db.state
	id := s.id()
	s.patients[id] = domain.Patient{ID: id, Name: name, LastName: "López", RegisteredAt: time.Now()}
	return id
}

type memUsers struct{ state func() *memState }

func (r *memUsers) List(_ context.Context) ([]domain.User, error) {
	s := r.state()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memUsers) GetByID(_ context.Context, id int) (*domain.User, error) {
	u, ok := r.state().users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) GetByIDForUpdate(ctx context.Context, id int) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *memUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.state().users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUsers) usernameTaken(username string, except int) bool {
	for _, u := range r.state().users {
		if u.Username == username && u.ID != except {
			return true
		}
	}
	return false
}

func (r *memUsers) Create(_ context.Context, user *domain.User) error {
	if r.usernameTaken(user.Username, 0) {
		return fmt.Errorf("%w: usuarios_username_key", repository.ErrUniqueViolation)
	}
	s := r.state()
	user.ID = s.id()
	s.users[user.ID] = *user
	return nil
}

func (r *memUsers) Update(_ context.Context, user *domain.User) error {
	s := r.state()
	if _, ok := s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	if r.usernameTaken(user.Username, user.ID) {
		return fmt.Errorf("%w: usuarios_username_key", repository.ErrUniqueViolation)
	}
	s.users[user.ID] = *user
	return nil
}

func (r *memUsers) Delete(_ context.Context, id int) error {
	s := r.state()
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type memPatients struct{ state func() *memState }

func (r *memPatients) List(_ context.Context) ([]domain.Patient, error) {
	s := r.state()
	out := make([]domain.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memPatients) GetByID(_ context.Context, id int) (*domain.Patient, error) {
	p, ok := r.state().patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *memPatients) SearchByName(_ context.Context, name string) ([]domain.Patient, error) {
	var out []domain.Patient
	for _, p := range r.state().patients {
		if strings.EqualFold(p.Name, name) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPatients) Exists(_ context.Context, id int) (bool, error) {
	_, ok := r.state().patients[id]
	return ok, nil
}

func (r *memPatients) Create(_ context.Context, patient *domain.Patient) error {
	s := r.state()
	patient.ID = s.id()
	patient.RegisteredAt = time.Now()
	s.patients[patient.ID] = *patient
	return nil
}

func (r *memPatients) Update(_ context.Context, id int, patch domain.PatientPatch) error {
	s := r.state()
	p, ok := s.patients[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.LastName != nil {
		p.LastName = *patch.LastName
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	s.patients[id] = p
	return nil
}

func (r *memPatients) Delete(_ context.Context, id int) error {
	s := r.state()
	if _, ok := s.patients[id]; !ok {
		return repository.ErrNotFound
	}
	for _, a := range s.appointments {
		if a.PatientID == id {
			return fmt.Errorf("%w: citas_id_paciente_fkey", repository.ErrForeignKeyViolation)
		}
	}
	delete(s.patients, id)
	return nil
}

type memDoctors struct{ state func() *memState }

func (r *memDoctors) List(_ context.Context) ([]domain.Doctor, error) {
	s := r.state()
	out := make([]domain.Doctor, 0, len(s.doctors))
	for _, d := range s.doctors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memDoctors) GetByID(_ context.Context, id int) (*domain.Doctor, error) {
	d, ok := r.state().doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *memDoctors) SearchByName(_ context.Context, name string) ([]domain.Doctor, error) {
	var out []domain.Doctor
	for _, d := range r.state().doctors {
		if strings.EqualFold(d.Name, name) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memDoctors) LockByID(_ context.Context, id int) error {
	if _, ok := r.state().doctors[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (r *memDoctors) licenseTaken(license string, except int) bool {
	for _, d := range r.state().doctors {
		if d.License == license && d.ID != except {
			return true
		}
	}
	return false
}

func (r *memDoctors) Create(_ context.Context, doctor *domain.Doctor) error {
	if r.licenseTaken(doctor.License, 0) {
		return fmt.Errorf("%w: doctores_cedula_key", repository.ErrUniqueViolation)
	}
	s := r.state()
	doctor.ID = s.id()
	doctor.SpecialtyName = s.specialties[doctor.SpecialtyID].Name
	s.doctors[doctor.ID] = *doctor
	return nil
}

func (r *memDoctors) Update(_ context.Context, id int, patch domain.DoctorPatch) error {
	s := r.state()
	d, ok := s.doctors[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.License != nil {
		if r.licenseTaken(*patch.License, id) {
			return fmt.Errorf("%w: doctores_cedula_key", repository.ErrUniqueViolation)
		}
		d.License = *patch.License
	}
	if patch.Name != nil {
		d.Name = *patch.Name
	}
	if patch.SpecialtyID != nil {
		d.SpecialtyID = *patch.SpecialtyID
		d.SpecialtyName = s.specialties[d.SpecialtyID].Name
	}
	s.doctors[id] = d
	return nil
}

func (r *memDoctors) Delete(_ context.Context, id int) error {
	s := r.state()
	if _, ok := s.doctors[id]; !ok {
		return repository.ErrNotFound
	}
	for _, a := range s.appointments {
		if a.DoctorID == id {
			return fmt.Errorf("%w: citas_id_doctor_fkey", repository.ErrForeignKeyViolation)
		}
	}
	delete(s.doctors, id)
	return nil
}

type memSpecialties struct{ state func() *memState }

func (r *memSpecialties) List(_ context.Context) ([]domain.Specialty, error) {
	s := r.state()
	out := make([]domain.Specialty, 0, len(s.specialties))
	for _, sp := range s.specialties {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memSpecialties) Exists(_ context.Context, id int) (bool, error) {
	_, ok := r.state().specialties[id]
	return ok, nil
}

type memAppointments struct{ state func() *memState }

func (r *memAppointments) decorate(a domain.Appointment) domain.Appointment {
	s := r.state()
	a.PatientName = s.patients[a.PatientID].Name
	doc := s.doctors[a.DoctorID]
	a.DoctorName = doc.Name
	a.SpecialtyName = doc.SpecialtyName
	return a
}

func (r *memAppointments) filter(keep func(domain.Appointment) bool) []domain.Appointment {
	var out []domain.Appointment
	for _, a := range r.state().appointments {
		a = r.decorate(a)
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memAppointments) List(_ context.Context) ([]domain.Appointment, error) {
	return r.filter(func(domain.Appointment) bool { return true }), nil
}

func (r *memAppointments) GetByID(_ context.Context, id int) (*domain.Appointment, error) {
	a, ok := r.state().appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a = r.decorate(a)
	return &a, nil
}

func (r *memAppointments) GetByIDForUpdate(_ context.Context, id int) (*domain.Appointment, error) {
	a, ok := r.state().appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *memAppointments) ListByDoctorName(_ context.Context, name string) ([]domain.Appointment, error) {
	return r.filter(func(a domain.Appointment) bool { return strings.EqualFold(a.DoctorName, name) }), nil
}

func (r *memAppointments) ListByPatientName(_ context.Context, name string) ([]domain.Appointment, error) {
	return r.filter(func(a domain.Appointment) bool { return strings.EqualFold(a.PatientName, name) }), nil
}

func (r *memAppointments) ListByDate(_ context.Context, date domain.Date) ([]domain.Appointment, error) {
	return r.filter(func(a domain.Appointment) bool { return a.Date.Equal(date) }), nil
}

func (r *memAppointments) ListBySpecialty(_ context.Context, name string) ([]domain.Appointment, error) {
	return r.filter(func(a domain.Appointment) bool { return strings.EqualFold(a.SpecialtyName, name) }), nil
}

func (r *memAppointments) SlotTaken(_ context.Context, slot domain.Slot, excludeID int) (bool, error) {
	for _, a := range r.state().appointments {
		if a.ID != excludeID && a.Slot().Same(slot) {
			return true, nil
		}
	}
	return false, nil
}

// Create enforces the unique (doctor, date, time) constraint like the table does.
func (r *memAppointments) Create(ctx context.Context, appt *domain.Appointment) error {
	taken, _ := r.SlotTaken(ctx, appt.Slot(), 0)
	if taken {
		return fmt.Errorf("%w: citas_doctor_slot_key", repository.ErrUniqueViolation)
	}
	s := r.state()
	appt.ID = s.id()
	s.appointments[appt.ID] = *appt
	return nil
}

func (r *memAppointments) Update(ctx context.Context, appt *domain.Appointment) error {
	s := r.state()
	if _, ok := s.appointments[appt.ID]; !ok {
		return repository.ErrNotFound
	}
	taken, _ := r.SlotTaken(ctx, appt.Slot(), appt.ID)
	if taken {
		return fmt.Errorf("%w: citas_doctor_slot_key", repository.ErrUniqueViolation)
	}
	s.appointments[appt.ID] = *appt
	return nil
}

func (r *memAppointments) Delete(_ context.Context, id int) error {
	s := r.state()
	if _, ok := s.appointments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.appointments, id)
	return nil
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

// counterValue sums every series of a counter family.
func counterValue(t *testing.T, m *observability.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		total := 0.0
		for _, metric := range mf.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
		return total
	}
	return 0
}
