package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/clinica/clinic-api/internal/domain"
)

// AppointmentRepository encapsulates appointment persistence. Reads go
// through the sp_* stored functions so every listing shares one shape.
type AppointmentRepository interface {
	List(ctx context.Context) ([]domain.Appointment, error)
	GetByID(ctx context.Context, id int) (*domain.Appointment, error)
	GetByIDForUpdate(ctx context.Context, id int) (*domain.Appointment, error)
	ListByDoctorName(ctx context.Context, name string) ([]domain.Appointment, error)
	ListByPatientName(ctx context.Context, name string) ([]domain.Appointment, error)
	ListByDate(ctx context.Context, date domain.Date) ([]domain.Appointment, error)
	ListBySpecialty(ctx context.Context, name string) ([]domain.Appointment, error)
	// SlotTaken reports whether another appointment holds the slot.
	// excludeID skips one appointment, use 0 to check all.
	SlotTaken(ctx context.Context, slot domain.Slot, excludeID int) (bool, error)
	Create(ctx context.Context, appt *domain.Appointment) error
	Update(ctx context.Context, appt *domain.Appointment) error
	Delete(ctx context.Context, id int) error
}

type appointmentRepository struct {
	db DBTX
}

// NewAppointmentRepository instantiates repository.
func NewAppointmentRepository(db DBTX) AppointmentRepository {
	return &appointmentRepository{db: db}
}

const appointmentColumns = `id_cita, id_paciente, paciente, id_doctor, doctor, especialidad,
       fecha, hora, estado, motivo, precio_costo::text`

func clockParam(c domain.Clock) pgtype.Time {
	return pgtype.Time{Microseconds: c.SinceMidnight().Microseconds(), Valid: true}
}

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var (
		appt  domain.Appointment
		date  time.Time
		clock pgtype.Time
		cost  string
	)
	if err := row.Scan(
		&appt.ID,
		&appt.PatientID,
		&appt.PatientName,
		&appt.DoctorID,
		&appt.DoctorName,
		&appt.SpecialtyName,
		&date,
		&clock,
		&appt.Status,
		&appt.Reason,
		&cost,
	); err != nil {
		return nil, translateError(err)
	}
	parsed, err := decimal.NewFromString(cost)
	if err != nil {
		return nil, fmt.Errorf("scan precio_costo %q: %w", cost, err)
	}
	appt.Date = domain.NewDate(date)
	appt.Time = domain.ClockFromDuration(time.Duration(clock.Microseconds) * time.Microsecond)
	appt.Cost = parsed
	return &appt, nil
}

func (r *appointmentRepository) list(ctx context.Context, query string, args ...any) ([]domain.Appointment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	appointments := make([]domain.Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, *appt)
	}
	return appointments, translateError(rows.Err())
}

func (r *appointmentRepository) List(ctx context.Context) ([]domain.Appointment, error) {
	return r.list(ctx, `SELECT `+appointmentColumns+` FROM sp_obtener_todas_citas()`)
}

func (r *appointmentRepository) GetByID(ctx context.Context, id int) (*domain.Appointment, error) {
	return scanAppointment(r.db.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM sp_obtener_cita_por_id($1)`, id))
}

func (r *appointmentRepository) GetByIDForUpdate(ctx context.Context, id int) (*domain.Appointment, error) {
	const query = `
        SELECT c.id_cita, c.id_paciente, '', c.id_doctor, '', '', c.fecha, c.hora, c.estado, c.motivo, c.precio_costo::text
        FROM citas c WHERE c.id_cita=$1 FOR UPDATE`
	return scanAppointment(r.db.QueryRow(ctx, query, id))
}

func (r *appointmentRepository) ListByDoctorName(ctx context.Context, name string) ([]domain.Appointment, error) {
	return r.list(ctx, `SELECT `+appointmentColumns+` FROM sp_buscar_citas_doctor($1)`, name)
}

func (r *appointmentRepository) ListByPatientName(ctx context.Context, name string) ([]domain.Appointment, error) {
	return r.list(ctx, `SELECT `+appointmentColumns+` FROM sp_buscar_citas_paciente($1)`, name)
}

func (r *appointmentRepository) ListByDate(ctx context.Context, date domain.Date) ([]domain.Appointment, error) {
	return r.list(ctx, `SELECT `+appointmentColumns+` FROM sp_buscar_citas_fecha($1)`, date.Time)
}

func (r *appointmentRepository) ListBySpecialty(ctx context.Context, name string) ([]domain.Appointment, error) {
	return r.list(ctx, `SELECT `+appointmentColumns+` FROM sp_buscar_citas_especialidad($1)`, name)
}

func (r *appointmentRepository) SlotTaken(ctx context.Context, slot domain.Slot, excludeID int) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM citas
            WHERE id_doctor=$1 AND fecha=$2 AND hora=$3 AND id_cita<>$4
        )`
	var taken bool
	err := r.db.QueryRow(ctx, query, slot.DoctorID, slot.Date.Time, clockParam(slot.Time), excludeID).Scan(&taken)
	return taken, translateError(err)
}

func (r *appointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	const query = `SELECT sp_registrar_cita($1, $2, $3, $4, $5, $6::text::numeric, $7)`
	err := r.db.QueryRow(ctx, query,
		appt.PatientID,
		appt.DoctorID,
		appt.Date.Time,
		clockParam(appt.Time),
		appt.Reason,
		appt.Cost.String(),
		appt.Status,
	).Scan(&appt.ID)
	return translateError(err)
}

func (r *appointmentRepository) Update(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        UPDATE citas SET fecha=$1, hora=$2, estado=$3, motivo=$4, precio_costo=$5::text::numeric
        WHERE id_cita=$6`
	return affectedOne(r.db.Exec(ctx, query,
		appt.Date.Time,
		clockParam(appt.Time),
		appt.Status,
		appt.Reason,
		appt.Cost.String(),
		appt.ID,
	))
}

func (r *appointmentRepository) Delete(ctx context.Context, id int) error {
	return affectedOne(r.db.Exec(ctx, `DELETE FROM citas WHERE id_cita=$1`, id))
}
