package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/clinica/clinic-api/internal/domain"
)

// DoctorRepository encapsulates doctor persistence.
type DoctorRepository interface {
	List(ctx context.Context) ([]domain.Doctor, error)
	GetByID(ctx context.Context, id int) (*domain.Doctor, error)
	SearchByName(ctx context.Context, name string) ([]domain.Doctor, error)
	// LockByID takes a row lock on the doctor for the rest of the transaction.
	LockByID(ctx context.Context, id int) error
	Create(ctx context.Context, doctor *domain.Doctor) error
	Update(ctx context.Context, id int, patch domain.DoctorPatch) error
	Delete(ctx context.Context, id int) error
}

// SpecialtyRepository reads the specialty catalogue.
type SpecialtyRepository interface {
	List(ctx context.Context) ([]domain.Specialty, error)
	Exists(ctx context.Context, id int) (bool, error)
}

type doctorRepository struct {
	db DBTX
}

// NewDoctorRepository instantiates repository.
func NewDoctorRepository(db DBTX) DoctorRepository {
	return &doctorRepository{db: db}
}

const doctorSelect = `
        SELECT d.id_doctor, d.nombre, d.apellido, d.cedula_profesional, d.telefono, d.correo,
               d.id_especialidad, e.nombre
        FROM doctores d
        JOIN especialidades e ON e.id_especialidad = d.id_especialidad`

func scanDoctor(row pgx.Row) (*domain.Doctor, error) {
	var doctor domain.Doctor
	if err := row.Scan(
		&doctor.ID,
		&doctor.Name,
		&doctor.LastName,
		&doctor.License,
		&doctor.Phone,
		&doctor.Email,
		&doctor.SpecialtyID,
		&doctor.SpecialtyName,
	); err != nil {
		return nil, translateError(err)
	}
	return &doctor, nil
}

func (r *doctorRepository) list(ctx context.Context, query string, args ...any) ([]domain.Doctor, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	doctors := make([]domain.Doctor, 0)
	for rows.Next() {
		doctor, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, *doctor)
	}
	return doctors, translateError(rows.Err())
}

func (r *doctorRepository) List(ctx context.Context) ([]domain.Doctor, error) {
	return r.list(ctx, doctorSelect+` ORDER BY d.id_doctor`)
}

func (r *doctorRepository) GetByID(ctx context.Context, id int) (*domain.Doctor, error) {
	return scanDoctor(r.db.QueryRow(ctx, doctorSelect+` WHERE d.id_doctor=$1`, id))
}

func (r *doctorRepository) SearchByName(ctx context.Context, name string) ([]domain.Doctor, error) {
	return r.list(ctx, doctorSelect+` WHERE lower(d.nombre) = lower($1) ORDER BY d.id_doctor`, name)
}

func (r *doctorRepository) LockByID(ctx context.Context, id int) error {
	var locked int
	err := r.db.QueryRow(ctx, `SELECT id_doctor FROM doctores WHERE id_doctor=$1 FOR UPDATE`, id).Scan(&locked)
	return translateError(err)
}

func (r *doctorRepository) Create(ctx context.Context, doctor *domain.Doctor) error {
	const query = `
        INSERT INTO doctores (nombre, apellido, cedula_profesional, telefono, correo, id_especialidad)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id_doctor`
	err := r.db.QueryRow(ctx, query,
		doctor.Name,
		doctor.LastName,
		doctor.License,
		doctor.Phone,
		doctor.Email,
		doctor.SpecialtyID,
	).Scan(&doctor.ID)
	return translateError(err)
}

func (r *doctorRepository) Update(ctx context.Context, id int, patch domain.DoctorPatch) error {
	const query = `
        UPDATE doctores SET
            nombre = COALESCE($1, nombre),
            apellido = COALESCE($2, apellido),
            cedula_profesional = COALESCE($3, cedula_profesional),
            telefono = COALESCE($4, telefono),
            correo = COALESCE($5, correo),
            id_especialidad = COALESCE($6, id_especialidad)
        WHERE id_doctor=$7`
	return affectedOne(r.db.Exec(ctx, query,
		patch.Name,
		patch.LastName,
		patch.License,
		patch.Phone,
		patch.Email,
		patch.SpecialtyID,
		id,
	))
}

func (r *doctorRepository) Delete(ctx context.Context, id int) error {
	return affectedOne(r.db.Exec(ctx, `DELETE FROM doctores WHERE id_doctor=$1`, id))
}

type specialtyRepository struct {
	db DBTX
}

// NewSpecialtyRepository instantiates repository.
func NewSpecialtyRepository(db DBTX) SpecialtyRepository {
	return &specialtyRepository{db: db}
}

func (r *specialtyRepository) List(ctx context.Context) ([]domain.Specialty, error) {
	rows, err := r.db.Query(ctx, `SELECT id_especialidad, nombre FROM especialidades ORDER BY nombre`)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	specialties := make([]domain.Specialty, 0)
	for rows.Next() {
		var s domain.Specialty
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, translateError(err)
		}
		specialties = append(specialties, s)
	}
	return specialties, translateError(rows.Err())
}

func (r *specialtyRepository) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM especialidades WHERE id_especialidad=$1)`, id).Scan(&exists)
	return exists, translateError(err)
}
