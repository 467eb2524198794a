package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clinica/clinic-api/internal/domain"
)

// PatientRepository encapsulates patient persistence.
type PatientRepository interface {
	List(ctx context.Context) ([]domain.Patient, error)
	GetByID(ctx context.Context, id int) (*domain.Patient, error)
	SearchByName(ctx context.Context, name string) ([]domain.Patient, error)
	Exists(ctx context.Context, id int) (bool, error)
	Create(ctx context.Context, patient *domain.Patient) error
	Update(ctx context.Context, id int, patch domain.PatientPatch) error
	Delete(ctx context.Context, id int) error
}

type patientRepository struct {
	db DBTX
}

// NewPatientRepository instantiates repository.
func NewPatientRepository(db DBTX) PatientRepository {
	return &patientRepository{db: db}
}

const patientColumns = `id_paciente, nombre, apellido, fecha_nacimiento, sexo, telefono, correo,
       direccion, historial_medico, fecha_registro`

func scanPatient(row pgx.Row) (*domain.Patient, error) {
	var (
		patient   domain.Patient
		birthDate time.Time
	)
	if err := row.Scan(
		&patient.ID,
		&patient.Name,
		&patient.LastName,
		&birthDate,
		&patient.Sex,
		&patient.Phone,
		&patient.Email,
		&patient.Address,
		&patient.MedicalHistory,
		&patient.RegisteredAt,
	); err != nil {
		return nil, translateError(err)
	}
	patient.BirthDate = domain.NewDate(birthDate)
	return &patient, nil
}

func (r *patientRepository) list(ctx context.Context, query string, args ...any) ([]domain.Patient, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	patients := make([]domain.Patient, 0)
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, *patient)
	}
	return patients, translateError(rows.Err())
}

func (r *patientRepository) List(ctx context.Context) ([]domain.Patient, error) {
	return r.list(ctx, `SELECT `+patientColumns+` FROM pacientes ORDER BY id_paciente`)
}

func (r *patientRepository) GetByID(ctx context.Context, id int) (*domain.Patient, error) {
	return scanPatient(r.db.QueryRow(ctx, `SELECT `+patientColumns+` FROM pacientes WHERE id_paciente=$1`, id))
}

func (r *patientRepository) SearchByName(ctx context.Context, name string) ([]domain.Patient, error) {
	return r.list(ctx, `SELECT `+patientColumns+` FROM pacientes WHERE lower(nombre) = lower($1) ORDER BY id_paciente`, name)
}

func (r *patientRepository) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pacientes WHERE id_paciente=$1)`, id).Scan(&exists)
	return exists, translateError(err)
}

func (r *patientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	const query = `
        INSERT INTO pacientes (nombre, apellido, fecha_nacimiento, sexo, telefono, correo, direccion, historial_medico)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id_paciente, fecha_registro`
	err := r.db.QueryRow(ctx, query,
		patient.Name,
		patient.LastName,
		patient.BirthDate.Time,
		patient.Sex,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.MedicalHistory,
	).Scan(&patient.ID, &patient.RegisteredAt)
	return translateError(err)
}

func (r *patientRepository) Update(ctx context.Context, id int, patch domain.PatientPatch) error {
	const query = `
        UPDATE pacientes SET
            nombre = COALESCE($1, nombre),
            apellido = COALESCE($2, apellido),
            fecha_nacimiento = COALESCE($3, fecha_nacimiento),
            sexo = COALESCE($4, sexo),
            telefono = COALESCE($5, telefono),
            correo = COALESCE($6, correo),
            direccion = COALESCE($7, direccion),
            historial_medico = COALESCE($8, historial_medico)
        WHERE id_paciente=$9`

	var birthDate *time.Time
	if patch.BirthDate != nil {
		birthDate = &patch.BirthDate.Time
	}
	return affectedOne(r.db.Exec(ctx, query,
		patch.Name,
		patch.LastName,
		birthDate,
		patch.Sex,
		patch.Phone,
		patch.Email,
		patch.Address,
		patch.MedicalHistory,
		id,
	))
}

func (r *patientRepository) Delete(ctx context.Context, id int) error {
	return affectedOne(r.db.Exec(ctx, `DELETE FROM pacientes WHERE id_paciente=$1`, id))
}
