package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/clinica/clinic-api/internal/domain"
)

// UserRepository defines persistence access for login credentials.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id int) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, id int) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int) error
}

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id_usuario, nombre, username, password_hash, rol, id_paciente, id_doctor`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.PatientID,
		&user.DoctorID,
	); err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM usuarios ORDER BY id_usuario`)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, translateError(rows.Err())
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id_usuario=$1`, id))
}

func (r *userRepository) GetByIDForUpdate(ctx context.Context, id int) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id_usuario=$1 FOR UPDATE`, id))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM usuarios WHERE username=$1`, username))
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `SELECT sp_usuarios_add($1, $2, $3, $4, $5, $6)`
	err := r.db.QueryRow(ctx, query,
		user.Name,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.PatientID,
		user.DoctorID,
	).Scan(&user.ID)
	return translateError(err)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE usuarios SET nombre=$1, username=$2, password_hash=$3, rol=$4, id_paciente=$5, id_doctor=$6
        WHERE id_usuario=$7`
	return affectedOne(r.db.Exec(ctx, query,
		user.Name,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.PatientID,
		user.DoctorID,
		user.ID,
	))
}

func (r *userRepository) Delete(ctx context.Context, id int) error {
	var deleted int
	if err := r.db.QueryRow(ctx, `SELECT sp_usuarios_delete($1)`, id).Scan(&deleted); err != nil {
		return translateError(err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}
