package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clinica/clinic-api/internal/auth"
	"github.com/clinica/clinic-api/internal/domain"
	"github.com/clinica/clinic-api/internal/repository"
	apperrors "github.com/clinica/clinic-api/pkg/util/errorutil"
)

const (
	msgUserMissing   = "El usuario no existe"
	msgUsernameTaken = "El nombre de usuario ya existe"
)

// UserService manages login credentials.
type UserService struct {
	users      repository.UserRepository
	tx         repository.Transactor
	bcryptCost int
}

// UserDependencies bundles requirements for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Transactor repository.Transactor
	BcryptCost int
}

// UserCreateInput describes a new credential.
type UserCreateInput struct {
	Name      *string
	Username  string
	Password  string
	Role      domain.Role
	PatientID *int
	DoctorID  *int
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{users: deps.UserRepo, tx: deps.Transactor, bcryptCost: deps.BcryptCost}
}

// List returns every credential.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	return users, storeFailure(err)
}

// Get returns one credential.
func (s *UserService) Get(ctx context.Context, id int) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgUserMissing)
	}
	return user, nil
}

// Create hashes the password and stores a new credential.
func (s *UserService) Create(ctx context.Context, in UserCreateInput) (*domain.User, error) {
	user := &domain.User{
		Name:      in.Name,
		Username:  strings.TrimSpace(in.Username),
		Role:      in.Role,
		PatientID: in.PatientID,
		DoctorID:  in.DoctorID,
	}
	if user.Username == "" {
		return nil, apperrors.NewMissingField("username")
	}
	if in.Password == "" {
		return nil, apperrors.NewMissingField("password")
	}
	if err := user.ValidateRoleLinks(); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"rol": string(user.Role)})
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	err = s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := checkUserLinks(ctx, repos, user); err != nil {
			return err
		}
		return repos.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, userWriteError(err)
	}
	return user, nil
}

// Update applies a patch. Non-admin callers may only edit their own name,
// username and password.
func (s *UserService) Update(ctx context.Context, actor *auth.Principal, id int, patch domain.UserPatch) (*domain.User, error) {
	if patch.Empty() {
		return nil, apperrors.NewValidationError(msgNothingToUpdate, nil)
	}
	if actor == nil {
		return nil, apperrors.NewUnauthorized("Token de autenticación requerido")
	}
	if !actor.IsAdmin() {
		if actor.UserID != id {
			return nil, apperrors.NewForbidden("Acceso denegado. Solo el propietario o un admin puede modificar este recurso")
		}
		if patch.TouchesPrivileges() {
			return nil, apperrors.NewForbidden("Acceso denegado. Solo un admin puede cambiar el rol o los vínculos")
		}
	}
	if patch.Username != nil && strings.TrimSpace(*patch.Username) == "" {
		return nil, apperrors.NewValidationError("El campo username no puede estar vacío", map[string]any{"campo": "username"})
	}

	var hash string
	if patch.Password != nil {
		if *patch.Password == "" {
			return nil, apperrors.NewValidationError("El campo password no puede estar vacío", map[string]any{"campo": "password"})
		}
		h, err := s.hashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	var updated *domain.User
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := repos.Users.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, msgUserMissing)
		}
		patch.Apply(user)
		if hash != "" {
			user.PasswordHash = hash
		}
		if err := user.ValidateRoleLinks(); err != nil {
			return apperrors.NewValidationError(err.Error(), map[string]any{"rol": string(user.Role)})
		}
		if patch.PatientID.Set || patch.DoctorID.Set {
			if err := checkUserLinks(ctx, repos, user); err != nil {
				return err
			}
		}
		if err := repos.Users.Update(ctx, user); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound(msgUserMissing, nil)
			}
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, userWriteError(err)
	}
	return updated, nil
}

// Delete removes a credential.
func (s *UserService) Delete(ctx context.Context, id int) error {
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Users.Delete(ctx, id); err != nil {
			return notFoundOr(err, msgUserMissing)
		}
		return nil
	})
	return storeFailure(err)
}

func checkUserLinks(ctx context.Context, repos repository.Repositories, user *domain.User) error {
	if user.PatientID != nil {
		exists, err := repos.Patients.Exists(ctx, *user.PatientID)
		if err != nil {
			return storeFailure(err)
		}
		if !exists {
			return apperrors.NewNotFound(msgPatientMissing, nil)
		}
	}
	if user.DoctorID != nil {
		if _, err := repos.Doctors.GetByID(ctx, *user.DoctorID); err != nil {
			return notFoundOr(err, msgDoctorMissing)
		}
	}
	return nil
}

func userWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrUniqueViolation):
		return apperrors.NewConflict(msgUsernameTaken, nil)
	case errors.Is(err, repository.ErrForeignKeyViolation):
		return apperrors.NewConflict("El usuario referencia un paciente o doctor inexistente", nil)
	}
	return storeFailure(err)
}

// hashPassword maps an over-long password to a validation error; bcrypt
// cannot hash it.
func (s *UserService) hashPassword(plain string) (string, error) {
	hash, err := auth.HashPassword(plain, s.bcryptCost)
	switch {
	case errors.Is(err, auth.ErrPasswordTooLong):
		return "", apperrors.NewValidationError(
			fmt.Sprintf("El campo password admite como máximo %d bytes", auth.MaxPasswordBytes),
			map[string]any{"campo": "password"})
	case err != nil:
		return "", apperrors.NewInternalError(err)
	}
	return hash, nil
}
