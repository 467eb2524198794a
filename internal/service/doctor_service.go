package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinica/clinic-api/internal/domain"
	"github.com/clinica/clinic-api/internal/repository"
	apperrors "github.com/clinica/clinic-api/pkg/util/errorutil"
)

const msgSpecialtyMissing = "La especialidad no existe"

// DoctorService is a thin layer over the doctor and specialty repositories.
type DoctorService struct {
	doctors     repository.DoctorRepository
	specialties repository.SpecialtyRepository
	tx          repository.Transactor
}

// DoctorDependencies bundles requirements for the doctor service.
type DoctorDependencies struct {
	DoctorRepo    repository.DoctorRepository
	SpecialtyRepo repository.SpecialtyRepository
	Transactor    repository.Transactor
}

// NewDoctorService constructs the service.
func NewDoctorService(deps DoctorDependencies) *DoctorService {
	return &DoctorService{doctors: deps.DoctorRepo, specialties: deps.SpecialtyRepo, tx: deps.Transactor}
}

func doctorMissing(id int) string {
	return fmt.Sprintf("No existe un doctor con el ID %d", id)
}

func (s *DoctorService) List(ctx context.Context) ([]domain.Doctor, error) {
	items, err := s.doctors.List(ctx)
	return items, storeFailure(err)
}

func (s *DoctorService) Get(ctx context.Context, id int) (*domain.Doctor, error) {
	doctor, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, doctorMissing(id))
	}
	return doctor, nil
}

func (s *DoctorService) SearchByName(ctx context.Context, name string) ([]domain.Doctor, error) {
	items, err := s.doctors.SearchByName(ctx, name)
	return items, storeFailure(err)
}

func (s *DoctorService) ListSpecialties(ctx context.Context) ([]domain.Specialty, error) {
	items, err := s.specialties.List(ctx)
	return items, storeFailure(err)
}

func (s *DoctorService) Create(ctx context.Context, doctor *domain.Doctor) error {
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := requireSpecialty(ctx, repos, doctor.SpecialtyID); err != nil {
			return err
		}
		return repos.Doctors.Create(ctx, doctor)
	})
	return doctorWriteError(err)
}

func (s *DoctorService) Update(ctx context.Context, id int, patch domain.DoctorPatch) error {
	if patch.Empty() {
		return apperrors.NewValidationError(msgNothingToUpdate, nil)
	}
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if patch.SpecialtyID != nil {
			if err := requireSpecialty(ctx, repos, *patch.SpecialtyID); err != nil {
				return err
			}
		}
		if err := repos.Doctors.Update(ctx, id, patch); err != nil {
			return notFoundOr(err, doctorMissing(id))
		}
		return nil
	})
	return doctorWriteError(err)
}

func (s *DoctorService) Delete(ctx context.Context, id int) error {
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Doctors.Delete(ctx, id); err != nil {
			return notFoundOr(err, doctorMissing(id))
		}
		return nil
	})
	if errors.Is(err, repository.ErrForeignKeyViolation) {
		return apperrors.NewConflict("El doctor tiene citas o usuarios asociados", map[string]any{"id_doctor": id})
	}
	return storeFailure(err)
}

func requireSpecialty(ctx context.Context, repos repository.Repositories, id int) error {
	exists, err := repos.Specialties.Exists(ctx, id)
	if err != nil {
		return storeFailure(err)
	}
	if !exists {
		return apperrors.NewNotFound(msgSpecialtyMissing, map[string]any{"id_especialidad": id})
	}
	return nil
}

func doctorWriteError(err error) error {
	if errors.Is(err, repository.ErrUniqueViolation) {
		return apperrors.NewConflict("La cédula profesional ya está registrada", nil)
	}
	return storeFailure(err)
}
