package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinica/clinic-api/internal/domain"
	"github.com/clinica/clinic-api/internal/repository"
	apperrors "github.com/clinica/clinic-api/pkg/util/errorutil"
)

// PatientService is a thin layer over the patient repository.
type PatientService struct {
	patients repository.PatientRepository
	tx       repository.Transactor
}

// NewPatientService constructs the service.
func NewPatientService(patients repository.PatientRepository, tx repository.Transactor) *PatientService {
	return &PatientService{patients: patients, tx: tx}
}

func patientMissing(id int) string {
	return fmt.Sprintf("No existe un paciente con el ID %d", id)
}

func (s *PatientService) List(ctx context.Context) ([]domain.Patient, error) {
	items, err := s.patients.List(ctx)
	return items, storeFailure(err)
}

func (s *PatientService) Get(ctx context.Context, id int) (*domain.Patient, error) {
	patient, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, patientMissing(id))
	}
	return patient, nil
}

func (s *PatientService) SearchByName(ctx context.Context, name string) ([]domain.Patient, error) {
	items, err := s.patients.SearchByName(ctx, name)
	return items, storeFailure(err)
}

// Create stores a patient; the registration timestamp is assigned by the store.
func (s *PatientService) Create(ctx context.Context, patient *domain.Patient) error {
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Patients.Create(ctx, patient)
	})
	return storeFailure(err)
}

func (s *PatientService) Update(ctx context.Context, id int, patch domain.PatientPatch) error {
	if patch.Empty() {
		return apperrors.NewValidationError(msgNothingToUpdate, nil)
	}
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Patients.Update(ctx, id, patch); err != nil {
			return notFoundOr(err, patientMissing(id))
		}
		return nil
	})
	return storeFailure(err)
}

func (s *PatientService) Delete(ctx context.Context, id int) error {
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Patients.Delete(ctx, id); err != nil {
			return notFoundOr(err, patientMissing(id))
		}
		return nil
	})
	if errors.Is(err, repository.ErrForeignKeyViolation) {
		return apperrors.NewConflict("El paciente tiene citas o usuarios asociados", map[string]any{"id_paciente": id})
	}
	return storeFailure(err)
}
