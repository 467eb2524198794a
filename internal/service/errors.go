package service

import (
	"errors"

	"github.com/clinica/clinic-api/internal/repository"
	apperrors "github.com/clinica/clinic-api/pkg/util/errorutil"
)

const msgNothingToUpdate = "No se proporcionaron campos para actualizar"

// storeFailure passes DomainErrors through and wraps anything else as a store error.
func storeFailure(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewStoreError(err)
}

// notFoundOr maps a missing record to a NotFound with message and everything
// else to storeFailure.
func notFoundOr(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(message, nil)
	}
	return storeFailure(err)
}
