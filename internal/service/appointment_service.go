package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinica/clinic-api/internal/domain"
	"github.com/clinica/clinic-api/internal/events"
	"github.com/clinica/clinic-api/internal/observability"
	"github.com/clinica/clinic-api/internal/repository"
	apperrors "github.com/clinica/clinic-api/pkg/util/errorutil"
)

const (
	msgDoctorMissing      = "El doctor no existe"
	msgPatientMissing     = "El paciente no existe"
	msgSlotTaken          = "El doctor ya tiene una cita en ese horario"
	msgAppointmentMissing = "La cita no existe"
)

// maxCost is the largest value NUMERIC(10,2) holds.
var maxCost = decimal.RequireFromString("99999999.99")

// AppointmentService books and maintains appointments.
type AppointmentService struct {
	appointments repository.AppointmentRepository
	tx           repository.Transactor
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
}

// AppointmentDependencies bundles requirements for the appointment service.
type AppointmentDependencies struct {
	AppointmentRepo repository.AppointmentRepository
	Transactor      repository.Transactor
	Dispatcher      events.Dispatcher
	Metrics         *observability.Metrics
}

// BookingInput carries a booking request. Date, Time and Cost stay raw so
// they are validated after the existence and exclusivity checks.
type BookingInput struct {
	PatientID int
	DoctorID  int
	Date      string
	Time      string
	Reason    string
	Cost      string
}

// AppointmentUpdateInput carries a partial appointment update.
type AppointmentUpdateInput struct {
	Date   *string
	Time   *string
	Status *string
	Reason *string
	Cost   *string
}

func (in AppointmentUpdateInput) empty() bool {
	return in.Date == nil && in.Time == nil && in.Status == nil && in.Reason == nil && in.Cost == nil
}

// NewAppointmentService constructs the service.
func NewAppointmentService(deps AppointmentDependencies) *AppointmentService {
	return &AppointmentService{
		appointments: deps.AppointmentRepo,
		tx:           deps.Transactor,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
	}
}

// Book creates an appointment after checking, in order: doctor and patient
// exist, the doctor slot is free, and date, time and cost are well formed.
// All checks and the insert share one transaction holding the doctor row lock.
func (s *AppointmentService) Book(ctx context.Context, in BookingInput) (*domain.Appointment, error) {
	var booked domain.Appointment

	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Doctors.LockByID(ctx, in.DoctorID); err != nil {
			return notFoundOr(err, msgDoctorMissing)
		}
		exists, err := repos.Patients.Exists(ctx, in.PatientID)
		if err != nil {
			return storeFailure(err)
		}
		if !exists {
			return apperrors.NewNotFound(msgPatientMissing, nil)
		}

		// An unparsable date or time cannot collide with a stored slot, so the
		// exclusivity check only runs on well-formed values.
		date, dateErr := domain.ParseDate(in.Date)
		clock, clockErr := domain.ParseClock(in.Time)
		if dateErr == nil && clockErr == nil {
			slot := domain.Slot{DoctorID: in.DoctorID, Date: date, Time: clock}
			taken, err := repos.Appointments.SlotTaken(ctx, slot, 0)
			if err != nil {
				return storeFailure(err)
			}
			if taken {
				return s.slotTaken(slot)
			}
		}

		if dateErr != nil {
			return formatError("fecha", dateErr)
		}
		if clockErr != nil {
			return formatError("hora", clockErr)
		}
		cost, err := parseCost(in.Cost)
		if err != nil {
			return formatError("precio_costo", err)
		}

		booked = domain.Appointment{
			PatientID: in.PatientID,
			DoctorID:  in.DoctorID,
			Date:      date,
			Time:      clock,
			Status:    domain.AppointmentStatusNew,
			Reason:    in.Reason,
			Cost:      cost,
		}
		if err := repos.Appointments.Create(ctx, &booked); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.writeError(err, booked.Slot())
	}

	s.metrics.AppointmentBooked()
	s.publish(ctx, events.EventAppointmentBooked, booked)
	return &booked, nil
}

// Update applies a partial change. Moving to another slot re-runs the
// exclusivity check under the doctor lock.
func (s *AppointmentService) Update(ctx context.Context, id int, in AppointmentUpdateInput) (*domain.Appointment, error) {
	if in.empty() {
		return nil, apperrors.NewValidationError(msgNothingToUpdate, nil)
	}

	var (
		updated *domain.Appointment
		target  domain.Slot
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		appt, err := repos.Appointments.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, msgAppointmentMissing)
		}
		previous := appt.Slot()

		if err := applyAppointmentUpdate(appt, in); err != nil {
			return err
		}
		target = appt.Slot()

		if !appt.Slot().Same(previous) {
			if err := repos.Doctors.LockByID(ctx, appt.DoctorID); err != nil {
				return notFoundOr(err, msgDoctorMissing)
			}
			taken, err := repos.Appointments.SlotTaken(ctx, appt.Slot(), appt.ID)
			if err != nil {
				return storeFailure(err)
			}
			if taken {
				return s.slotTaken(appt.Slot())
			}
		}

		if err := repos.Appointments.Update(ctx, appt); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound(msgAppointmentMissing, nil)
			}
			return err
		}
		updated = appt
		return nil
	})
	if err != nil {
		return nil, s.writeError(err, target)
	}

	s.publish(ctx, events.EventAppointmentUpdated, *updated)
	return updated, nil
}

// Cancel deletes an appointment.
func (s *AppointmentService) Cancel(ctx context.Context, id int) error {
	var removed *domain.Appointment
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		appt, err := repos.Appointments.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, msgAppointmentMissing)
		}
		if err := repos.Appointments.Delete(ctx, id); err != nil {
			return notFoundOr(err, msgAppointmentMissing)
		}
		removed = appt
		return nil
	})
	if err != nil {
		return storeFailure(err)
	}

	s.publish(ctx, events.EventAppointmentCancelled, *removed)
	return nil
}

// List returns every appointment.
func (s *AppointmentService) List(ctx context.Context) ([]domain.Appointment, error) {
	items, err := s.appointments.List(ctx)
	return items, storeFailure(err)
}

// Get returns one appointment.
func (s *AppointmentService) Get(ctx context.Context, id int) (*domain.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Cita no encontrada")
	}
	return appt, nil
}

// ListByDoctor returns the appointments of doctors with the given first name.
func (s *AppointmentService) ListByDoctor(ctx context.Context, name string) ([]domain.Appointment, error) {
	items, err := s.appointments.ListByDoctorName(ctx, name)
	return items, storeFailure(err)
}

// ListByPatient returns the appointments of patients with the given first name.
func (s *AppointmentService) ListByPatient(ctx context.Context, name string) ([]domain.Appointment, error) {
	items, err := s.appointments.ListByPatientName(ctx, name)
	return items, storeFailure(err)
}

// ListByDate returns the appointments on a YYYY-MM-DD day.
func (s *AppointmentService) ListByDate(ctx context.Context, raw string) ([]domain.Appointment, error) {
	date, err := domain.ParseDate(raw)
	if err != nil {
		return nil, formatError("fecha", err)
	}
	items, err := s.appointments.ListByDate(ctx, date)
	return items, storeFailure(err)
}

// ListBySpecialty returns the appointments with doctors of a specialty.
func (s *AppointmentService) ListBySpecialty(ctx context.Context, name string) ([]domain.Appointment, error) {
	items, err := s.appointments.ListBySpecialty(ctx, name)
	return items, storeFailure(err)
}

func (s *AppointmentService) slotTaken(slot domain.Slot) error {
	s.metrics.SlotConflict()
	details := map[string]any{"id_doctor": slot.DoctorID}
	if !slot.Date.IsZero() {
		details["fecha"] = slot.Date.String()
		details["hora"] = slot.Time.String()
	}
	return apperrors.NewConflict(msgSlotTaken, details)
}

// writeError maps errors escaping a write transaction. The unique slot
// constraint catches bookings that raced past the exclusivity check.
func (s *AppointmentService) writeError(err error, slot domain.Slot) error {
	switch {
	case errors.Is(err, repository.ErrUniqueViolation):
		return s.slotTaken(slot)
	case errors.Is(err, repository.ErrForeignKeyViolation):
		return apperrors.NewConflict("La cita referencia un paciente o doctor inexistente", nil)
	}
	return storeFailure(err)
}

func (s *AppointmentService) publish(ctx context.Context, eventType events.EventType, appt domain.Appointment) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		AppointmentID: appt.ID,
		Timestamp:     time.Now(),
		Payload:       events.NewAppointmentPayload(appt),
	})
}

func applyAppointmentUpdate(appt *domain.Appointment, in AppointmentUpdateInput) error {
	if in.Date != nil {
		date, err := domain.ParseDate(*in.Date)
		if err != nil {
			return formatError("fecha", err)
		}
		appt.Date = date
	}
	if in.Time != nil {
		clock, err := domain.ParseClock(*in.Time)
		if err != nil {
			return formatError("hora", err)
		}
		appt.Time = clock
	}
	if in.Cost != nil {
		cost, err := parseCost(*in.Cost)
		if err != nil {
			return formatError("precio_costo", err)
		}
		appt.Cost = cost
	}
	if in.Status != nil {
		status := strings.TrimSpace(*in.Status)
		if status == "" {
			return apperrors.NewValidationError("El campo estado no puede estar vacío", map[string]any{"campo": "estado"})
		}
		appt.Status = status
	}
	if in.Reason != nil {
		appt.Reason = *in.Reason
	}
	return nil
}

// parseCost accepts a positive amount with at most two decimals.
func parseCost(raw string) (decimal.Decimal, error) {
	cost, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("precio_costo inválido %q", raw)
	}
	if !cost.IsPositive() {
		return decimal.Decimal{}, errors.New("precio_costo debe ser mayor a 0")
	}
	if !cost.Equal(cost.Round(2)) {
		return decimal.Decimal{}, errors.New("precio_costo admite como máximo dos decimales")
	}
	if cost.GreaterThan(maxCost) {
		return decimal.Decimal{}, errors.New("precio_costo excede el máximo permitido")
	}
	return cost, nil
}

func formatError(field string, err error) error {
	return apperrors.NewValidationError("Error de formato: "+err.Error(), map[string]any{"campo": field})
}
