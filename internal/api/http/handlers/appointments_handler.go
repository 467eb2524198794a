package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/clinica/clinic-api/internal/api/dto"
	"github.com/clinica/clinic-api/internal/service"
)

// AppointmentsHandler serves /citas.
type AppointmentsHandler struct {
	scheduler *service.AppointmentService
}

// NewAppointmentsHandler constructs handler.
func NewAppointmentsHandler(scheduler *service.AppointmentService) *AppointmentsHandler {
	return &AppointmentsHandler{scheduler: scheduler}
}

// List GET /citas.
func (h *AppointmentsHandler) List(c *fiber.Ctx) error {
	items, err := h.scheduler.List(c.UserContext())
	if err != nil {
		return err
	}
	return respondList(c, dto.NewAppointmentList(items), "Listado de Citas", "No hay citas registradas")
}

// Get GET /citas/:id<int>.
func (h *AppointmentsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	appt, err := h.scheduler.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Cita obtenida exitosamente", dto.NewAppointmentResponse(*appt))
}

// ByDoctor GET /citas/doctor/:nombre.
func (h *AppointmentsHandler) ByDoctor(c *fiber.Ctx) error {
	name := c.Params("nombre")
	items, err := h.scheduler.ListByDoctor(c.UserContext(), name)
	if err != nil {
		return err
	}
	return respondList(c, dto.NewAppointmentList(items),
		fmt.Sprintf("Citas del doctor %s", name),
		fmt.Sprintf("El doctor '%s' no tiene citas registradas", name))
}

// ByPatient GET /citas/paciente/:nombre.
func (h *AppointmentsHandler) ByPatient(c *fiber.Ctx) error {
	name := c.Params("nombre")
	items, err := h.scheduler.ListByPatient(c.UserContext(), name)
	if err != nil {
		return err
	}
	return respondList(c, dto.NewAppointmentList(items),
		fmt.Sprintf("Citas del paciente %s", name),
		fmt.Sprintf("El paciente '%s' no tiene citas registradas", name))
}

// ByDate GET /citas/fecha/:fecha.
func (h *AppointmentsHandler) ByDate(c *fiber.Ctx) error {
	date := c.Params("fecha")
	items, err := h.scheduler.ListByDate(c.UserContext(), date)
	if err != nil {
		return err
	}
	return respondList(c, dto.NewAppointmentList(items),
		fmt.Sprintf("Citas para la fecha %s", date),
		fmt.Sprintf("No hay citas para la fecha %s", date))
}

// BySpecialty GET /citas/especialidad/:nombre.
func (h *AppointmentsHandler) BySpecialty(c *fiber.Ctx) error {
	name := c.Params("nombre")
	items, err := h.scheduler.ListBySpecialty(c.UserContext(), name)
	if err != nil {
		return err
	}
	return respondList(c, dto.NewAppointmentList(items),
		fmt.Sprintf("Citas de la especialidad %s", name),
		fmt.Sprintf("No hay citas para la especialidad '%s'", name))
}

// Create POST /citas.
func (h *AppointmentsHandler) Create(c *fiber.Ctx) error {
	var req dto.AppointmentCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}

	appt, err := h.scheduler.Book(c.UserContext(), service.BookingInput{
		PatientID: *req.PatientID,
		DoctorID:  *req.DoctorID,
		Date:      *req.Date,
		Time:      *req.Time,
		Reason:    *req.Reason,
		Cost:      string(*req.Cost),
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Cita agregada exitosamente", dto.AppointmentCreated{ID: appt.ID})
}

// Update PUT /citas/:id.
func (h *AppointmentsHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AppointmentUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	appt, err := h.scheduler.Update(c.UserContext(), id, service.AppointmentUpdateInput{
		Date:   req.Date,
		Time:   req.Time,
		Status: req.Status,
		Reason: req.Reason,
		Cost:   req.CostString(),
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Cita actualizada exitosamente", dto.NewAppointmentResponse(*appt))
}

// Delete DELETE /citas/:id.
func (h *AppointmentsHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.scheduler.Cancel(c.UserContext(), id); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Cita eliminada exitosamente", nil)
}
