package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/clinica/clinic-api/internal/api/dto"
	"github.com/clinica/clinic-api/internal/domain"
	"github.com/clinica/clinic-api/internal/service"
)

// DoctorsHandler serves /doctores and /especialidades.
type DoctorsHandler struct {
	doctors *service.DoctorService
}

// NewDoctorsHandler constructs handler.
func NewDoctorsHandler(doctors *service.DoctorService) *DoctorsHandler {
	return &DoctorsHandler{doctors: doctors}
}

func doctorList(items []domain.Doctor) []dto.DoctorResponse {
	out := make([]dto.DoctorResponse, 0, len(items))
	for _, d := range items {
		out = append(out, dto.NewDoctorResponse(d))
	}
	return out
}

// List GET /doctores.
func (h *DoctorsHandler) List(c *fiber.Ctx) error {
	items, err := h.doctors.List(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Listado de Doctores", doctorList(items))
}

// Get GET /doctores/:id<int>.
func (h *DoctorsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	doctor, err := h.doctors.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Doctor encontrado", dto.NewDoctorResponse(*doctor))
}

// Search GET /doctores/:nombre.
func (h *DoctorsHandler) Search(c *fiber.Ctx) error {
	items, err := h.doctors.SearchByName(c.UserContext(), c.Params("nombre"))
	if err != nil {
		return err
	}
	return respondList(c, doctorList(items), "Doctor encontrado", "Doctor no encontrado")
}

// Create POST /doctores.
func (h *DoctorsHandler) Create(c *fiber.Ctx) error {
	var req dto.DoctorCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}

	doctor := &domain.Doctor{
		Name:        *req.Name,
		LastName:    *req.LastName,
		License:     *req.License,
		Phone:       *req.Phone,
		Email:       *req.Email,
		SpecialtyID: *req.SpecialtyID,
	}
	if err := h.doctors.Create(c.UserContext(), doctor); err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Doctor agregado exitosamente", fiber.Map{"id_doctor": doctor.ID})
}

// Update PUT /doctores/:id.
func (h *DoctorsHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.DoctorUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.doctors.Update(c.UserContext(), id, req.Patch()); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fmt.Sprintf("Doctor con ID %d actualizado exitosamente", id), nil)
}

// Delete DELETE /doctores/:id.
func (h *DoctorsHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.doctors.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fmt.Sprintf("Doctor con ID %d eliminado exitosamente", id), nil)
}

// Specialties GET /especialidades.
func (h *DoctorsHandler) Specialties(c *fiber.Ctx) error {
	items, err := h.doctors.ListSpecialties(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.SpecialtyResponse, 0, len(items))
	for _, s := range items {
		out = append(out, dto.SpecialtyResponse{ID: s.ID, Name: s.Name})
	}
	return respond(c, fiber.StatusOK, "Listado de Especialidades", out)
}
