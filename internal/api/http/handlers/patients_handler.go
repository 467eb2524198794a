package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/clinica/clinic-api/internal/api/dto"
	"github.com/clinica/clinic-api/internal/domain"
	"github.com/clinica/clinic-api/internal/service"
)

// PatientsHandler serves /pacientes.
type PatientsHandler struct {
	patients *service.PatientService
}

// NewPatientsHandler constructs handler.
func NewPatientsHandler(patients *service.PatientService) *PatientsHandler {
	return &PatientsHandler{patients: patients}
}

func patientList(items []domain.Patient) []dto.PatientResponse {
	out := make([]dto.PatientResponse, 0, len(items))
	for _, p := range items {
		out = append(out, dto.NewPatientResponse(p))
	}
	return out
}

// List GET /pacientes.
func (h *PatientsHandler) List(c *fiber.Ctx) error {
	items, err := h.patients.List(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Listado de Pacientes", patientList(items))
}

// Get GET /pacientes/:id<int>.
func (h *PatientsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	patient, err := h.patients.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Paciente encontrado", dto.NewPatientResponse(*patient))
}

// Search GET /pacientes/:nombre.
func (h *PatientsHandler) Search(c *fiber.Ctx) error {
	items, err := h.patients.SearchByName(c.UserContext(), c.Params("nombre"))
	if err != nil {
		return err
	}
	return respondList(c, patientList(items), "Paciente encontrado", "Paciente no encontrado")
}

// Create POST /pacientes.
func (h *PatientsHandler) Create(c *fiber.Ctx) error {
	var req dto.PatientCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	birth, err := parseOptionalDate("fecha_nacimiento", req.BirthDate)
	if err != nil {
		return err
	}

	patient := &domain.Patient{
		Name:           *req.Name,
		LastName:       *req.LastName,
		BirthDate:      *birth,
		Sex:            *req.Sex,
		Phone:          *req.Phone,
		Email:          *req.Email,
		Address:        *req.Address,
		MedicalHistory: *req.MedicalHistory,
	}
	if err := h.patients.Create(c.UserContext(), patient); err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Paciente agregado exitosamente", fiber.Map{"id_paciente": patient.ID})
}

// Update PUT /pacientes/:id.
func (h *PatientsHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.PatientUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	birth, err := parseOptionalDate("fecha_nacimiento", req.BirthDate)
	if err != nil {
		return err
	}

	patch := domain.PatientPatch{
		Name:           req.Name,
		LastName:       req.LastName,
		BirthDate:      birth,
		Sex:            req.Sex,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		MedicalHistory: req.MedicalHistory,
	}
	if err := h.patients.Update(c.UserContext(), id, patch); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Paciente actualizado exitosamente", nil)
}

// Delete DELETE /pacientes/:id.
func (h *PatientsHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.patients.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fmt.Sprintf("Paciente con ID %d eliminado exitosamente", id), nil)
}
