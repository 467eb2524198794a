package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinica/clinic-api/internal/api/dto"
	"github.com/clinica/clinic-api/internal/auth"
	"github.com/clinica/clinic-api/internal/domain"
	"github.com/clinica/clinic-api/internal/service"
	apperrors "github.com/clinica/clinic-api/pkg/util/errorutil"
)

// UsersHandler manages login credentials.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// List GET /usuarios.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, dto.NewUserResponse(u))
	}
	return respond(c, fiber.StatusOK, "Lista de usuarios", items)
}

// Me GET /usuarios/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Token de autenticación requerido")
	}
	user, err := h.users.Get(c.UserContext(), principal.UserID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Usuario encontrado", dto.NewUserResponse(*user))
}

// Create POST /usuarios.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.UserCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}

	user, err := h.users.Create(c.UserContext(), service.UserCreateInput{
		Name:      req.Name,
		Username:  *req.Username,
		Password:  *req.Password,
		Role:      domain.Role(*req.Role),
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Usuario agregado", fiber.Map{"id_usuario": user.ID})
}

// Update PUT /usuarios/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UserUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	principal, _ := auth.PrincipalFromContext(c)

	user, err := h.users.Update(c.UserContext(), principal, id, req.Patch())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Usuario actualizado", dto.NewUserResponse(*user))
}

// Delete DELETE /usuarios/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Usuario eliminado", nil)
}
