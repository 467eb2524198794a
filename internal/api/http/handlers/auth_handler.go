package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinica/clinic-api/internal/api/dto"
	"github.com/clinica/clinic-api/internal/auth"
	"github.com/clinica/clinic-api/internal/service"
	apperrors "github.com/clinica/clinic-api/pkg/util/errorutil"
)

// AuthHandler exposes login and the token probe.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.UserContext(), *req.Username, *req.Password)
	if err != nil {
		return err
	}

	// The token is also kept at the top level for existing clients.
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"mensaje": "Login exitoso",
		"exito":   true,
		"token":   res.Token,
		"datos": dto.LoginResponse{
			Token:     res.Token,
			Role:      string(res.User.Role),
			Username:  res.User.Username,
			UserID:    res.User.ID,
			ExpiresAt: res.ExpiresAt,
		},
	})
}

// Protected handles GET /protected.
func (h *AuthHandler) Protected(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Token de autenticación requerido")
	}
	return respond(c, fiber.StatusOK, "Acceso autorizado a ruta protegida", dto.PrincipalResponse{
		UserID:   principal.UserID,
		Username: principal.Username,
		Role:     string(principal.Role),
	})
}
