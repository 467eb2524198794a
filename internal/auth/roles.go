package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/clinica/clinic-api/internal/domain"
	apperrors "github.com/clinica/clinic-api/pkg/util/errorutil"
)

// RequireRole ensures the principal has one of the allowed roles.
// An empty allow-list admits any authenticated caller.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	names := make([]string, 0, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
		names = append(names, string(role))
	}
	denied := "Acceso denegado. Se requiere rol: " + strings.Join(names, ", ")

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("Token de autenticación requerido")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden(denied)
		}
		return c.Next()
	}
}

// RequireOwnerOrAdmin lets a caller act on the user named by the route
// parameter only when it is their own record or they are an admin.
func RequireOwnerOrAdmin(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("Token de autenticación requerido")
		}
		if principal.IsAdmin() {
			return c.Next()
		}
		id, err := c.ParamsInt(param)
		if err != nil {
			return apperrors.NewValidationError("Identificador inválido", nil)
		}
		if id != principal.UserID {
			return apperrors.NewForbidden("Acceso denegado. Solo el propietario o un admin puede modificar este recurso")
		}
		return c.Next()
	}
}
