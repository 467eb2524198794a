package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinica/clinic-api/internal/domain"
	apperrors "github.com/clinica/clinic-api/pkg/util/errorutil"
)

// respond writes the {mensaje, exito, datos} envelope. exito follows the status.
func respond(c *fiber.Ctx, status int, message string, data any) error {
	body := fiber.Map{
		"mensaje": message,
		"exito":   status < fiber.StatusBadRequest,
	}
	if data != nil {
		body["datos"] = data
	}
	return c.Status(status).JSON(body)
}

// respondList answers 404 with an empty list when nothing matched.
func respondList[T any](c *fiber.Ctx, items []T, found, empty string) error {
	if len(items) == 0 {
		return respond(c, fiber.StatusNotFound, empty, []T{})
	}
	return respond(c, fiber.StatusOK, found, items)
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("Cuerpo de la solicitud inválido", map[string]any{"error": err.Error()})
	}
	return nil
}

// pathID reads the integer route parameter. Routes constrain it with <int>.
func pathID(c *fiber.Ctx, name string) (int, error) {
	id, err := c.ParamsInt(name)
	if err != nil {
		return 0, apperrors.NewValidationError("Identificador inválido", map[string]any{"campo": name})
	}
	return id, nil
}

func parseOptionalDate(field string, raw *string) (*domain.Date, error) {
	if raw == nil {
		return nil, nil
	}
	date, err := domain.ParseDate(*raw)
	if err != nil {
		return nil, apperrors.NewValidationError("Error de formato: "+err.Error(), map[string]any{"campo": field})
	}
	return &date, nil
}
