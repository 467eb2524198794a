package http

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/clinica/clinic-api/internal/auth"
	"github.com/clinica/clinic-api/internal/observability"
	apperrors "github.com/clinica/clinic-api/pkg/util/errorutil"
)

// MiddlewareConfig controls the global middleware chain.
type MiddlewareConfig struct {
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Timeout time.Duration
	// ExposeStoreErrors appends the store cause to STORE_ERROR messages.
	ExposeStoreErrors bool
}

// RegisterMiddlewares attaches global middlewares. The request logger wraps
// error handling so it observes the final status code.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	app.Use(observability.RequestLogger(cfg.Logger, cfg.Metrics, principalUserID))
	app.Use(errorHandlingMiddleware(cfg.Logger, cfg.Metrics, cfg.ExposeStoreErrors))
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
}

func principalUserID(c *fiber.Ctx) (int, bool) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return 0, false
	}
	return principal.UserID, true
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics, exposeStoreErrors bool) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(fmt.Errorf("panic: %v", r))
			}
			if err != nil {
				err = writeError(c, err, logger, metrics, exposeStoreErrors)
			}
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, err error, logger *zap.Logger, metrics *observability.Metrics, exposeStoreErrors bool) error {
	domainErr := toDomainError(err)
	if metrics != nil {
		metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)
	}

	message := domainErr.Message
	if exposeStoreErrors && domainErr.Code == apperrors.CodeStore && domainErr.Err != nil {
		message = fmt.Sprintf("%s: %v", message, domainErr.Err)
	}
	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("request_id", observability.RequestID(c)),
			zap.String("code", domainErr.Code),
			zap.Error(domainErr))
	}

	body := fiber.Map{
		"mensaje": message,
		"exito":   false,
	}
	if len(domainErr.Details) > 0 {
		body["datos"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(body)
}

// toDomainError also maps fiber's own errors, such as unmatched routes.
func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			return apperrors.NewDomainError(apperrors.CodeNotFound, "Ruta no encontrada", fiberErr.Code, nil)
		case fiber.StatusMethodNotAllowed:
			return apperrors.NewDomainError("METHOD_NOT_ALLOWED", "Método no permitido", fiberErr.Code, nil)
		default:
			return apperrors.NewDomainError("HTTP_ERROR", fiberErr.Message, fiberErr.Code, nil)
		}
	}
	return apperrors.ToDomainError(err)
}
