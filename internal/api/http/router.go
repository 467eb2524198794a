package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinica/clinic-api/internal/api/http/handlers"
	"github.com/clinica/clinic-api/internal/auth"
	"github.com/clinica/clinic-api/internal/domain"
	"github.com/clinica/clinic-api/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Patients       *handlers.PatientsHandler
	Doctors        *handlers.DoctorsHandler
	Appointments   *handlers.AppointmentsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
	// LoginLimiter is optional; nil leaves POST /login unthrottled.
	LoginLimiter *auth.LoginLimiter
}

// route is one row of the authorization policy. Every non-public route
// requires a bearer token; roles narrows it further and ownerParam admits
// the record owner besides admins.
type route struct {
	method     string
	path       string
	public     bool
	roles      []domain.Role
	ownerParam string
	guards     []fiber.Handler
	handler    fiber.Handler
}

func (cfg RouteConfig) routes() []route {
	var loginGuards []fiber.Handler
	if cfg.LoginLimiter != nil {
		loginGuards = append(loginGuards, cfg.LoginLimiter.Handle)
	}

	admin := []domain.Role{domain.RoleAdmin}

	return []route{
		{method: fiber.MethodGet, path: "/health/live", public: true, handler: cfg.Health.Live},
		{method: fiber.MethodGet, path: "/health/ready", public: true, handler: cfg.Health.Ready},
		{method: fiber.MethodGet, path: "/metrics", public: true, handler: cfg.Metrics.Handler()},

		{method: fiber.MethodPost, path: "/login", public: true, guards: loginGuards, handler: cfg.Auth.Login},
		{method: fiber.MethodGet, path: "/protected", handler: cfg.Auth.Protected},

		{method: fiber.MethodGet, path: "/usuarios", roles: admin, handler: cfg.Users.List},
		{method: fiber.MethodPost, path: "/usuarios", roles: admin, handler: cfg.Users.Create},
		{method: fiber.MethodGet, path: "/usuarios/me", handler: cfg.Users.Me},
		{method: fiber.MethodPut, path: "/usuarios/:id<int>", ownerParam: "id", handler: cfg.Users.Update},
		{method: fiber.MethodDelete, path: "/usuarios/:id<int>", roles: admin, handler: cfg.Users.Delete},

		{method: fiber.MethodGet, path: "/pacientes", handler: cfg.Patients.List},
		{method: fiber.MethodGet, path: "/pacientes/:id<int>", handler: cfg.Patients.Get},
		{method: fiber.MethodGet, path: "/pacientes/:nombre", handler: cfg.Patients.Search},
		{method: fiber.MethodPost, path: "/pacientes", handler: cfg.Patients.Create},
		{method: fiber.MethodPut, path: "/pacientes/:id<int>", handler: cfg.Patients.Update},
		{method: fiber.MethodDelete, path: "/pacientes/:id<int>", handler: cfg.Patients.Delete},

		{method: fiber.MethodGet, path: "/doctores", handler: cfg.Doctors.List},
		{method: fiber.MethodGet, path: "/doctores/:id<int>", handler: cfg.Doctors.Get},
		{method: fiber.MethodGet, path: "/doctores/:nombre", handler: cfg.Doctors.Search},
		{method: fiber.MethodPost, path: "/doctores", handler: cfg.Doctors.Create},
		{method: fiber.MethodPut, path: "/doctores/:id<int>", handler: cfg.Doctors.Update},
		{method: fiber.MethodDelete, path: "/doctores/:id<int>", handler: cfg.Doctors.Delete},
		{method: fiber.MethodGet, path: "/especialidades", handler: cfg.Doctors.Specialties},

		{method: fiber.MethodGet, path: "/citas", handler: cfg.Appointments.List},
		{method: fiber.MethodGet, path: "/citas/:id<int>", handler: cfg.Appointments.Get},
		{method: fiber.MethodGet, path: "/citas/doctor/:nombre", handler: cfg.Appointments.ByDoctor},
		{method: fiber.MethodGet, path: "/citas/paciente/:nombre", handler: cfg.Appointments.ByPatient},
		{method: fiber.MethodGet, path: "/citas/fecha/:fecha", handler: cfg.Appointments.ByDate},
		{method: fiber.MethodGet, path: "/citas/especialidad/:nombre", handler: cfg.Appointments.BySpecialty},
		{method: fiber.MethodPost, path: "/citas", handler: cfg.Appointments.Create},
		{method: fiber.MethodPut, path: "/citas/:id<int>", handler: cfg.Appointments.Update},
		{method: fiber.MethodDelete, path: "/citas/:id<int>", handler: cfg.Appointments.Delete},
	}
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	for _, r := range cfg.routes() {
		app.Add(r.method, r.path, r.chain(cfg.AuthMiddleware)...)
	}
}

func (r route) chain(authn *auth.AuthMiddleware) []fiber.Handler {
	chain := append([]fiber.Handler{}, r.guards...)
	if !r.public {
		chain = append(chain, authn.Handle, auth.RequireRole(r.roles...))
		if r.ownerParam != "" {
			chain = append(chain, auth.RequireOwnerOrAdmin(r.ownerParam))
		}
	}
	return append(chain, r.handler)
}
