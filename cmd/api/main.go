package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/clinica/clinic-api/internal/api/http"
	"github.com/clinica/clinic-api/internal/api/http/handlers"
	"github.com/clinica/clinic-api/internal/auth"
	"github.com/clinica/clinic-api/internal/config"
	"github.com/clinica/clinic-api/internal/events"
	"github.com/clinica/clinic-api/internal/observability"
	"github.com/clinica/clinic-api/internal/persistence"
	"github.com/clinica/clinic-api/internal/repository"
	"github.com/clinica/clinic-api/internal/service"
	"github.com/clinica/clinic-api/internal/worker"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-api",
		Short: "Clinic management REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createUserCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// bootstrap loads configuration and opens the logger shared by every command.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func runServer(parent context.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
	if err != nil {
		logger.Error("failed to connect postgres", zap.Error(err))
		return err
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if _, err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Error("failed to run migrations", zap.Error(err))
			return err
		}
	}

	var attempts auth.AttemptTracker = auth.NoopAttemptTracker{}
	var redis *persistence.Redis
	if cfg.Login.MaxFailures > 0 {
		redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		attempts = auth.NewRedisAttemptTracker(redis.Client, cfg.Login.MaxFailures, cfg.Login.LockoutWindow())
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(dispatcher, logger, cfg.Notification)

	repos := repository.NewRepositories(pg.Pool)
	tx := repository.NewTransactor(pg.Pool)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), auth.WithLeeway(cfg.Auth.ClockSkew()))

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo: repos.Users,
		Tokens:   tokens,
		Attempts: attempts,
		Metrics:  metrics,
		Logger:   logger,
	})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   repos.Users,
		Transactor: tx,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	patientService := service.NewPatientService(repos.Patients, tx)
	doctorService := service.NewDoctorService(service.DoctorDependencies{
		DoctorRepo:    repos.Doctors,
		SpecialtyRepo: repos.Specialties,
		Transactor:    tx,
	})
	appointmentService := service.NewAppointmentService(service.AppointmentDependencies{
		AppointmentRepo: repos.Appointments,
		Transactor:      tx,
		Dispatcher:      dispatcher,
		Metrics:         metrics,
	})

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: !cfg.App.IsDevelopment(),
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:            logger,
		Metrics:           metrics,
		Timeout:           cfg.App.RequestTimeout(),
		ExposeStoreErrors: cfg.App.ExposeStoreErrors,
	})

	var limiter *auth.LoginLimiter
	if cfg.Login.RateLimitRPS > 0 {
		limiter = auth.NewLoginLimiter(ctx, cfg.Login.RateLimitRPS, cfg.Login.RateLimitBurst)
	}

	deps := map[string]handlers.Pinger{"postgres": pg}
	if redis != nil {
		deps["redis"] = redis
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Patients:       handlers.NewPatientsHandler(patientService),
		Doctors:        handlers.NewDoctorsHandler(doctorService),
		Appointments:   handlers.NewAppointmentsHandler(appointmentService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		Metrics:        metrics,
		LoginLimiter:   limiter,
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			logger.Error("fiber listen", zap.Error(err))
		}
		return err
	case <-waitForShutdown(logger):
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	return app.ShutdownWithContext(shutdownCtx)
}

func waitForShutdown(logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))
		close(done)
	}()
	return done
}
