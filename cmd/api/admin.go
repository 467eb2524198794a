package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clinica/clinic-api/internal/domain"
	"github.com/clinica/clinic-api/internal/persistence"
	"github.com/clinica/clinic-api/internal/repository"
	"github.com/clinica/clinic-api/internal/service"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = cfg.Postgres.MigrationsDir
			}

			pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, cfg.App.Name, logger)
			if err != nil {
				return err
			}
			defer pg.Close()

			applied, err := persistence.RunMigrations(cmd.Context(), pg.Pool, dir, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", applied)
			return nil
		},
	}
	cmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	return cmd
}

// createUserCmd bootstraps credentials without a token, which is how the
// first admin gets created.
func createUserCmd() *cobra.Command {
	var (
		username  string
		password  string
		role      string
		name      string
		patientID int
		doctorID  int
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a login user directly in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, cfg.App.Name, logger)
			if err != nil {
				return err
			}
			defer pg.Close()

			users := service.NewUserService(service.UserDependencies{
				UserRepo:   repository.NewUserRepository(pg.Pool),
				Transactor: repository.NewTransactor(pg.Pool),
				BcryptCost: cfg.Auth.BcryptCost,
			})

			in := service.UserCreateInput{
				Username: username,
				Password: password,
				Role:     domain.Role(role),
			}
			if cmd.Flags().Changed("nombre") {
				in.Name = &name
			}
			if cmd.Flags().Changed("id-paciente") {
				in.PatientID = &patientID
			}
			if cmd.Flags().Changed("id-doctor") {
				in.DoctorID = &doctorID
			}

			user, err := users.Create(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			logger.Info("user created", zap.Int("id_usuario", user.ID), zap.String("rol", string(user.Role)))
			fmt.Fprintf(cmd.OutOrStdout(), "usuario %q creado con id %d\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Login name")
	cmd.Flags().StringVar(&password, "password", "", "Plain-text password, stored as a bcrypt hash")
	cmd.Flags().StringVar(&role, "rol", string(domain.RoleAdmin), "Role: admin, doctor, paciente or staff")
	cmd.Flags().StringVar(&name, "nombre", "", "Display name")
	cmd.Flags().IntVar(&patientID, "id-paciente", 0, "Linked patient id (rol paciente)")
	cmd.Flags().IntVar(&doctorID, "id-doctor", 0, "Linked doctor id (rol doctor)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
