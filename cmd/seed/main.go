package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/spf13/cobra"

	"grievance/internal/adapter/repository"
	"grievance/internal/domain/entity"
	domainrepo "grievance/internal/domain/repository"
	"grievance/internal/domain/service"
	"grievance/internal/infrastructure/database"
	"grievance/internal/infrastructure/firebase"
	"grievance/internal/infrastructure/security"
	"grievance/internal/usecase"
	"grievance/pkg/config"
	"grievance/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "seed",
		Short:        "Create or update privileged accounts",
		SilenceUsage: true,
	}
	root.AddCommand(newAdminCmd(), newStaffCmd())
	return root
}

func newAdminCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Ensure the administrator account exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if email == "" {
				email = cfg.SeedAdminEmail
			}
			if password == "" {
				password = cfg.SeedAdminPassword
			}
			if name == "" {
				name = cfg.SeedAdminName
			}
			if email == "" {
				return errors.New("admin email is required (--email or SEED_ADMIN_EMAIL)")
			}

			return ensure(cmd.Context(), cfg, usecase.SeedUserInput{
				Name:     name,
				Email:    email,
				Password: password,
				Role:     entity.RoleAdmin,
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password for a new account")
	return cmd
}

func newStaffCmd() *cobra.Command {
	var name, email, password, department string
	var head bool

	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Ensure a department staff or head account exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			dept := entity.DepartmentID(department)
			if _, ok := service.MustDefaultRegistry().Get(dept); !ok {
				return fmt.Errorf("unknown department %q", department)
			}

			role := entity.RoleDepartmentStaff
			if head {
				role = entity.RoleDepartmentHead
			}

			return ensure(cmd.Context(), cfg, usecase.SeedUserInput{
				Name:       name,
				Email:      email,
				Password:   password,
				Role:       role,
				Department: dept,
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password for a new account")
	cmd.Flags().StringVar(&department, "department", "", "department id")
	cmd.Flags().BoolVar(&head, "head", false, "grant the department head role")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("department")
	return cmd
}

func ensure(ctx context.Context, cfg *config.Config, input usecase.SeedUserInput) error {
	logger.Setup(cfg.Environment)
	defer logger.Sync()

	users, closeFn, err := openUsers(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	jwtService := security.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	authUseCase := usecase.NewAuthUseCase(users, security.NewBcryptHasher(0), jwtService)

	user, created, err := authUseCase.EnsureUser(ctx, input)
	if err != nil {
		return err
	}

	if created {
		logger.Info("Created %s account %s (%s)", user.Role, user.Email, user.ID)
	} else {
		logger.Info("Updated %s account %s (%s)", user.Role, user.Email, user.ID)
	}
	return nil
}

func openUsers(ctx context.Context, cfg *config.Config) (domainrepo.UserRepository, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreFirestore:
		credentials := firebase.ClientOptions(cfg.FirebaseServiceAccountJSON, cfg.FirebaseServiceAccountPath)
		client, err := firestore.NewClient(ctx, cfg.FirebaseProject, credentials...)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewFirestoreUserRepository(client), func() { client.Close() }, nil

	case config.StoreMongo:
		db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureUserIndexes(ctx, db); err != nil {
			return nil, nil, err
		}
		return repository.NewMongoUserRepository(db), func() { _ = db.Client().Disconnect(context.Background()) }, nil
	}

	return nil, nil, fmt.Errorf("store backend %q cannot be seeded", cfg.StoreBackend)
}
