package main

import (
	"errors"
	"fmt"

	"cookstove_tracker/internal/models"
	"cookstove_tracker/internal/repository"
	"cookstove_tracker/internal/service"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Long: `Create a user account directly in the database.
Public sign-up only ever creates role "user"; use --admin to bootstrap the
first administrator.`,
	Args: cobra.NoArgs,
	RunE: runUserCreate,
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)

	userCreateCmd.Flags().String("name", "", "display name")
	userCreateCmd.Flags().String("email", "", "login email")
	userCreateCmd.Flags().String("password", "", "login password")
	userCreateCmd.Flags().Bool("admin", false, "grant the admin role")
	_ = userCreateCmd.MarkFlagRequired("name")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
}

func runUserCreate(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	admin, _ := cmd.Flags().GetBool("admin")

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := openDB(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	role := models.RoleUser
	if admin {
		role = models.RoleAdmin
	}

	auth := service.NewAuthService(repository.NewUserRepository(db), service.AuthConfig{
		SigningKey: cfg.Auth.SigningKey,
		TokenTTL:   cfg.Auth.TokenTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	id, err := auth.CreateUser(cmd.Context(), name, email, password, role)
	if err != nil {
		var svcErr *service.Error
		if errors.As(err, &svcErr) {
			return fmt.Errorf("create user: %s", svcErr.Msg)
		}
		return fmt.Errorf("create user: %w", err)
	}

	log.Infow("user created", "id", id, "email", email, "role", role)
	fmt.Fprintf(cmd.OutOrStdout(), "created %s %d (%s)\n", role, id, email)
	return nil
}
