// Command libraryctl runs maintenance tasks against the library database.
package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"Gin_postgres_redis_library_api/auth"
	"Gin_postgres_redis_library_api/config"
	"Gin_postgres_redis_library_api/db"
	"Gin_postgres_redis_library_api/events"
	"Gin_postgres_redis_library_api/models"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "libraryctl",
		Short:         "Library API administration",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(*cobra.Command, []string) {
			config.LoadEnv()
		},
	}
	root.AddCommand(newMigrateCmd(connect), newCreateUserCmd(connect, readPassword))
	return root
}

func connect() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return db.ConnectDB(cfg.DatabaseURL)
}

func newMigrateCmd(open func() (*gorm.DB, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := open()
			if err != nil {
				return err
			}
			if err := db.Migrate(conn); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newCreateUserCmd(open func() (*gorm.DB, error), prompt func(string) (string, error)) *cobra.Command {
	var username, email string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an API account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(strings.TrimSpace(username)) < 3 {
				return fmt.Errorf("username must be at least 3 characters")
			}
			if !strings.Contains(email, "@") {
				return fmt.Errorf("email is invalid")
			}
			password, err := prompt("Password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			if len(password) < auth.MinPasswordLen {
				return fmt.Errorf("password must be at least %d characters", auth.MinPasswordLen)
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			conn, err := open()
			if err != nil {
				return err
			}
			repo := db.NewRepo(conn, zerolog.Nop(), events.Nop{})
			u := &models.User{Username: username, Email: email, Password: hash}
			if err := repo.CreateUser(cmd.Context(), u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// readPassword reads a password from the terminal without echo.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(b)), nil
}
