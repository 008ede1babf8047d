package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/service"
)

var (
	adminEmail    string
	adminName     string
	adminPassword string
)

// createAdminCmd creates the admin account or resets it
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create or reset the admin account",
	Long: `Create the admin account, or reset the name, password and role of an
existing account with the same email.

Examples:
  portfolioctl create-admin --email me@example.com --name "Sakif" --password 's3cret-pass'
  portfolioctl create-admin --dsn postgres://... --email me@example.com --password ...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreateAdmin(cmd)
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email (required)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "Admin", "Display name")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Password, 8 to 72 bytes (required)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command) error {
	ctx := cmd.Context()

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	// No token service: the CLI never signs anyone in.
	svc := service.NewAuthService(db.Users(), nil, auth.NewPasswordService(), nil, logger(cmd))
	user, err := svc.CreateAdmin(ctx, adminEmail, adminName, adminPassword)
	if err != nil {
		return fmt.Errorf("create-admin: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "admin %s saved (id %s)\n", user.Email, user.ID)
	return nil
}
