// Package commands implements portfolioctl, the operator CLI for the
// portfolio database.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sakif/portfolio/internal/repository/sqlstore"
)

var (
	// Global flags
	dbDriver string
	dbDSN    string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "portfolioctl",
	Short: "Administer the portfolio database",
	Long: `portfolioctl manages the portfolio database without starting the server.

The database defaults to DB_DRIVER and DB_DSN from the environment (or .env),
the same variables the server reads.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		if dbDriver == "" {
			dbDriver = os.Getenv("DB_DRIVER")
		}
		if dbDSN == "" {
			dbDSN = os.Getenv("DB_DSN")
		}
		if dbDSN == "" {
			dbDSN = "data/portfolio.db"
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbDriver, "driver", "", "Database driver: sqlite or postgres (default $DB_DRIVER, then sqlite)")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "dsn", "", "Database DSN or SQLite path (default $DB_DSN)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(migrateCmd)
}

func logger(cmd *cobra.Command) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// openDB opens the configured database, which also applies migrations.
func openDB(ctx context.Context) (*sqlstore.DB, error) {
	dialect, err := sqlstore.ParseDialect(dbDriver)
	if err != nil {
		return nil, err
	}
	if dialect == sqlstore.SQLite {
		if err := sqlstore.EnsureDir(dbDSN); err != nil {
			return nil, err
		}
	}
	return sqlstore.Open(ctx, dialect, dbDSN)
}
