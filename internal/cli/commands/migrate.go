package commands

import (
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations to the database",
		Long: `Apply goose-style SQL migrations from the migrations directory.

Migration files are named NNNNN_description.sql and contain
"-- +goose Up" and "-- +goose Down" sections. Migrations run against an
embedded database only.`,
		Example: `  leapsqlite migrate up
  leapsqlite migrate status --migrations-dir db/migrations`,
	}

	cmd.AddCommand(newMigrateUpCommand())
	cmd.AddCommand(newMigrateDownCommand())
	cmd.AddCommand(newMigrateStatusCommand())
	return cmd
}

func newMigrateUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrations(cmd, func(db *sql.DB, dir string) error {
				if err := goose.Up(db, dir); err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}
				return nil
			})
		},
	}
}

func newMigrateDownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrations(cmd, func(db *sql.DB, dir string) error {
				if err := goose.Down(db, dir); err != nil {
					return fmt.Errorf("failed to roll back migration: %w", err)
				}
				return nil
			})
		},
	}
}

func newMigrateStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which migrations have been applied",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrations(cmd, func(db *sql.DB, dir string) error {
				if err := goose.Status(db, dir); err != nil {
					return fmt.Errorf("failed to read migration status: %w", err)
				}
				return nil
			})
		},
	}
}

// dbProvider is implemented by clients backed by a local *sql.DB.
type dbProvider interface {
	DB() *sql.DB
}

// withMigrations connects, configures goose and calls fn with the
// database handle and migrations directory.
func withMigrations(cmd *cobra.Command, fn func(db *sql.DB, dir string) error) error {
	cmdCtx, cleanup := NewCommandContext(cmd)
	defer cleanup()

	if cmdCtx.Cfg.Connection.IsRemote() {
		return errors.New("migrations need an embedded database; the configured driver is remote")
	}
	if err := cmdCtx.Cfg.ValidateMigrationsDir(); err != nil {
		return err
	}

	client, err := cmdCtx.Adapter.Connect(cmd.Context())
	if err != nil {
		return err
	}
	p, ok := client.(dbProvider)
	if !ok {
		return errors.New("the configured client does not expose a database handle")
	}

	goose.SetLogger(gooseLogger{w: cmd.OutOrStdout()})
	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return fn(p.DB(), cmdCtx.Cfg.MigrationsDir)
}

// gooseLogger sends goose progress to the command output.
type gooseLogger struct {
	w io.Writer
}

func (l gooseLogger) Printf(format string, v ...any) {
	_, _ = fmt.Fprintf(l.w, format, v...)
	if len(format) == 0 || format[len(format)-1] != '\n' {
		_, _ = fmt.Fprintln(l.w)
	}
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.Printf(format, v...)
}
