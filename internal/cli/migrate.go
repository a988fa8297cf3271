package cli

import (
	"fmt"
	"io"

	"pulse/internal/bootstrap"
	"pulse/internal/database"

	"github.com/spf13/cobra"
)

// MigrationStatus is the machine-readable form of `migrate status`.
type MigrationStatus struct {
	Mode        string   `json:"mode"`
	Environment string   `json:"environment"`
	Applied     []int    `json:"applied"`
	Pending     []string `json:"pending"`
}

// NewMigrateCommand creates the migrate command and its subcommands.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(newMigrateUpCommand(opts))
	cmd.AddCommand(newMigrateDownCommand(opts))
	cmd.AddCommand(newMigrateStatusCommand(opts))
	cmd.AddCommand(newMigrateAutoCommand(opts))
	return cmd
}

func newMigrateUpCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending SQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := opts.open(cmd.Context(), bootstrap.Options{SkipCache: true})
			if err != nil {
				return err
			}
			if err := database.RunMigrations(cmd.Context(), db); err != nil {
				return fmt.Errorf("sql migrations failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sql migrations applied")
			return nil
		},
	}
}

func newMigrateDownCommand(opts *RootOptions) *cobra.Command {
	var version int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back one migration (the latest unless --version is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := opts.open(cmd.Context(), bootstrap.Options{SkipCache: true})
			if err != nil {
				return err
			}
			if version > 0 {
				if err := database.RollbackMigration(cmd.Context(), db, version); err != nil {
					return fmt.Errorf("rollback failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rolled back migration %d\n", version)
				return nil
			}
			m, err := database.RollbackLatest(cmd.Context(), db)
			if err != nil {
				return fmt.Errorf("rollback failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back migration %s\n", m)
			return nil
		},
	}
	cmd.Flags().IntVar(&version, "version", 0, "migration version to roll back")
	return cmd
}

func newMigrateStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := opts.open(cmd.Context(), bootstrap.Options{SkipCache: true})
			if err != nil {
				return err
			}
			status, err := database.GetSchemaStatus(cmd.Context(), db, cfg)
			if err != nil {
				return fmt.Errorf("schema status failed: %w", err)
			}

			out := MigrationStatus{
				Mode:        status.Mode,
				Environment: status.Environment,
				Applied:     status.AppliedVersions,
				Pending:     make([]string, 0, len(status.PendingMigrations)),
			}
			for _, m := range status.PendingMigrations {
				out.Pending = append(out.Pending, m.String())
			}
			return opts.emit(cmd.OutOrStdout(), out, func(w io.Writer) {
				fmt.Fprintf(w, "mode=%s env=%s applied=%d pending=%d\n", out.Mode, out.Environment, len(out.Applied), len(out.Pending))
				for _, p := range out.Pending {
					fmt.Fprintf(w, "pending: %s\n", p)
				}
			})
		},
	}
}

func newMigrateAutoCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "auto",
		Short: "Create or update tables from the models (never in production)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := opts.open(cmd.Context(), bootstrap.Options{SkipCache: true})
			if err != nil {
				return err
			}
			cfg.DBSchemaMode = database.SchemaModeAuto
			if err := database.ApplySchema(cmd.Context(), db, cfg); err != nil {
				return fmt.Errorf("auto schema apply failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "automigrations applied")
			return nil
		},
	}
}
