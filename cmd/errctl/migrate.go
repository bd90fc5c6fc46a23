package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"access-error-service/internal/domain"
	"access-error-service/internal/repository"
	"access-error-service/internal/usecase"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  "Manage the schema of the access error record database",
	}
	cmd.AddCommand(migrateUpCmd())
	cmd.AddCommand(migrateStatusCmd())
	return cmd
}

// newMigrationService は MIGRATIONS_DIR/{DB_DRIVER} のSQLファイルを対象にMigrationServiceを生成する。
func newMigrationService(cmd *cobra.Command) (*usecase.MigrationService, error) {
	cfg, db, err := openDB()
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(cfg.MigrationsPath())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve migrations directory: %w", err)
	}

	repo := repository.NewMigrationRepository(db)
	if err := repo.EnsureTable(cmd.Context()); err != nil {
		return nil, fmt.Errorf("failed to prepare schema_migrations: %w", err)
	}
	return usecase.NewMigrationService(repo, db, os.DirFS(absPath)), nil
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newMigrationService(cmd)
			if err != nil {
				return err
			}

			count, err := service.ApplyMigrations(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			if count == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending migrations.")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			}
			return nil
		},
	}
}

func migrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newMigrationService(cmd)
			if err != nil {
				return err
			}

			migrations, err := service.GetMigrationStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
			for _, m := range migrations {
				appliedAt := "-"
				if m.Status == domain.MigrationStatusApplied && m.AppliedAt != nil {
					appliedAt = m.AppliedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Version, m.Name, m.Status, appliedAt)
			}
			return w.Flush()
		},
	}
}
