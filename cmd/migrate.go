package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/gas-utility-service/internal/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE:  runMigrate(func(cmd *cobra.Command, m *persistence.Migrator) error { return m.Up(cmd.Context()) }),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE:  runMigrate(func(cmd *cobra.Command, m *persistence.Migrator) error { return m.Down(cmd.Context()) }),
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List migrations and whether each is applied",
	RunE: runMigrate(func(cmd *cobra.Command, m *persistence.Migrator) error {
		statuses, err := m.Status(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, st := range statuses {
			state := "pending"
			if st.Applied {
				state = "applied"
			}
			fmt.Fprintf(out, "%05d  %-8s %s\n", st.Version, state, st.Path)
		}
		return nil
	}),
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func runMigrate(action func(*cobra.Command, *persistence.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		pg, err := openPostgres(cmd.Context(), cfg, logger, false)
		if err != nil {
			return err
		}
		defer pg.Close()

		migrator, err := persistence.NewMigrator(pg.PoolHandle(), logger)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		defer migrator.Close() //nolint:errcheck

		if err := action(cmd, migrator); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		return nil
	}
}
