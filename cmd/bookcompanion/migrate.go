package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/bookcompanion/internal/infra/sqlite"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := sqlite.NewDB(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			pending, err := sqlite.PendingMigrations(db)
			if err != nil {
				return err
			}
			if status, _ := cmd.Flags().GetBool("status"); status {
				current, err := sqlite.MigrationVersion(db)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "schema version %d, %d pending\n", current, len(pending)) //nolint:errcheck
				for _, name := range pending {
					fmt.Fprintf(out, "  %s\n", name) //nolint:errcheck
				}
				return nil
			}

			if err := sqlite.MigrateUp(db); err != nil {
				return err
			}
			current, err := sqlite.MigrationVersion(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "applied %d migrations, schema version %d\n", len(pending), current) //nolint:errcheck
			return nil
		},
	}
	cmd.Flags().Bool("status", false, "list pending migrations without applying them")
	return cmd
}
