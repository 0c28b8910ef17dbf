package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/boardinghouse/migration"
)

func UpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			debug, _ := cmd.Flags().GetBool("debug")
			out := cmd.OutOrStdout()

			db, _, err := getDB(debug)
			if err != nil {
				return err
			}
			defer closeDB(db)

			migrator := migration.NewMigrator(db)
			pending, err := migrator.Pending()
			if err != nil {
				return err
			}

			if len(pending) == 0 {
				fmt.Fprintln(out, "No pending migrations.")
				return nil
			}

			if dryRun {
				fmt.Fprintln(out, "Pending migrations:")
				for _, m := range pending {
					fmt.Fprintf(out, "- %s (%s)\n", m.Name, m.Version)
				}
				return nil
			}

			applied, err := migrator.Up()
			for _, m := range applied {
				fmt.Fprintf(out, "Successfully applied migration: %s (%s)\n", m.Name, m.Version)
			}
			return err
		},
	}

	cmd.Flags().Bool("dry-run", false, "Show pending migrations without executing them")
	cmd.Flags().Bool("debug", false, "Log SQL statements")

	return cmd
}
