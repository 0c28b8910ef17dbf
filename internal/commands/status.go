package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/boardinghouse/migration"
)

func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show status of all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			out := cmd.OutOrStdout()

			db, _, err := getDB(debug)
			if err != nil {
				return err
			}
			defer closeDB(db)

			statuses, err := migration.NewMigrator(db).Status()
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%-16s  %-30s  %-8s\n", "Version", "Name", "Status")
			for _, s := range statuses {
				status := "Pending"
				if s.Applied {
					status = "Applied"
				}
				fmt.Fprintf(out, "%-16s  %-30s  %-8s\n", s.Migration.Version, s.Migration.Name, status)
			}

			return nil
		},
	}

	cmd.Flags().Bool("debug", false, "Log SQL statements")

	return cmd
}
