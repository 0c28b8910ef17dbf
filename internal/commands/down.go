package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/boardinghouse/migration"
)

func DownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Revert the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")

			db, _, err := getDB(debug)
			if err != nil {
				return err
			}
			defer closeDB(db)

			reverted, err := migration.NewMigrator(db).Down()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Successfully reverted migration: %s\n", reverted.Name)
			return nil
		},
	}

	cmd.Flags().Bool("debug", false, "Log SQL statements")

	return cmd
}
