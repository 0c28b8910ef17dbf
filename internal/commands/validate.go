package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/boardinghouse/migration/parser"
)

func ValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the database schema matches the models",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := getDB(false)
			if err != nil {
				return err
			}
			defer closeDB(db)

			p, err := parser.NewModelParser(db)
			if err != nil {
				return fmt.Errorf("validation failed: %v", err)
			}
			problems, err := p.Drift()
			if err != nil {
				return fmt.Errorf("validation failed: %v", err)
			}
			if len(problems) > 0 {
				for _, problem := range problems {
					fmt.Fprintln(cmd.ErrOrStderr(), problem)
				}
				return fmt.Errorf("validation failed: %d schema problem(s), run 'migrate up'", len(problems))
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Schema matches all models")
			return nil
		},
	}
}

// MigrateCmd groups the schema migration commands.
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	cmd.AddCommand(UpCmd(), DownCmd(), StatusCmd(), HistoryCmd(), ValidateCmd())
	return cmd
}
