package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/beesaferoot/boardinghouse/internal/commands"
	"github.com/beesaferoot/boardinghouse/internal/models"
	"github.com/beesaferoot/boardinghouse/migration"
)

func init() {
	migration.GlobalModelRegistry = models.Registry{}
}

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "boardinghouse",
		Short:         "Boarding house billing ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		commands.MigrateCmd(),
		commands.RoomCmd(),
		commands.TenantCmd(),
		commands.GenerateCmd(),
		commands.ElectricityCmd(),
		commands.PaymentCmd(),
		commands.RemindCmd(),
		commands.ReportCmd(),
		commands.ServeCmd(),
		commands.TokenCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
