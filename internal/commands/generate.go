package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/boardinghouse/internal/billing"
	"github.com/beesaferoot/boardinghouse/internal/models"
)

func GenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "generate rent|water|wifi",
		Short:     "Generate monthly recurring bills",
		Long:      "Creates the rent, fixed water or fixed WiFi bills of one month for every eligible tenant. Tenants already billed for the month are skipped unless --force is given.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"rent", "water", "wifi"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := billing.ParseKind(args[0])
			if err != nil {
				return err
			}
			month, _ := cmd.Flags().GetInt("month")
			year, _ := cmd.Flags().GetInt("year")
			force, _ := cmd.Flags().GetBool("force")

			req := billing.GenerateRequest{Kind: kind, Month: month, Year: year, Force: force}
			if cmd.Flags().Changed("due_days") {
				dueDays, _ := cmd.Flags().GetInt("due_days")
				req.DueDays = &dueDays
			}

			s, _, closeFn, err := getStore()
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := billing.NewGenerator(s, nil).Generate(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			label := strings.ToLower(string(kind))
			if kind == models.BillTypeWiFi {
				label = "WiFi"
			}
			if res.Eligible == 0 {
				fmt.Fprintf(out, "No active tenants found eligible for %s billing for %s.\n", label, res.Period())
				return nil
			}
			for _, b := range res.Created {
				fmt.Fprintf(out, "Created %s bill for %s (ID: %d) for %s. Amount: %s\n", label, b.TenantName, b.BillID, res.Period(), b.Amount.StringFixed(2))
			}
			for _, sk := range res.Skipped {
				fmt.Fprintf(out, "Skipping %s bill for %s for %s: %s\n", label, sk.TenantName, res.Period(), sk.Reason)
			}
			for _, f := range res.Failed {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to create %s bill for %s: %v\n", label, f.TenantName, f.Err)
			}

			if n := len(res.Created); n > 0 {
				fmt.Fprintf(out, "\nSuccessfully created %d %s bill(s).\n", n, label)
			}
			if n := len(res.Skipped); n > 0 {
				fmt.Fprintf(out, "Skipped %d %s bill(s) as they already existed.\n", n, label)
			}
			if len(res.Created) == 0 && len(res.Skipped) == 0 && len(res.Failed) == 0 {
				fmt.Fprintf(out, "No new %s bills were created.\n", label)
			}
			return res.Err()
		},
	}

	cmd.Flags().Int("month", 0, "Month (1-12) to bill. Defaults to the current month")
	cmd.Flags().Int("year", 0, "Year (YYYY) to bill. Defaults to the current year")
	cmd.Flags().Int("due_days", 0, "Rent: day of the month the bill is due (default 5). Water/WiFi: days after the 1st (default 15)")
	cmd.Flags().Bool("force", false, "Create a bill even if one already exists for the period")

	return cmd
}
