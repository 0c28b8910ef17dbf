package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/boardinghouse/internal/billing"
)

func ElectricityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "electricity <tenant_id> <current_reading_value> <unit_price>",
		Short: "Record a meter reading and bill its consumption",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := parseID("tenant_id", args[0])
			if err != nil {
				return err
			}
			current, err := parseDecimal("current_reading_value", args[1])
			if err != nil {
				return err
			}
			unitPrice, err := parseDecimal("unit_price", args[2])
			if err != nil {
				return err
			}
			dateFlag, _ := cmd.Flags().GetString("reading_date")
			readingDate, err := parseOptionalDate("reading_date", dateFlag)
			if err != nil {
				return err
			}
			notes, _ := cmd.Flags().GetString("notes")

			s, _, closeFn, err := getStore()
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := billing.NewMeterBilling(s, nil).RecordReadingAndBill(cmd.Context(), billing.ReadingInput{
				TenantID:       tenantID,
				CurrentReading: current,
				UnitPrice:      unitPrice,
				ReadingDate:    readingDate,
				Notes:          notes,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, w := range res.Warnings {
				fmt.Fprintln(out, w)
			}
			fmt.Fprintf(out, "Successfully created electricity reading and bill for %s (Tenant ID: %d).\n", res.TenantName, tenantID)
			fmt.Fprintf(out, "Reading ID: %d, Bill ID: %d, Amount: %s\n", res.ReadingID, res.BillID, res.Amount.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().String("reading_date", "", "Date of the reading (YYYY-MM-DD). Defaults to today")
	cmd.Flags().String("notes", "", "Notes stored with the reading")

	return cmd
}
