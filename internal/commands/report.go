package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/boardinghouse/internal/report"
)

func ReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print ledger reports",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "financial",
		Short: "Unpaid total and payments received this month",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, closeFn, err := getStore()
			if err != nil {
				return err
			}
			defer closeFn()

			sum, err := report.NewService(s, nil).FinancialSummary(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Financial summary for %s\n", sum.CurrentMonthName)
			fmt.Fprintf(out, "%-24s %12s\n", "Total unpaid (all time)", sum.TotalUnpaidAllTime.StringFixed(2))
			fmt.Fprintf(out, "%-24s %12s\n", "Paid this month", sum.TotalPaidThisMonth.StringFixed(2))
			return nil
		},
	}, &cobra.Command{
		Use:   "occupancy",
		Short: "Room occupancy",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, closeFn, err := getStore()
			if err != nil {
				return err
			}
			defer closeFn()

			occ, err := report.NewService(s, nil).Occupancy(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-16s %6d\n", "Total rooms", occ.TotalRooms)
			fmt.Fprintf(out, "%-16s %6d\n", "Occupied", occ.OccupiedRooms)
			fmt.Fprintf(out, "%-16s %6d\n", "Vacant", occ.VacantRooms)
			fmt.Fprintf(out, "%-16s %6s\n", "Occupancy rate", occ.OccupancyRate)
			return nil
		},
	})
	return cmd
}
