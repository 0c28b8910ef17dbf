package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/boardinghouse/internal/billing"
)

func PaymentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Record or remove payments",
	}
	cmd.AddCommand(paymentAddCmd(), paymentDeleteCmd())
	return cmd
}

func paymentStatus(paid bool) string {
	if paid {
		return "paid"
	}
	return "unpaid"
}

func paymentAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <bill_id> <amount>",
		Short: "Record a payment against a bill",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			billID, err := parseID("bill_id", args[0])
			if err != nil {
				return err
			}
			amount, err := parseDecimal("amount", args[1])
			if err != nil {
				return err
			}
			dateFlag, _ := cmd.Flags().GetString("date")
			date, err := parseOptionalDate("date", dateFlag)
			if err != nil {
				return err
			}
			method, _ := cmd.Flags().GetString("method")
			notes, _ := cmd.Flags().GetString("notes")

			s, _, closeFn, err := getStore()
			if err != nil {
				return err
			}
			defer closeFn()

			rcpt, err := billing.NewPaymentService(s, nil).Record(cmd.Context(), billing.PaymentInput{
				BillID: billID,
				Amount: amount,
				Date:   date,
				Method: method,
				Notes:  notes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded payment %d of %s for bill %d. Paid %s of %s, bill is %s.\n",
				rcpt.Payment.ID, rcpt.Payment.AmountPaid.StringFixed(2), rcpt.Bill.ID,
				rcpt.Paid.StringFixed(2), rcpt.Bill.Amount.StringFixed(2), paymentStatus(rcpt.Bill.IsPaid))
			return nil
		},
	}

	cmd.Flags().String("date", "", "Payment date (YYYY-MM-DD). Defaults to today")
	cmd.Flags().String("method", "", "Payment method, e.g. cash or transfer")
	cmd.Flags().String("notes", "", "Notes stored with the payment")

	return cmd
}

func paymentDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <payment_id>",
		Short: "Delete a payment and recompute its bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("payment_id", args[0])
			if err != nil {
				return err
			}

			s, _, closeFn, err := getStore()
			if err != nil {
				return err
			}
			defer closeFn()

			bill, err := billing.NewPaymentService(s, nil).Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted payment %d. Bill %d is %s.\n", id, bill.ID, paymentStatus(bill.IsPaid))
			return nil
		},
	}
}
