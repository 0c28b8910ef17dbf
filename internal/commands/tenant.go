package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/beesaferoot/boardinghouse/internal/models"
)

func TenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}
	cmd.AddCommand(tenantAddCmd())
	return cmd
}

func optionalCharge(cmd *cobra.Command, flag string) (decimal.NullDecimal, error) {
	raw, _ := cmd.Flags().GetString(flag)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := parseDecimal(flag, raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func tenantAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <full_name>",
		Short: "Add a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startFlag, _ := cmd.Flags().GetString("lease_start")
			endFlag, _ := cmd.Flags().GetString("lease_end")
			roomID, _ := cmd.Flags().GetUint("room")
			email, _ := cmd.Flags().GetString("email")
			phone, _ := cmd.Flags().GetString("phone")
			inactive, _ := cmd.Flags().GetBool("inactive")

			start, err := parseOptionalDate("lease_start", startFlag)
			if err != nil {
				return err
			}
			end, err := parseOptionalDate("lease_end", endFlag)
			if err != nil {
				return err
			}

			tenant := &models.Tenant{
				FullName:       args[0],
				Email:          email,
				PhoneNumber:    phone,
				LeaseStartDate: models.NewDate(start),
				IsActive:       !inactive,
			}
			if !end.IsZero() {
				tenant.LeaseEndDate = models.DatePtr(end)
			}
			if roomID != 0 {
				tenant.RoomID = &roomID
			}
			if tenant.FixedWaterCharge, err = optionalCharge(cmd, "water"); err != nil {
				return err
			}
			if tenant.FixedWiFiCharge, err = optionalCharge(cmd, "wifi"); err != nil {
				return err
			}

			s, _, closeFn, err := getStore()
			if err != nil {
				return err
			}
			defer closeFn()

			if err := s.CreateTenant(cmd.Context(), tenant); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created tenant %s (ID: %d)\n", tenant.FullName, tenant.ID)
			return nil
		},
	}

	cmd.Flags().String("lease_start", "", "Lease start date (YYYY-MM-DD)")
	cmd.Flags().String("lease_end", "", "Lease end date (YYYY-MM-DD)")
	cmd.Flags().Uint("room", 0, "ID of the assigned room")
	cmd.Flags().String("email", "", "Email address used for reminders")
	cmd.Flags().String("phone", "", "Phone number")
	cmd.Flags().String("water", "", "Fixed monthly water charge")
	cmd.Flags().String("wifi", "", "Fixed monthly WiFi charge")
	cmd.Flags().Bool("inactive", false, "Create the tenant as inactive")
	_ = cmd.MarkFlagRequired("lease_start")

	return cmd
}
