package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/boardinghouse/internal/config"
	"github.com/beesaferoot/boardinghouse/internal/reminder"
)

func newMailer(cfg *config.Config) reminder.Mailer {
	if cfg.SMTPHost == "" {
		return reminder.LogMailer{}
	}
	return reminder.NewSMTPMailer(reminder.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.FromEmail,
	})
}

func RemindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Email reminders for upcoming and overdue bills",
		RunE: func(cmd *cobra.Command, args []string) error {
			testEmail, _ := cmd.Flags().GetString("test_email")
			dryRun, _ := cmd.Flags().GetBool("dry_run")
			skipToday, _ := cmd.Flags().GetBool("skip_reminded_today")

			s, cfg, closeFn, err := getStore()
			if err != nil {
				return err
			}
			defer closeFn()

			upcomingDays := cfg.ReminderUpcomingDays
			if cmd.Flags().Changed("upcoming_days") {
				upcomingDays, _ = cmd.Flags().GetInt("upcoming_days")
			}

			d := reminder.NewDispatcher(s, newMailer(cfg), nil)
			d.SetOutput(cmd.OutOrStdout())
			sum, err := d.Dispatch(cmd.Context(), reminder.Options{
				UpcomingDays:      upcomingDays,
				TestRecipient:     testEmail,
				DryRun:            dryRun,
				SkipRemindedToday: skipToday,
			})
			if err != nil {
				return err
			}
			for _, f := range sum.Failures {
				fmt.Fprintln(cmd.ErrOrStderr(), f)
			}
			return nil
		},
	}

	cmd.Flags().Int("upcoming_days", reminder.DefaultUpcomingDays, "Number of days in advance to send upcoming due reminders")
	cmd.Flags().String("test_email", "", "Send all reminders to this address instead of the tenants")
	cmd.Flags().Bool("dry_run", false, "Render reminders without sending them")
	cmd.Flags().Bool("skip_reminded_today", false, "Skip bills that were already reminded today")

	return cmd
}
