package commands

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/boardinghouse/internal/billing"
	"github.com/beesaferoot/boardinghouse/internal/reminder"
	"github.com/beesaferoot/boardinghouse/internal/scheduler"
	"github.com/beesaferoot/boardinghouse/internal/server"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the billing scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			noScheduler, _ := cmd.Flags().GetBool("no_scheduler")

			s, cfg, closeFn, err := getStore()
			if err != nil {
				return err
			}
			defer closeFn()

			if cmd.Flags().Changed("addr") {
				cfg.HTTPAddr, _ = cmd.Flags().GetString("addr")
			}

			srv, err := server.New(server.Deps{Store: s, JWTSecret: cfg.JWTSecret})
			if err != nil {
				return err
			}

			var sched *scheduler.Scheduler
			if !noScheduler {
				sched, err = scheduler.New(scheduler.Config{
					RentSchedule:     cfg.RentSchedule,
					WaterSchedule:    cfg.WaterSchedule,
					WiFiSchedule:     cfg.WiFiSchedule,
					ReminderSchedule: cfg.ReminderSchedule,
					UpcomingDays:     cfg.ReminderUpcomingDays,
				}, billing.NewGenerator(s, nil), reminder.NewDispatcher(s, newMailer(cfg), nil))
				if err != nil {
					return err
				}
				sched.Start()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Listen(cfg.HTTPAddr)
			}()

			select {
			case err = <-errCh:
			case <-ctx.Done():
				log.Printf("[HTTP] shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				err = srv.Shutdown(shutdownCtx)
				cancel()
			}

			if sched != nil {
				<-sched.Stop().Done()
			}
			return err
		},
	}

	cmd.Flags().String("addr", ":8080", "Listen address, overrides HTTP_ADDR")
	cmd.Flags().Bool("no_scheduler", false, "Serve the API without running scheduled jobs")

	return cmd
}
