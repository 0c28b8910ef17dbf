// Package scheduler runs the monthly bill generators and the daily reminder job in-process.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/beesaferoot/boardinghouse/internal/billing"
	"github.com/beesaferoot/boardinghouse/internal/models"
	"github.com/beesaferoot/boardinghouse/internal/reminder"
)

type Config struct {
	RentSchedule     string
	WaterSchedule    string
	WiFiSchedule     string
	ReminderSchedule string
	UpcomingDays     int
	// JobTimeout bounds a single job run.
	JobTimeout time.Duration
}

type Scheduler struct {
	cron       *cron.Cron
	cfg        Config
	generator  *billing.Generator
	dispatcher *reminder.Dispatcher
}

// New registers every job. An empty schedule disables that job.
func New(cfg Config, generator *billing.Generator, dispatcher *reminder.Dispatcher) (*Scheduler, error) {
	if cfg.JobTimeout == 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	s := &Scheduler{
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		cfg:        cfg,
		generator:  generator,
		dispatcher: dispatcher,
	}

	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"rent", cfg.RentSchedule, s.generate(models.BillTypeRent)},
		{"water", cfg.WaterSchedule, s.generate(models.BillTypeWater)},
		{"wifi", cfg.WiFiSchedule, s.generate(models.BillTypeWiFi)},
		{"reminders", cfg.ReminderSchedule, s.remind},
	}
	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		if _, err := s.cron.AddFunc(job.spec, s.wrap(job.name, job.run)); err != nil {
			return nil, fmt.Errorf("invalid %s schedule %q: %w", job.name, job.spec, err)
		}
		log.Printf("[SCHEDULER] %s scheduled at %q", job.name, job.spec)
	}
	return s, nil
}

func (s *Scheduler) wrap(name string, run func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
		defer cancel()
		start := time.Now()
		if err := run(ctx); err != nil {
			log.Printf("[SCHEDULER] %s failed after %s: %v", name, time.Since(start), err)
			return
		}
		log.Printf("[SCHEDULER] %s done in %s", name, time.Since(start))
	}
}

// generate bills the current month for kind.
func (s *Scheduler) generate(kind models.BillType) func(context.Context) error {
	return func(ctx context.Context) error {
		res, err := s.generator.Generate(ctx, billing.GenerateRequest{Kind: kind})
		if err != nil {
			return err
		}
		return res.Err()
	}
}

func (s *Scheduler) remind(ctx context.Context) error {
	sum, err := s.dispatcher.Dispatch(ctx, reminder.Options{UpcomingDays: s.cfg.UpcomingDays})
	if err != nil {
		return err
	}
	if n := len(sum.Failures); n > 0 {
		return fmt.Errorf("%d reminder(s) could not be delivered", n)
	}
	return nil
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and returns a context that is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
