package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beesaferoot/boardinghouse/internal/billing"
	"github.com/beesaferoot/boardinghouse/internal/models"
	"github.com/beesaferoot/boardinghouse/internal/reminder"
	"github.com/beesaferoot/boardinghouse/internal/store"
	"github.com/beesaferoot/boardinghouse/internal/testutil"
)

func newScheduler(t *testing.T, cfg Config) (*Scheduler, *store.Store) {
	t.Helper()
	s := testutil.NewStore(t)
	clock := billing.FixedClock{T: time.Date(2026, 10, 1, 0, 5, 0, 0, time.UTC)}
	sched, err := New(cfg, billing.NewGenerator(s, clock), reminder.NewDispatcher(s, reminder.LogMailer{}, clock))
	require.NoError(t, err)
	return sched, s
}

func TestNewRegistersJobs(t *testing.T) {
	sched, _ := newScheduler(t, Config{
		RentSchedule:     "5 0 1 * *",
		WaterSchedule:    "10 0 1 * *",
		ReminderSchedule: "0 8 * * *",
	})
	assert.Equal(t, 3, sched.Jobs())

	sched.Start()
	<-sched.Stop().Done()
}

func TestNewRejectsBadSchedule(t *testing.T) {
	s := testutil.NewStore(t)
	_, err := New(Config{RentSchedule: "every day"}, billing.NewGenerator(s, nil), reminder.NewDispatcher(s, reminder.LogMailer{}, nil))
	assert.ErrorContains(t, err, "invalid rent schedule")
}

func TestGenerateJobBillsCurrentMonth(t *testing.T) {
	sched, s := newScheduler(t, Config{})
	room := testutil.Room(t, s, "101", "1200")
	testutil.Tenant(t, s, "Ana", room, "2026-01-01", func(tn *models.Tenant) { tn.Email = "ana@example.com" })

	require.NoError(t, sched.generate(models.BillTypeRent)(context.Background()))
	require.NoError(t, sched.generate(models.BillTypeRent)(context.Background()))

	bills, err := s.ListBills(context.Background(), store.BillFilter{Type: models.BillTypeRent})
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, 10, *bills[0].PeriodMonth)

	sched.cfg.UpcomingDays = 4
	assert.NoError(t, sched.remind(context.Background()))
	got, err := s.GetBill(context.Background(), bills[0].ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastRemindedAt)
}
