package reminder_test

import (
	"bytes"
	"context"
	"errors"
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

type fakeMailer struct {
	sent []reminder.Message
	fail map[string]bool
}

func (f *fakeMailer) Send(ctx context.Context, msg reminder.Message) error {
	if f.fail[msg.To] {
		return errors.New("connection refused")
	}
	f.sent = append(f.sent, msg)
	return nil
}

var today = time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*store.Store, *fakeMailer, *reminder.Dispatcher) {
	t.Helper()
	s := testutil.NewStore(t)
	mailer := &fakeMailer{fail: map[string]bool{}}
	return s, mailer, reminder.NewDispatcher(s, mailer, billing.FixedClock{T: today})
}

func withEmail(email string) func(*models.Tenant) {
	return func(tn *models.Tenant) { tn.Email = email }
}

func TestDispatchSelectsUpcomingAndOverdue(t *testing.T) {
	s, mailer, d := setup(t)
	ctx := context.Background()
	ana := testutil.Tenant(t, s, "Ana", nil, "2026-01-01", withEmail("ana@example.com"))

	upcomingBill := testutil.Bill(t, s, ana, models.BillTypeOther, "25", "2026-10-19")
	overdueBill := testutil.Bill(t, s, ana, models.BillTypeOther, "30", "2026-10-15")
	testutil.Bill(t, s, ana, models.BillTypeOther, "35", "2026-10-16")
	testutil.Bill(t, s, ana, models.BillTypeOther, "40", "2026-10-18")
	paid := testutil.Bill(t, s, ana, models.BillTypeOther, "45", "2026-10-01")
	require.NoError(t, s.SetBillPaid(ctx, paid.ID, true))

	var out bytes.Buffer
	d.SetOutput(&out)
	sum, err := d.Dispatch(ctx, reminder.Options{UpcomingDays: 3})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.UpcomingFound)
	assert.Equal(t, 1, sum.UpcomingSent)
	assert.Equal(t, 1, sum.OverdueFound)
	assert.Equal(t, 1, sum.OverdueSent)
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "ana@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Subject, "is due on 2026-10-19")
	assert.Contains(t, mailer.sent[0].Body, "Dear Ana")
	assert.Contains(t, mailer.sent[1].Body, "1 day(s) overdue")
	assert.Contains(t, out.String(), "Found 1 bill(s) due in 3 day(s) (on 2026-10-19).")

	for _, id := range []uint{upcomingBill.ID, overdueBill.ID} {
		bill, err := s.GetBill(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, bill.LastRemindedAt)
	}
}

func TestDispatchFiltersTenants(t *testing.T) {
	s, mailer, d := setup(t)
	noEmail := testutil.Tenant(t, s, "NoEmail", nil, "2026-01-01")
	inactive := testutil.Tenant(t, s, "Inactive", nil, "2026-01-01", withEmail("x@example.com"), func(tn *models.Tenant) { tn.IsActive = false })
	testutil.Bill(t, s, noEmail, models.BillTypeOther, "10", "2026-10-01")
	testutil.Bill(t, s, inactive, models.BillTypeOther, "10", "2026-10-01")

	sum, err := d.Dispatch(context.Background(), reminder.Options{UpcomingDays: 3})
	require.NoError(t, err)
	assert.Zero(t, sum.OverdueFound)
	assert.Empty(t, mailer.sent)
}

func TestDispatchDryRunAndTestRecipient(t *testing.T) {
	s, mailer, d := setup(t)
	ana := testutil.Tenant(t, s, "Ana", nil, "2026-01-01", withEmail("ana@example.com"))
	bill := testutil.Bill(t, s, ana, models.BillTypeOther, "10", "2026-10-01")

	var out bytes.Buffer
	d.SetOutput(&out)
	sum, err := d.Dispatch(context.Background(), reminder.Options{DryRun: true, TestRecipient: "ops@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.OverdueFound)
	assert.Zero(t, sum.OverdueSent)
	assert.Empty(t, mailer.sent)
	assert.Contains(t, out.String(), "(Dry run) Would send overdue reminder for Bill ID")
	assert.Contains(t, out.String(), "ops@example.com")
	assert.Contains(t, out.String(), "This was a dry run.")

	got, err := s.GetBill(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastRemindedAt)
}

func TestDispatchContinuesAfterTransportFailure(t *testing.T) {
	s, mailer, d := setup(t)
	ana := testutil.Tenant(t, s, "Ana", nil, "2026-01-01", withEmail("ana@example.com"))
	budi := testutil.Tenant(t, s, "Budi", nil, "2026-01-01", withEmail("budi@example.com"))
	failing := testutil.Bill(t, s, ana, models.BillTypeOther, "10", "2026-10-01")
	testutil.Bill(t, s, budi, models.BillTypeOther, "10", "2026-10-02")
	mailer.fail["ana@example.com"] = true

	sum, err := d.Dispatch(context.Background(), reminder.Options{UpcomingDays: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.OverdueFound)
	assert.Equal(t, 1, sum.OverdueSent)
	require.Len(t, sum.Failures, 1)
	assert.Equal(t, failing.ID, sum.Failures[0].BillID)
	assert.Equal(t, "ana@example.com", sum.Failures[0].Recipient)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "budi@example.com", mailer.sent[0].To)
}

func TestSkipRemindedToday(t *testing.T) {
	s, mailer, d := setup(t)
	ana := testutil.Tenant(t, s, "Ana", nil, "2026-01-01", withEmail("ana@example.com"))
	testutil.Bill(t, s, ana, models.BillTypeOther, "10", "2026-10-01")

	_, err := d.Dispatch(context.Background(), reminder.Options{UpcomingDays: 3})
	require.NoError(t, err)

	sum, err := d.Dispatch(context.Background(), reminder.Options{UpcomingDays: 3, SkipRemindedToday: true})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
	assert.Zero(t, sum.OverdueSent)

	_, err = d.Dispatch(context.Background(), reminder.Options{UpcomingDays: 3})
	require.NoError(t, err)
	assert.Len(t, mailer.sent, 2)
}
