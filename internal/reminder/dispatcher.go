// Package reminder emails tenants about bills that are due soon or overdue.
package reminder

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/beesaferoot/boardinghouse/internal/billing"
	"github.com/beesaferoot/boardinghouse/internal/models"
	"github.com/beesaferoot/boardinghouse/internal/store"
)

// DefaultUpcomingDays is how far ahead upcoming reminders look.
const DefaultUpcomingDays = 3

// TransportError reports a reminder the mailer failed to deliver.
type TransportError struct {
	BillID    uint
	Recipient string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("reminder for bill %d to %s: %v", e.BillID, e.Recipient, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type Options struct {
	UpcomingDays int
	// TestRecipient, when set, receives every reminder instead of the tenants.
	TestRecipient     string
	DryRun            bool
	SkipRemindedToday bool
}

type Summary struct {
	Today         time.Time
	UpcomingDate  time.Time
	UpcomingFound int
	UpcomingSent  int
	OverdueFound  int
	OverdueSent   int
	Skipped       int
	Failures      []*TransportError
}

type kind int

const (
	upcoming kind = iota
	overdue
)

func (k kind) String() string {
	if k == upcoming {
		return "upcoming"
	}
	return "overdue"
}

type templateData struct {
	Bill    *models.Bill
	Tenant  *models.Tenant
	DueDate string
	Amount  string
	Days    int
}

// Dispatcher selects reminder candidates and hands rendered messages to a Mailer.
type Dispatcher struct {
	store  *store.Store
	mailer Mailer
	clock  billing.Clock
	out    io.Writer
}

func NewDispatcher(s *store.Store, mailer Mailer, clock billing.Clock) *Dispatcher {
	if clock == nil {
		clock = billing.SystemClock{}
	}
	return &Dispatcher{store: s, mailer: mailer, clock: clock, out: io.Discard}
}

// SetOutput directs the per-bill progress lines to w.
func (d *Dispatcher) SetOutput(w io.Writer) {
	d.out = w
}

func (d *Dispatcher) printf(format string, args ...interface{}) {
	fmt.Fprintf(d.out, format, args...)
}

// Dispatch sends upcoming reminders for unpaid bills due exactly UpcomingDays from today and
// overdue reminders for unpaid bills due before today. A delivery failure is collected in the
// summary and the remaining bills are still processed.
func (d *Dispatcher) Dispatch(ctx context.Context, opts Options) (*Summary, error) {
	if opts.UpcomingDays < 0 {
		return nil, &billing.ValidationError{Field: "upcoming_days", Message: "must not be negative"}
	}
	today := billing.Today(d.clock)
	sum := &Summary{Today: today, UpcomingDate: today.AddDate(0, 0, opts.UpcomingDays)}

	upcomingBills, err := d.store.ReminderCandidates(ctx, &sum.UpcomingDate, nil)
	if err != nil {
		return nil, err
	}
	sum.UpcomingFound = len(upcomingBills)
	d.printf("Processing reminders for %s:\n", today.Format(models.DateLayout))
	d.printf("Found %d bill(s) due in %d day(s) (on %s).\n", sum.UpcomingFound, opts.UpcomingDays, sum.UpcomingDate.Format(models.DateLayout))
	for i := range upcomingBills {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if d.remind(ctx, &upcomingBills[i], upcoming, opts, sum) {
			sum.UpcomingSent++
		}
	}

	overdueBills, err := d.store.ReminderCandidates(ctx, nil, &today)
	if err != nil {
		return sum, err
	}
	sum.OverdueFound = len(overdueBills)
	d.printf("Found %d overdue bill(s) as of %s.\n", sum.OverdueFound, today.Format(models.DateLayout))
	for i := range overdueBills {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if d.remind(ctx, &overdueBills[i], overdue, opts, sum) {
			sum.OverdueSent++
		}
	}

	d.printf("Reminder processing complete. Sent %d upcoming reminders and %d overdue reminders.\n", sum.UpcomingSent, sum.OverdueSent)
	if opts.DryRun {
		d.printf("This was a dry run. No emails were actually sent.\n")
	}
	log.Printf("[REMINDER] %s: upcoming %d/%d, overdue %d/%d, %d failed",
		today.Format(models.DateLayout), sum.UpcomingSent, sum.UpcomingFound, sum.OverdueSent, sum.OverdueFound, len(sum.Failures))
	return sum, nil
}

// remind renders and sends one reminder and reports whether it was delivered.
func (d *Dispatcher) remind(ctx context.Context, bill *models.Bill, k kind, opts Options, sum *Summary) bool {
	tenant := bill.Tenant
	recipient := tenant.Email
	if opts.TestRecipient != "" {
		recipient = opts.TestRecipient
	}
	label := "Upcoming"
	if k == overdue {
		label = "Overdue"
	}
	d.printf("  - %s: Bill ID %d for %s (%s), Due: %s\n", label, bill.ID, tenant.FullName, recipient, bill.Due().Format(models.DateLayout))

	if opts.SkipRemindedToday && bill.LastRemindedAt != nil && models.Day(*bill.LastRemindedAt).Equal(sum.Today) {
		sum.Skipped++
		d.printf("    Skipping bill ID %d: already reminded today\n", bill.ID)
		return false
	}

	msg, err := d.compose(bill, k, recipient, sum.Today)
	if err != nil {
		sum.Failures = append(sum.Failures, &TransportError{BillID: bill.ID, Recipient: recipient, Err: err})
		d.printf("    Error rendering %s reminder for Bill ID %d: %v\n", k, bill.ID, err)
		return false
	}

	if opts.DryRun {
		d.printf("    (Dry run) Would send %s reminder for Bill ID %d to %s\n", k, bill.ID, recipient)
		return false
	}

	if err := d.mailer.Send(ctx, msg); err != nil {
		terr := &TransportError{BillID: bill.ID, Recipient: recipient, Err: err}
		sum.Failures = append(sum.Failures, terr)
		d.printf("    Error sending %s reminder for Bill ID %d: %v\n", k, bill.ID, err)
		log.Printf("[REMINDER] %v", terr)
		return false
	}

	if err := d.store.MarkReminded(ctx, bill.ID, d.clock.Now()); err != nil {
		log.Printf("[REMINDER] %v", err)
	}
	return true
}

func (d *Dispatcher) compose(bill *models.Bill, k kind, recipient string, today time.Time) (Message, error) {
	data := templateData{
		Bill:    bill,
		Tenant:  bill.Tenant,
		DueDate: bill.Due().Format(models.DateLayout),
		Amount:  bill.Amount.StringFixed(2),
	}
	if k == upcoming {
		data.Days = int(bill.Due().Sub(today).Hours() / 24)
	} else {
		data.Days = int(today.Sub(bill.Due()).Hours() / 24)
	}

	subject, err := render(k.String()+"_subject.tmpl", data)
	if err != nil {
		return Message{}, err
	}
	body, err := render(k.String()+"_body.tmpl", data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: recipient, Subject: strings.TrimSpace(subject), Body: body}, nil
}
