package billing

import (
	"time"

	"github.com/beesaferoot/boardinghouse/internal/models"
)

// Clock supplies the current time so "today" can be pinned in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Today returns the clock's current calendar date at UTC midnight.
func Today(c Clock) time.Time {
	return models.Day(c.Now())
}
