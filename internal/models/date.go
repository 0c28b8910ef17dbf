package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// DateLayout is the layout used for every date-only value on the command line and the API.
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDate converts t to a date-only column value.
func NewDate(t time.Time) datatypes.Date {
	return datatypes.Date(Day(t))
}

// DatePtr is NewDate for nullable columns.
func DatePtr(t time.Time) *datatypes.Date {
	d := NewDate(t)
	return &d
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &FieldError{Field: "date", Message: fmt.Sprintf("should be YYYY-MM-DD, got %q", s)}
	}
	return t, nil
}
