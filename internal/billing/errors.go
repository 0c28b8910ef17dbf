// Package billing derives bill state from payments and generates electricity and recurring bills.
package billing

import (
	"errors"
	"fmt"

	"github.com/beesaferoot/boardinghouse/internal/models"
	"github.com/beesaferoot/boardinghouse/internal/store"
)

// ErrNotFound is returned when a referenced tenant, bill or payment does not exist.
var ErrNotFound = store.ErrNotFound

// ValidationError reports invalid input. Nothing is written for the rejected operation.
type ValidationError = models.FieldError

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
