package application

import (
	"errors"
	"strings"
)

var (
	ErrNotFound          = errors.New("application not found")
	ErrInvalidTransition = errors.New("application is not in a state that allows this action")
	ErrInvalidScore      = errors.New("score must be between 0 and 100")
	ErrReasonRequired    = errors.New("rejection reason is required")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// ValidationError reports required fields missing from an application write.
// It never wraps a ledger error.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "application: missing required fields: " + strings.Join(e.Fields, ", ")
}
