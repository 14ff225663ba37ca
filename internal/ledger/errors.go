package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrRejected         = errors.New("transaction rejected by ledger")
	ErrUnavailable      = errors.New("ledger unavailable")
	ErrNotFound         = errors.New("record not found on ledger")
	ErrDuplicatePayment = errors.New("payment id already used")
	ErrIDUnrecoverable  = errors.New("could not recover identifier from transaction")
	ErrMalformed        = errors.New("malformed ledger response")
)

// Error is the single error shape both registry clients return, so callers
// can treat either ledger's failure the same way.
type Error struct {
	Ledger string
	Op     string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s ledger: %s: %v", e.Ledger, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap tags err with the ledger and operation. A nil err stays nil.
func Wrap(ledgerName, op string, err error) error {
	if err == nil {
		return nil
	}
	var le *Error
	if errors.As(err, &le) && le.Ledger == ledgerName && le.Op == op {
		return err
	}
	return &Error{Ledger: ledgerName, Op: op, Err: err}
}

// IsNotFound reports whether err means the lookup target does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
