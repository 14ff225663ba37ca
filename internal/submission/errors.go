package submission

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidPayment       = errors.New("invalid payment")
	ErrDocumentUploadFailed = errors.New("document upload failed")
	ErrBothLedgersFailed    = errors.New("both ledgers failed")
	ErrDatabaseSave         = errors.New("database save failed")
	ErrAlreadyRegistered    = errors.New("vendor already has a pending or approved application")
)

// PersistenceError means the local save failed after at least one ledger
// accepted the submission. The identifiers are what an operator needs to
// reconcile by hand.
type PersistenceError struct {
	ApplicationID       string
	LegacyApplicationID *uint64
	VendorID            *uint64
	TxHash              string
	Err                 error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("database save failed for application %s after ledger writes: %v", e.ApplicationID, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrDatabaseSave, e.Err}
}
