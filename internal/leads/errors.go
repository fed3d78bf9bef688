package leads

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidName is returned when the name is invalid
	ErrInvalidName = errors.New("name is required")

	// ErrMissingContact is returned when the whatsapp handle is missing
	ErrMissingContact = errors.New("whatsapp is required")

	// ErrInvalidClassification is returned for anything other than HOT, WARM or COLD
	ErrInvalidClassification = errors.New("classification must be one of HOT, WARM, COLD")

	// ErrInvalidStatus is returned for anything other than pending or attended
	ErrInvalidStatus = errors.New("status must be pending or attended")
)

// StorageError reports that the lead store could not complete an operation.
// Callers surface it as a server error and never retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("leads: %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
