// Package errors defines the error taxonomy shared by the storage,
// service and transport layers.
package errors

import (
	"fmt"
)

var (
	ErrNotFound     = fmt.Errorf("not found")
	ErrInvalidInput = fmt.Errorf("invalid input")
	// ErrDuplicateComplete rejects a submission for a company that is
	// already stored with complete information.
	ErrDuplicateComplete = fmt.Errorf("company already exists with complete information")
	// ErrConflict reports that a record changed between read and write.
	ErrConflict       = fmt.Errorf("concurrent modification")
	ErrDuplicateEmail = fmt.Errorf("email already registered")
	ErrUnauthorized   = fmt.Errorf("unauthorized")
)

// StorageError wraps a failure of the underlying data store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage wraps err in a StorageError for op. A nil err stays nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
