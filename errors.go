package bookcache

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a referenced book does not exist.
	ErrNotFound = errors.New("bookcache: not found")
	// ErrConflict reports a uniqueness violation (duplicate ISBN).
	ErrConflict = errors.New("bookcache: conflict")
)

// StoreError is any store-layer failure other than not-found. The catalog
// returns it unchanged and never retries.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store %s failed", e.Op)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NotFoundError names the missing book. It matches ErrNotFound.
type NotFoundError struct {
	BookID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("book with id %d not found", e.BookID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(bookID int64) error {
	return &NotFoundError{BookID: bookID}
}
