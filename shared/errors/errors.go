package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidID is returned when an identifier is not a well-formed id.
	ErrInvalidID = errors.New("invalid id")
	// ErrNotFound is returned by storage drivers when the document is absent.
	ErrNotFound = errors.New("not found")
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// StorageError is a persistence fault. It is the only error class that
// reaches the caller as a server error.
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

// Storage wraps err into a *StorageError unless it is nil or ErrNotFound.
func Storage(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// Is reports whether err (or anything it wraps) is of type T.
func Is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}
