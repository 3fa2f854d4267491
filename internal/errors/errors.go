package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/agenda/internal/logger"
)

var (
	// ErrNotFound is returned when an occurrence or series cannot be resolved.
	ErrNotFound = stderrors.New("not found")
	// ErrValidation is returned for malformed input, before any store call.
	ErrValidation = stderrors.New("validation failed")
)

// StoreError wraps a failure of the underlying store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NotFound returns an error wrapping ErrNotFound.
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Validation returns an error wrapping ErrValidation.
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Store wraps err as a StoreError for op. Nil stays nil, and errors that
// already carry a taxonomy class are returned unchanged.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) || IsValidation(err) || IsStore(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	return stderrors.Is(err, ErrValidation)
}

func IsStore(err error) bool {
	var se *StoreError
	return stderrors.As(err, &se)
}

// Is and As re-export the standard helpers so callers need one errors import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Describe renders err for the user, naming the failure class.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case IsNotFound(err):
		return fmt.Sprintf("could not find item: %v", err)
	case IsValidation(err):
		return fmt.Sprintf("invalid input: %v", err)
	case IsStore(err):
		return fmt.Sprintf("storage failure: %v", err)
	}
	return err.Error()
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", Describe(err))
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
