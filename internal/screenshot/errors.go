package screenshot

import (
	"errors"
	"fmt"
)

// Common screenshot preparation errors
var (
	// ErrImageNotFound is returned when the screenshot file does not exist.
	ErrImageNotFound = errors.New("screenshot file not found")

	// ErrUnreadableImage is returned when every loading strategy failed to
	// decode the image.
	ErrUnreadableImage = errors.New("image could not be decoded by any loader")

	// ErrBandWrite is returned when a band file cannot be written to the
	// temporary directory.
	ErrBandWrite = errors.New("failed to write band file")
)

// PrepareError wraps errors with context about the preparation failure.
type PrepareError struct {
	// Op is the operation that failed (e.g., "Prepare", "sliceBands").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *PrepareError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("screenshot: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("screenshot: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *PrepareError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *PrepareError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func wrapPrepareError(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	var pe *PrepareError
	if errors.As(err, &pe) {
		return err
	}
	return &PrepareError{Op: op, Err: err, Details: details}
}
