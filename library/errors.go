package library

import (
	"errors"
	"fmt"
)

// ErrPersistence wraps failures to save or restore the state blob. The
// in-memory library stays authoritative when it occurs.
var ErrPersistence = errors.New("library: persistence failed")

// ImportError reports why one file could not be imported.
type ImportError struct {
	Name  string
	Cause error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("library: import %s: %v", e.Name, e.Cause)
}

func (e *ImportError) Unwrap() error {
	return e.Cause
}
