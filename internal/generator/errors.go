package generator

import (
	"errors"
	"fmt"

	"gallery/internal/domain"
)

// Error is a classified generation failure.
type Error struct {
	Class    domain.FailureClass
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("generator %s (exit %d): %v", e.Class, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("generator %s: %v", e.Class, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Classify returns the failure class carried by err. Unclassified errors count as generation failures.
func Classify(err error) domain.FailureClass {
	if err == nil {
		return domain.FailureNone
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Class
	}
	return domain.FailureGeneration
}
