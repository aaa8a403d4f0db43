package scenario

import (
	"errors"
	"fmt"
)

var (
	ErrStatusMismatch = errors.New("status mismatch")
	ErrSkipped        = errors.New("skipped")
)

// StatusMismatchError reports a checkpoint whose HTTP statuses differ, or
// differ from the status the case requires.
type StatusMismatchError struct {
	Label     string
	Golden    int
	Candidate int
	// Want is the status both sides had to return. Zero means they only had
	// to agree.
	Want int
}

func (e *StatusMismatchError) Error() string {
	if e.Want != 0 {
		return fmt.Sprintf("%s: expected status %d: golden=%d candidate=%d",
			e.Label, e.Want, e.Golden, e.Candidate)
	}
	return fmt.Sprintf("%s: status mismatch: golden=%d candidate=%d", e.Label, e.Golden, e.Candidate)
}

func (e *StatusMismatchError) Is(target error) bool {
	return target == ErrStatusMismatch
}

// SkipError ends a case early without failing it.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return "skipped: " + e.Reason
}

func (e *SkipError) Is(target error) bool {
	return target == ErrSkipped
}

// Skip returns an error that makes the runner record the case as skipped.
func Skip(format string, a ...any) error {
	return &SkipError{Reason: fmt.Sprintf(format, a...)}
}

// CheckError is a failed assertion that is not a structural difference.
type CheckError struct {
	Label   string
	Message string
}

func (e *CheckError) Error() string {
	return e.Label + ": " + e.Message
}
