package compare

import (
	"fmt"
	"strconv"

	"github.com/fundval/contractdiff/value"
)

const (
	goldenSide    = "golden"
	candidateSide = "candidate"
)

func typeMismatch(mode Mode, path string, expected, actual value.Value) *DiffError {
	g, c := expected.Kind().String(), actual.Kind().String()
	return &DiffError{
		Mode:      mode,
		Kind:      TypeMismatch,
		Path:      path,
		Golden:    g,
		Candidate: c,
		Message:   fmt.Sprintf("type mismatch @ %s: %s=%s %s=%s", path, goldenSide, g, candidateSide, c),
	}
}

func valueMismatch(mode Mode, path string, expected, actual value.Value) *DiffError {
	g, c := expected.Literal(), actual.Literal()
	return &DiffError{
		Mode:      mode,
		Kind:      ValueMismatch,
		Path:      path,
		Golden:    g,
		Candidate: c,
		Message:   fmt.Sprintf("value mismatch @ %s: %s=%s %s=%s", path, goldenSide, g, candidateSide, c),
	}
}

func lengthMismatch(mode Mode, path string, expected, actual int) *DiffError {
	g, c := strconv.Itoa(expected), strconv.Itoa(actual)
	return &DiffError{
		Mode:      mode,
		Kind:      LengthMismatch,
		Path:      path,
		Golden:    g,
		Candidate: c,
		Message:   fmt.Sprintf("array length mismatch @ %s: %s=%s %s=%s", path, goldenSide, g, candidateSide, c),
	}
}

// keyMismatch reports a key found on one side only. hint names a renamed
// counterpart on the other side, when one was found.
func keyMismatch(mode Mode, path, key string, missing bool, hint string) *DiffError {
	verb, present, absent := "unexpected", candidateSide, goldenSide
	if missing {
		verb, present, absent = "missing", goldenSide, candidateSide
	}
	msg := fmt.Sprintf("%s key %q @ %s: present in %s, absent in %s", verb, key, path, present, absent)
	if hint != "" {
		msg += fmt.Sprintf(" (%s has %q)", absent, hint)
	}
	return &DiffError{
		Mode:    mode,
		Kind:    KeyMismatch,
		Path:    path,
		Key:     key,
		Missing: missing,
		Message: msg,
	}
}

func predicateFailed(mode Mode, path string, err error) *DiffError {
	return &DiffError{
		Mode:    mode,
		Kind:    ValueMismatch,
		Path:    path,
		Message: fmt.Sprintf("check failed @ %s: %v", path, err),
		cause:   err,
	}
}
