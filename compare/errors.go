package compare

import (
	"errors"
	"fmt"
)

// Mode selects value (shape) or type-only (schema) comparison.
type Mode int

const (
	ModeShape Mode = iota
	ModeSchema
)

func (m Mode) String() string {
	if m == ModeSchema {
		return "schema"
	}
	return "shape"
}

// MarshalText renders the mode name in JSON reports.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseMode accepts "shape" or "schema".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "shape", "":
		return ModeShape, nil
	case "schema":
		return ModeSchema, nil
	}
	return ModeShape, fmt.Errorf("unknown compare mode %q: expected shape or schema", s)
}

// Kind classifies the first violation found by a comparison.
type Kind int

const (
	// KeyMismatch is an object key present on one side only.
	KeyMismatch Kind = iota + 1
	// TypeMismatch is a difference in JSON kind, including null vs non-null.
	TypeMismatch
	// LengthMismatch is a difference in array length.
	LengthMismatch
	// ValueMismatch is a difference in primitive literal. Schema comparison
	// only reports it below paths marked Exact, or from a predicate.
	ValueMismatch
)

func (k Kind) String() string {
	switch k {
	case KeyMismatch:
		return "key-mismatch"
	case TypeMismatch:
		return "type-mismatch"
	case LengthMismatch:
		return "length-mismatch"
	case ValueMismatch:
		return "value-mismatch"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

var (
	ErrKeyMismatch    = errors.New("key mismatch")
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrLengthMismatch = errors.New("array length mismatch")
	ErrValueMismatch  = errors.New("value mismatch")
)

func (k Kind) sentinel() error {
	switch k {
	case KeyMismatch:
		return ErrKeyMismatch
	case TypeMismatch:
		return ErrTypeMismatch
	case LengthMismatch:
		return ErrLengthMismatch
	case ValueMismatch:
		return ErrValueMismatch
	}
	return nil
}

// DiffError describes the single violation that ended a comparison.
type DiffError struct {
	Mode Mode   `json:"mode"`
	Kind Kind   `json:"kind"`
	Path string `json:"path"`
	// Key is the offending member name for KeyMismatch.
	Key string `json:"key,omitempty"`
	// Missing is set for a KeyMismatch where the key exists only in golden.
	Missing bool `json:"missing,omitempty"`
	// Golden and Candidate hold what was observed on each side: type names,
	// lengths or literals depending on Kind.
	Golden    string `json:"golden,omitempty"`
	Candidate string `json:"candidate,omitempty"`
	Message   string `json:"message"`

	cause error
}

func (e *DiffError) Error() string {
	return e.Message
}

// Is matches the sentinel for the error's Kind, so callers can write
// errors.Is(err, compare.ErrKeyMismatch).
func (e *DiffError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Unwrap exposes the error returned by a rule predicate, if any.
func (e *DiffError) Unwrap() error {
	return e.cause
}

// AsDiffError extracts a *DiffError from err's chain.
func AsDiffError(err error) (*DiffError, bool) {
	var de *DiffError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
