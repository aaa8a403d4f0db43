package normalize

import (
	"errors"
	"fmt"
)

var (
	// ErrRulesRequired indicates normalization rules are missing.
	ErrRulesRequired = errors.New("normalization rules required")
	// ErrRulesInvalid indicates a rules payload is malformed.
	ErrRulesInvalid = errors.New("normalization rules invalid")
	// ErrRulesVersionUnsupported indicates a known-but-unsupported rules version.
	ErrRulesVersionUnsupported = errors.New("normalization rules version unsupported")
)

// SupportedRulesVersion is the highest rules file version understood here.
const SupportedRulesVersion = 1

const (
	// UUIDPlaceholder replaces generated identifiers.
	UUIDPlaceholder = "uuid"
	// TimestampPlaceholder replaces generated timestamps.
	TimestampPlaceholder = "ts"
)

// Class says what kind of volatile data lives at a path.
type Class string

const (
	// ClassUUID rewrites strings to UUIDPlaceholder.
	ClassUUID Class = "uuid"
	// ClassTimestamp rewrites strings to TimestampPlaceholder.
	ClassTimestamp Class = "timestamp"
	// ClassValue keeps the value but lets the literal differ.
	ClassValue Class = "value"
	// ClassIgnore drops the path from comparison.
	ClassIgnore Class = "ignore"
	// ClassOptional lets a key be absent on one side when the other holds null.
	ClassOptional Class = "optional"
)

func (c Class) valid() bool {
	switch c {
	case ClassUUID, ClassTimestamp, ClassValue, ClassIgnore, ClassOptional:
		return true
	}
	return false
}

// rewrites reports whether the class replaces values before comparison.
func (c Class) rewrites() bool {
	return c == ClassUUID || c == ClassTimestamp
}

func (c Class) placeholder() string {
	switch c {
	case ClassUUID:
		return UUIDPlaceholder
	case ClassTimestamp:
		return TimestampPlaceholder
	}
	return ""
}

// RuleSpec binds a path pattern, relative to the entity root, to a class.
type RuleSpec struct {
	Path  string `json:"path" yaml:"path"`
	Class Class  `json:"class" yaml:"class"`
}

func (r RuleSpec) String() string {
	return fmt.Sprintf("%s=%s", r.Path, r.Class)
}

// RulesFile models the on-disk rules document.
type RulesFile struct {
	Version *int       `json:"version,omitempty" yaml:"version,omitempty"`
	Rules   []RuleSpec `json:"rules" yaml:"rules"`
	// Descend lists member names whose values (objects, or arrays of
	// objects) are entities of the same kind, normalized with the same rules.
	Descend []string `json:"descend,omitempty" yaml:"descend,omitempty"`
}

// Replacement records one rewrite made by Apply.
type Replacement struct {
	Path  string
	Class Class
	Old   string
}
