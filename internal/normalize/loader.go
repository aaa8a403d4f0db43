package normalize

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadRules reads a YAML (or JSON) rules file.
func LoadRules(path string) (RuleSet, error) {
	if strings.TrimSpace(path) == "" {
		return RuleSet{}, fmt.Errorf("%w: empty path", ErrRulesRequired)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, errors.Join(ErrRulesRequired, err)
	}

	return ParseRules(data)
}

// ParseRules decodes and validates a rules document.
func ParseRules(data []byte) (RuleSet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return RuleSet{}, fmt.Errorf("%w: empty payload", ErrRulesRequired)
	}

	var file RulesFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&file); err != nil {
		return RuleSet{}, fmt.Errorf("%w: %v", ErrRulesInvalid, err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return RuleSet{}, fmt.Errorf("%w: trailing content", ErrRulesInvalid)
	}

	if err := ValidateRules(&file); err != nil {
		return RuleSet{}, err
	}

	return compileFile(file)
}

// ValidateRules checks versions, classes and member names. Patterns are
// checked when the set is compiled.
func ValidateRules(file *RulesFile) error {
	if file == nil || len(file.Rules) == 0 {
		return fmt.Errorf("%w: no rules", ErrRulesRequired)
	}

	if file.Version != nil && *file.Version != SupportedRulesVersion {
		return fmt.Errorf("%w: expected %d got %d", ErrRulesVersionUnsupported,
			SupportedRulesVersion, *file.Version)
	}

	for i, rule := range file.Rules {
		if strings.TrimSpace(rule.Path) == "" {
			return fmt.Errorf("%w: rules[%d].path must be set", ErrRulesInvalid, i)
		}
		if !rule.Class.valid() {
			return fmt.Errorf("%w: rules[%d].class %q must be one of uuid, timestamp, value, ignore, optional",
				ErrRulesInvalid, i, rule.Class)
		}
	}

	for i, name := range file.Descend {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: descend[%d] must be set", ErrRulesInvalid, i)
		}
	}

	return nil
}

// Resolve returns the built-in set called ref, or loads ref as a file.
// Several references may be joined with commas.
func Resolve(ref string) (RuleSet, error) {
	var out RuleSet
	for _, part := range strings.Split(ref, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if rs, ok := Builtin(part); ok {
			out = out.Extend(rs)
			continue
		}
		rs, err := LoadRules(part)
		if err != nil {
			return RuleSet{}, fmt.Errorf("rules %q: %w", part, err)
		}
		out = out.Extend(rs)
	}
	if out.IsZero() {
		return RuleSet{}, fmt.Errorf("%w: %q names no rules", ErrRulesRequired, ref)
	}
	return out, nil
}
