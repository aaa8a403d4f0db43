package compare

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
)

type summaryOnlyJSON struct {
	Mode  Mode       `json:"mode"`
	Equal bool       `json:"equal"`
	Diff  *DiffError `json:"diff,omitempty"`
}

// MarshalJSON produces a non-nil patch slice so consumers always see an array.
func (result Result) MarshalJSON() ([]byte, error) {
	type alias Result
	return json.Marshal(alias(normalizeForJSON(result)))
}

// RenderJSON writes a deterministic JSON payload for a compare result.
func RenderJSON(out io.Writer, result Result, summaryOnly bool) error {
	normalized := normalizeForJSON(result)

	var payload any = normalized
	if summaryOnly {
		payload = summaryOnlyJSON{Mode: normalized.Mode, Equal: normalized.Equal, Diff: normalized.Diff}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal compare JSON: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write compare JSON: %w", err)
	}
	return nil
}

func normalizeForJSON(result Result) Result {
	normalized := result
	normalized.Patch = slices.Clone(result.Patch)
	if normalized.Patch == nil {
		normalized.Patch = []PatchOp{}
	}
	return normalized
}
