package compare

// PatchOp is one RFC 6902 operation turning golden into candidate. It is
// context for a report, not part of the pass/fail decision.
type PatchOp struct {
	Op       string `json:"op"`
	Path     string `json:"path"`
	Value    any    `json:"value,omitempty"`
	OldValue any    `json:"old_value,omitempty"`
}

// Result is the structured outcome of comparing two documents.
type Result struct {
	Mode  Mode       `json:"mode"`
	Equal bool       `json:"equal"`
	Diff  *DiffError `json:"diff,omitempty"`
	// Patch lists every difference between the raw documents, including
	// those tolerated by rules. Only filled when requested.
	Patch []PatchOp `json:"patch"`
	// PatchError is set when the patch could not be computed.
	PatchError string `json:"patch_error,omitempty"`
}

// ReportOptions configures Documents.
type ReportOptions struct {
	Rules Options
	// WithPatch attaches the full golden→candidate patch.
	WithPatch bool
	// MaxPatchOps caps the number of patch operations kept; -1 keeps all.
	MaxPatchOps int
}
