package compare

import (
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"
	"github.com/wI2L/jsondiff"

	"github.com/fundval/contractdiff/value"
)

// Documents compares golden and candidate from the root and packages the
// outcome for rendering.
func Documents(golden, candidate value.Value, mode Mode, opts ReportOptions) Result {
	result := Result{Mode: mode, Equal: true, Patch: []PatchOp{}}

	if err := Check(mode, golden, candidate, "$", opts.Rules); err != nil {
		de, ok := AsDiffError(err)
		if !ok {
			de = &DiffError{Mode: mode, Path: "$", Message: err.Error(), cause: err}
		}
		result.Equal = false
		result.Diff = de
	}

	if opts.WithPatch {
		patch, err := Patch(golden, candidate)
		if err != nil {
			logging.V(5).Infof("computing patch: %v", err)
			result.PatchError = err.Error()
		} else {
			if opts.MaxPatchOps >= 0 && len(patch) > opts.MaxPatchOps {
				patch = patch[:opts.MaxPatchOps]
			}
			result.Patch = patch
		}
	}
	return result
}

// Patch computes the RFC 6902 operations that turn golden into candidate.
func Patch(golden, candidate value.Value) ([]PatchOp, error) {
	goldenJSON, err := golden.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal golden: %w", err)
	}
	candidateJSON, err := candidate.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal candidate: %w", err)
	}

	diff, err := jsondiff.CompareJSON(goldenJSON, candidateJSON)
	if err != nil {
		return nil, err
	}

	ops := make([]PatchOp, 0, len(diff))
	for _, d := range diff {
		ops = append(ops, PatchOp{
			Op:       d.Type,
			Path:     d.Path,
			Value:    d.Value,
			OldValue: d.OldValue,
		})
	}
	return ops, nil
}
