package compare

import (
	"encoding/json"
	"fmt"
	"io"
)

// RenderText writes human-readable compare output from Result only.
func RenderText(out io.Writer, result Result) {
	fmt.Fprintf(out, "### Do golden and candidate have the same %s?\n\n", result.Mode)
	if result.Equal {
		fmt.Fprintln(out, "Looking good! No differences found.")
	} else {
		fmt.Fprintf(out, "Found a %s:\n", result.Diff.Kind)
		fmt.Fprintf(out, "- `%s` %s\n", result.Diff.Path, result.Diff.Message)
	}

	if result.PatchError != "" {
		fmt.Fprintf(out, "\n#### Patch unavailable: %s\n", result.PatchError)
		return
	}
	if len(result.Patch) == 0 {
		return
	}
	fmt.Fprintln(out, "\n#### Raw differences:")
	fmt.Fprintln(out, "")
	for _, op := range result.Patch {
		switch op.Op {
		case "remove":
			fmt.Fprintf(out, "- %s `%s`\n", op.Op, op.Path)
		default:
			fmt.Fprintf(out, "- %s `%s` = %s\n", op.Op, op.Path, compactJSON(op.Value))
		}
	}
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
