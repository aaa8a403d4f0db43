package scenario

import (
	"fmt"
	"io"

	"github.com/fundval/contractdiff/compare"
	"github.com/fundval/contractdiff/internal/util/diagtree"
)

// Report collects the results of a run.
type Report struct {
	Results []Result
}

// Failed reports whether any case failed.
func (r Report) Failed() bool {
	return len(r.Failures()) > 0
}

func (r Report) Failures() []Result {
	out := []Result{}
	for _, res := range r.Results {
		if res.Outcome == Failed {
			out = append(out, res)
		}
	}
	return out
}

// Count returns the number of cases with outcome o.
func (r Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// WriteFailures writes one `[name] message` block per failed case. The raw
// differences of failed comparisons follow when they were recorded.
func (r Report) WriteFailures(out io.Writer) {
	for _, res := range r.Failures() {
		fmt.Fprintf(out, "\n[%s] %v\n", res.Name, res.Err)
		for _, cp := range res.Checkpoints {
			if cp.Result == nil || len(cp.Result.Patch) == 0 {
				continue
			}
			fmt.Fprintln(out)
			compare.RenderText(out, *cp.Result)
		}
	}
}

// Tree arranges the run as Cases, then each case, then its checkpoints.
func (r Report) Tree() *diagtree.Node {
	root := &diagtree.Node{}
	cases := root.Label("Cases")
	for _, res := range r.Results {
		node := cases.Label(res.Name)
		switch res.Outcome {
		case Passed:
			node.SetDescription(diagtree.Pass, "%dms", res.Elapsed.Milliseconds())
		case Skipped:
			node.SetDescription(diagtree.Skip, "%v", res.Err)
		default:
			node.SetDescription(diagtree.Fail, "%v", res.Err)
		}
		for _, cp := range res.Checkpoints {
			if cp.Passed() {
				node.Label(cp.Label).SetDescription(diagtree.Pass, "ok")
				continue
			}
			node.Label(cp.Label).SetDescription(diagtree.Fail, "%v", cp.Err)
		}
	}
	return root
}

// WriteSummary writes the tree followed by the totals.
func (r Report) WriteSummary(out io.Writer, maxLines int) {
	tree := r.Tree()
	tree.Prune()
	tree.Display(out, maxLines)
	fmt.Fprintf(out, "\n%d passed, %d failed, %d skipped\n",
		r.Count(Passed), r.Count(Failed), r.Count(Skipped))
}
