package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/fundval/contractdiff/internal/config"
	"github.com/fundval/contractdiff/internal/httpjson"
)

// Outcome is the verdict of one case.
type Outcome int

const (
	Passed Outcome = iota
	Failed
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "PASS"
	case Failed:
		return "FAIL"
	case Skipped:
		return "SKIP"
	}
	return "UNKNOWN"
}

// Result is the record of one case.
type Result struct {
	Name        string
	Outcome     Outcome
	Elapsed     time.Duration
	Err         error
	Checkpoints []Checkpoint
}

// Runner executes cases one after the other. A failing case does not stop
// the run.
type Runner struct {
	Config config.Config
	// Out receives one line per case.
	Out io.Writer
	// Color paints the verdicts.
	Color bool
	// Patch keeps the raw differences of failed comparisons.
	Patch bool

	golden, candidate *httpjson.Client
	goldenBackend     config.Backend
	candidateBackend  config.Backend
}

// NewRunner builds a runner from cfg. Backend config files are read once,
// up front.
func NewRunner(cfg config.Config, out io.Writer) (*Runner, error) {
	golden, err := config.ReadBackend(cfg.GoldenConfigPath)
	if err != nil {
		return nil, fmt.Errorf("golden: %w", err)
	}
	candidate, err := config.ReadBackend(cfg.CandidateConfigPath)
	if err != nil {
		return nil, fmt.Errorf("candidate: %w", err)
	}
	return &Runner{
		Config:           cfg,
		Out:              out,
		golden:           httpjson.New(cfg.GoldenBaseURL, cfg.Timeout),
		candidate:        httpjson.New(cfg.CandidateBaseURL, cfg.Timeout),
		goldenBackend:    golden,
		candidateBackend: candidate,
	}, nil
}

// Run executes the selected cases in order.
func (r *Runner) Run(ctx context.Context, cases []Case) Report {
	report := Report{Results: []Result{}}
	for _, c := range cases {
		if !r.Config.Wants(c.Name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			report.Results = append(report.Results, Result{Name: c.Name, Outcome: Failed, Err: err})
			r.printVerdict(report.Results[len(report.Results)-1])
			continue
		}
		res := r.runOne(ctx, c)
		r.printVerdict(res)
		report.Results = append(report.Results, res)
	}
	return report
}

func (r *Runner) runOne(ctx context.Context, c Case) Result {
	rec := &recorder{patch: r.Patch}
	s := &Session{
		Pair:             Pair{Golden: r.golden, Candidate: r.candidate, rec: rec},
		Config:           r.Config,
		GoldenBackend:    r.goldenBackend,
		CandidateBackend: r.candidateBackend,
	}

	start := time.Now()
	err := runCase(ctx, c, s)
	res := Result{
		Name:        c.Name,
		Elapsed:     time.Since(start),
		Err:         err,
		Checkpoints: rec.checkpoints,
	}
	switch {
	case err == nil:
		res.Outcome = Passed
	case errors.Is(err, ErrSkipped):
		res.Outcome = Skipped
	default:
		res.Outcome = Failed
	}
	return res
}

func (r *Runner) printVerdict(res Result) {
	if r.Out == nil {
		return
	}
	verdict := res.Outcome.String()
	if r.Color {
		verdict = paint(res.Outcome).Sprint(verdict)
	}
	fmt.Fprintf(r.Out, "%s %s (%dms)\n", verdict, res.Name, res.Elapsed.Milliseconds())
}

func paint(o Outcome) *color.Color {
	var c *color.Color
	switch o {
	case Passed:
		c = color.New(color.FgGreen)
	case Failed:
		c = color.New(color.FgRed, color.Bold)
	default:
		c = color.New(color.FgYellow)
	}
	// Color was asked for explicitly; don't let tty detection drop it.
	c.EnableColor()
	return c
}
