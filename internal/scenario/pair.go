package scenario

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/fundval/contractdiff/compare"
	"github.com/fundval/contractdiff/internal/httpjson"
	"github.com/fundval/contractdiff/internal/normalize"
	"github.com/fundval/contractdiff/value"
)

// Call is the request sent to one backend.
type Call struct {
	Method string
	Path   string
	Body   any
}

func Get(path string) Call             { return Call{Method: http.MethodGet, Path: path} }
func Post(path string, body any) Call  { return Call{Method: http.MethodPost, Path: path, Body: body} }
func Patch(path string, body any) Call { return Call{Method: http.MethodPatch, Path: path, Body: body} }
func Put(path string, body any) Call   { return Call{Method: http.MethodPut, Path: path, Body: body} }
func Delete(path string) Call          { return Call{Method: http.MethodDelete, Path: path} }

// Pair sends every request to the golden and the candidate backend and
// records the checkpoints evaluated on the answers.
type Pair struct {
	Golden    *httpjson.Client
	Candidate *httpjson.Client

	rec *recorder
}

// NewPair returns a pair that records nothing.
func NewPair(golden, candidate *httpjson.Client) Pair {
	return Pair{Golden: golden, Candidate: candidate}
}

// WithTokens returns a copy of p authenticated with one bearer token per
// side. Checkpoints keep being recorded on the same case.
func (p Pair) WithTokens(golden, candidate string) Pair {
	return Pair{
		Golden:    p.Golden.WithToken(golden),
		Candidate: p.Candidate.WithToken(candidate),
		rec:       p.rec,
	}
}

// Same sends the same call to both sides.
func (p Pair) Same(ctx context.Context, label string, call Call) (*Exchange, error) {
	return p.Do(ctx, label, call, call)
}

// Do sends golden and candidate concurrently and returns once both have
// answered. A transport or decode failure on either side fails the
// exchange.
func (p Pair) Do(ctx context.Context, label string, golden, candidate Call) (*Exchange, error) {
	x := &Exchange{Label: label, pair: p}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := p.Golden.Do(gctx, golden.Method, golden.Path, golden.Body)
		if err != nil {
			return fmt.Errorf("golden: %w", err)
		}
		x.Golden = resp
		return nil
	})
	g.Go(func() error {
		resp, err := p.Candidate.Do(gctx, candidate.Method, candidate.Path, candidate.Body)
		if err != nil {
			return fmt.Errorf("candidate: %w", err)
		}
		x.Candidate = resp
		return nil
	})
	if err := g.Wait(); err != nil {
		err = fmt.Errorf("%s: %w", label, err)
		p.rec.record(label, err, nil)
		return nil, err
	}
	return x, nil
}

// Shape compares two documents after normalizing both with rs and
// tolerating the differences rs allows.
func (p Pair) Shape(label string, golden, candidate value.Value, rs normalize.RuleSet) error {
	n := normalize.Pair(golden, candidate, rs)
	return p.check(label, compare.ModeShape, n.Golden, n.Candidate, rs.Options())
}

// Schema compares the structure of two documents.
func (p Pair) Schema(label string, golden, candidate value.Value) error {
	return p.check(label, compare.ModeSchema, golden, candidate, compare.Options{})
}

// Assert records a custom checkpoint. It fails with msg when ok is false.
func (p Pair) Assert(label string, ok bool, format string, a ...any) error {
	var err error
	if !ok {
		err = &CheckError{Label: label, Message: fmt.Sprintf(format, a...)}
	}
	p.rec.record(label, err, nil)
	return err
}

func (p Pair) check(label string, mode compare.Mode, golden, candidate value.Value, opts compare.Options) error {
	if !p.rec.withPatch() {
		err := compare.Check(mode, golden, candidate, "$", opts)
		if err != nil {
			err = fmt.Errorf("%s: %w", label, err)
		}
		p.rec.record(label, err, nil)
		return err
	}

	result := compare.Documents(golden, candidate, mode, compare.ReportOptions{
		Rules:       opts,
		WithPatch:   true,
		MaxPatchOps: maxPatchOps,
	})
	if result.Equal {
		p.rec.record(label, nil, nil)
		return nil
	}
	err := fmt.Errorf("%s: %w", label, result.Diff)
	p.rec.record(label, err, &result)
	return err
}

// Exchange is one request answered by both backends.
type Exchange struct {
	Label     string
	Golden    httpjson.Response
	Candidate httpjson.Response

	pair Pair
}

// SameStatus requires both backends to answer with the same status.
func (x *Exchange) SameStatus() error {
	var err error
	if x.Golden.Status != x.Candidate.Status {
		err = &StatusMismatchError{Label: x.Label, Golden: x.Golden.Status, Candidate: x.Candidate.Status}
	}
	x.pair.rec.record(x.Label+" status", err, nil)
	return err
}

// ExpectStatus requires both backends to answer with want.
func (x *Exchange) ExpectStatus(want int) error {
	var err error
	if x.Golden.Status != want || x.Candidate.Status != want {
		err = &StatusMismatchError{Label: x.Label, Golden: x.Golden.Status, Candidate: x.Candidate.Status, Want: want}
	}
	x.pair.rec.record(fmt.Sprintf("%s status %d", x.Label, want), err, nil)
	return err
}

// Status returns the status both sides agree on. Only meaningful after
// SameStatus succeeded.
func (x *Exchange) Status() int {
	return x.Golden.Status
}

// Shape compares the two bodies under rs.
func (x *Exchange) Shape(rs normalize.RuleSet) error {
	return x.pair.Shape(x.Label, x.Golden.JSON, x.Candidate.JSON, rs)
}

// Schema compares the structure of the two bodies.
func (x *Exchange) Schema() error {
	return x.pair.Schema(x.Label, x.Golden.JSON, x.Candidate.JSON)
}

// StatusAndShape is SameStatus followed by Shape.
func (x *Exchange) StatusAndShape(rs normalize.RuleSet) error {
	if err := x.SameStatus(); err != nil {
		return err
	}
	return x.Shape(rs)
}

// StatusAndSchema is SameStatus followed by Schema.
func (x *Exchange) StatusAndSchema() error {
	if err := x.SameStatus(); err != nil {
		return err
	}
	return x.Schema()
}
