// Package scenario runs scripted request sequences against a golden and a
// candidate backend and checks that their answers agree.
package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"
	"github.com/tidwall/gjson"

	"github.com/fundval/contractdiff/compare"
	"github.com/fundval/contractdiff/internal/config"
)

// maxPatchOps caps the raw differences kept for one failed checkpoint.
const maxPatchOps = 20

// Case is one named scenario.
type Case struct {
	Name string
	Run  func(ctx context.Context, s *Session) error
}

// Session is what a case gets to talk to both backends.
type Session struct {
	Pair
	Config config.Config

	// GoldenBackend and CandidateBackend hold the persisted backend
	// configs, when their paths are configured.
	GoldenBackend    config.Backend
	CandidateBackend config.Backend
}

// Checkpoint is the outcome of one comparison inside a case.
type Checkpoint struct {
	Label string
	Err   error
	// Result is set for failed comparisons when raw differences were
	// requested.
	Result *compare.Result
}

func (c Checkpoint) Passed() bool { return c.Err == nil }

type recorder struct {
	patch       bool
	checkpoints []Checkpoint
}

func (r *recorder) withPatch() bool {
	return r != nil && r.patch
}

func (r *recorder) record(label string, err error, result *compare.Result) {
	if r == nil {
		return
	}
	if err != nil {
		logging.V(5).Infof("checkpoint %s failed: %v", label, err)
	} else {
		logging.V(7).Infof("checkpoint %s passed", label)
	}
	r.checkpoints = append(r.checkpoints, Checkpoint{Label: label, Err: err, Result: result})
}

// Initialized reports the system_initialized flag of both backends.
func (s *Session) Initialized(ctx context.Context) (golden, candidate bool, err error) {
	x, err := s.Same(ctx, "health", Get("/api/health/"))
	if err != nil {
		return false, false, err
	}
	return gjson.GetBytes(x.Golden.Body, "system_initialized").Bool(),
		gjson.GetBytes(x.Candidate.Body, "system_initialized").Bool(), nil
}

// RequireInitialized skips the case unless both backends are initialized.
func (s *Session) RequireInitialized(ctx context.Context) error {
	golden, candidate, err := s.Initialized(ctx)
	if err != nil {
		return err
	}
	if !golden || !candidate {
		return Skip("requires initialized backends: golden=%t candidate=%t", golden, candidate)
	}
	return nil
}

// Login signs both sides in with the configured admin account and returns
// the authenticated pair with the login exchange.
func (s *Session) Login(ctx context.Context) (Pair, *Exchange, error) {
	x, err := s.Same(ctx, "login", Post("/api/auth/login", map[string]string{
		"username": s.Config.AdminUsername,
		"password": s.Config.AdminPassword,
	}))
	if err != nil {
		return Pair{}, nil, err
	}
	if err := x.SameStatus(); err != nil {
		return Pair{}, nil, err
	}
	if x.Status() != 200 {
		return Pair{}, x, Skip("login answered %d", x.Status())
	}
	golden, candidate := Token(x.Golden.Body), Token(x.Candidate.Body)
	if golden == "" || candidate == "" {
		return Pair{}, nil, fmt.Errorf("login: missing access_token: golden=%q candidate=%q", golden, candidate)
	}
	return s.WithTokens(golden, candidate), x, nil
}

// Token extracts access_token from a raw login or refresh body.
func Token(body []byte) string {
	return gjson.GetBytes(body, "access_token").String()
}

// runCase runs c and converts panics into failures.
func runCase(ctx context.Context, c Case, s *Session) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	started := time.Now()
	defer func() {
		logging.V(3).Infof("case %s finished in %s (err=%v)", c.Name, time.Since(started), err)
	}()
	return c.Run(ctx, s)
}
