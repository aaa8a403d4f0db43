package cases

import (
	"context"
	"fmt"

	"github.com/fundval/contractdiff/internal/normalize"
	"github.com/fundval/contractdiff/internal/scenario"
)

// Health compares /api/health/. The backends may run different databases,
// but both must name theirs.
func Health(ctx context.Context, s *scenario.Session) error {
	x, err := s.Same(ctx, "health", scenario.Get("/api/health/"))
	if err != nil {
		return err
	}
	if err := x.StatusAndShape(normalize.Health); err != nil {
		return err
	}
	db, _ := x.Candidate.JSON.Get("database")
	_, isString := db.Str()
	return s.Assert("health.database", isString, "candidate database is not a string: %s", db.Literal())
}

// Bootstrap exercises the bootstrap endpoints with a wrong key. It needs two
// uninitialized backends.
func Bootstrap(ctx context.Context, s *scenario.Session) error {
	golden, candidate, err := s.Initialized(ctx)
	if err != nil {
		return err
	}
	switch {
	case golden && candidate:
		return scenario.Skip("both backends are already initialized")
	case golden || candidate:
		return fmt.Errorf("bootstrap: requires uninitialized backends: golden=%t candidate=%t; reset their config and volumes",
			golden, candidate)
	}

	const wrongKey = "WRONG_KEY_FOR_TEST"

	x, err := s.Same(ctx, "bootstrap.verify", scenario.Post("/api/admin/bootstrap/verify",
		map[string]string{"bootstrap_key": wrongKey}))
	if err != nil {
		return err
	}
	if err := x.StatusAndShape(strict); err != nil {
		return err
	}

	// The real keys are only known when the backend config files are.
	if gk, ck := s.GoldenBackend.BootstrapKey, s.CandidateBackend.BootstrapKey; gk != "" && ck != "" {
		x, err := s.Do(ctx, "bootstrap.verify(valid)",
			scenario.Post("/api/admin/bootstrap/verify", map[string]string{"bootstrap_key": gk}),
			scenario.Post("/api/admin/bootstrap/verify", map[string]string{"bootstrap_key": ck}))
		if err != nil {
			return err
		}
		if err := x.StatusAndShape(strict); err != nil {
			return err
		}
	}

	x, err = s.Same(ctx, "bootstrap.initialize", scenario.Post("/api/admin/bootstrap/initialize", map[string]any{
		"bootstrap_key":  wrongKey,
		"admin_username": s.Config.AdminUsername,
		"admin_password": s.Config.AdminPassword,
		"allow_register": false,
	}))
	if err != nil {
		return err
	}
	return x.StatusAndShape(strict)
}
