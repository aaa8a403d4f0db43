package cases

import (
	"context"
	"net/url"
	"time"

	"github.com/fundval/contractdiff/internal/scenario"
)

// PositionsHistory compares the daily position history of an account: the
// argument errors, the parent account refusal and a child account after
// one operation.
func PositionsHistory(ctx context.Context, s *scenario.Session) error {
	if err := s.RequireInitialized(ctx); err != nil {
		return err
	}
	authed, _, err := s.Login(ctx)
	if err != nil {
		return err
	}
	parent, child, err := createAccounts(ctx, authed, "positions_history", uniqueName("acct_hist"))
	if err != nil {
		return err
	}

	history := func(id string) scenario.Call {
		return scenario.Get("/api/positions/history/?account_id=" + url.QueryEscape(id) + "&days=7")
	}

	x, err := authed.Same(ctx, "positions_history(missing account_id)", scenario.Get("/api/positions/history/"))
	if err != nil {
		return err
	}
	if err := x.StatusAndSchema(); err != nil {
		return err
	}

	if x, err = authed.Do(ctx, "positions_history(parent)", history(parent.golden), history(parent.candidate)); err != nil {
		return err
	}
	if err := x.StatusAndSchema(); err != nil {
		return err
	}

	// Without the seeded fund the operation is refused on both sides; only
	// the status has to agree.
	today := time.Now().Format(time.DateOnly)
	if x, err = authed.Do(ctx, "positions_history.operations.create",
		scenario.Post("/api/positions/operations/", buyOperation(child.golden, seedFundCode, today, "1.0000")),
		scenario.Post("/api/positions/operations/", buyOperation(child.candidate, seedFundCode, today, "1.0000"))); err != nil {
		return err
	}
	if err := x.SameStatus(); err != nil {
		return err
	}

	if x, err = authed.Do(ctx, "positions_history(child)", history(child.golden), history(child.candidate)); err != nil {
		return err
	}
	return x.StatusAndSchema()
}
