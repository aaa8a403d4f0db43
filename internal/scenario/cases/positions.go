package cases

import (
	"context"
	"net/url"

	"github.com/fundval/contractdiff/internal/scenario"
)

// missingID is a well-formed id no backend has issued.
const missingID = "00000000-0000-0000-0000-000000000000"

// Positions compares the position and operation endpoints around a freshly
// created child account, including their error paths.
func Positions(ctx context.Context, s *scenario.Session) error {
	if err := s.RequireInitialized(ctx); err != nil {
		return err
	}
	authed, _, err := s.Login(ctx)
	if err != nil {
		return err
	}
	_, child, err := createAccounts(ctx, authed, "positions", uniqueName("acct_pos"))
	if err != nil {
		return err
	}

	x, err := authed.Same(ctx, "positions.list", scenario.Get("/api/positions/"))
	if err != nil {
		return err
	}
	if err := expectSchema(x, 200); err != nil {
		return err
	}

	if x, err = authed.Do(ctx, "positions.list(account)",
		scenario.Get("/api/positions/?account="+url.QueryEscape(child.golden)),
		scenario.Get("/api/positions/?account="+url.QueryEscape(child.candidate))); err != nil {
		return err
	}
	if err := x.StatusAndSchema(); err != nil {
		return err
	}

	if x, err = authed.Same(ctx, "positions.operations.list", scenario.Get("/api/positions/operations/")); err != nil {
		return err
	}
	if err := expectSchema(x, 200); err != nil {
		return err
	}

	unknownFund := uniqueName("no_such")
	if x, err = authed.Do(ctx, "positions.operations.create(missing fund)",
		scenario.Post("/api/positions/operations/", buyOperation(child.golden, unknownFund, "2024-02-11", "10")),
		scenario.Post("/api/positions/operations/", buyOperation(child.candidate, unknownFund, "2024-02-11", "10"))); err != nil {
		return err
	}
	if err := x.StatusAndSchema(); err != nil {
		return err
	}

	for _, req := range []struct {
		label string
		call  scenario.Call
	}{
		{"positions.retrieve(missing)", scenario.Get("/api/positions/" + missingID + "/")},
		{"positions.operations.retrieve(missing)", scenario.Get("/api/positions/operations/" + missingID + "/")},
		{"positions.recalculate", scenario.Post("/api/positions/recalculate/", map[string]any{})},
	} {
		x, err := authed.Same(ctx, req.label, req.call)
		if err != nil {
			return err
		}
		if err := x.StatusAndSchema(); err != nil {
			return err
		}
	}
	return nil
}

func buyOperation(account, fundCode, date, nav string) map[string]any {
	return map[string]any{
		"account":        account,
		"fund_code":      fundCode,
		"operation_type": "BUY",
		"operation_date": date,
		"before_15":      true,
		"amount":         "1000",
		"share":          "100",
		"nav":            nav,
	}
}

// createAccounts creates a parent account and a child below it on both
// sides. Both creations must answer 201.
func createAccounts(ctx context.Context, p scenario.Pair, label, name string) (parent, child ids, err error) {
	x, err := p.Same(ctx, label+".accounts.create(parent)", scenario.Post("/api/accounts/", map[string]any{
		"name":       name,
		"parent":     nil,
		"is_default": false,
	}))
	if err != nil {
		return ids{}, ids{}, err
	}
	if err := x.SameStatus(); err != nil {
		return ids{}, ids{}, err
	}
	if err := x.ExpectStatus(201); err != nil {
		return ids{}, ids{}, err
	}
	parent = idsOf(x)

	childBody := func(parentID string) map[string]any {
		return map[string]any{"name": name + "_child", "parent": parentID, "is_default": false}
	}
	x, err = p.Do(ctx, label+".accounts.create(child)",
		scenario.Post("/api/accounts/", childBody(parent.golden)),
		scenario.Post("/api/accounts/", childBody(parent.candidate)))
	if err != nil {
		return ids{}, ids{}, err
	}
	if err := x.SameStatus(); err != nil {
		return ids{}, ids{}, err
	}
	if err := x.ExpectStatus(201); err != nil {
		return ids{}, ids{}, err
	}
	return parent, idsOf(x), nil
}
