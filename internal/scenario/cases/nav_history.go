package cases

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/fundval/contractdiff/internal/scenario"
)

const (
	seedNavStart = "2026-03-10"
	seedNavEnd   = "2026-03-11"

	// syncAnonymousLimit is the largest sync request accepted without an
	// admin account.
	syncAnonymousLimit = 15
	invalidToken       = "invalid-token-for-contract-tests"
)

// NavHistory compares the fund NAV history endpoints. The unfiltered list
// and the error paths need no data; the filtered list and batch query of
// the seeded fund run only against database backed backends.
func NavHistory(ctx context.Context, s *scenario.Session) error {
	x, err := s.Same(ctx, "nav_history.list", scenario.Get("/api/nav-history/"))
	if err != nil {
		return err
	}
	if err := x.StatusAndSchema(); err != nil {
		return err
	}

	if s.Config.EnableDBCases {
		if err := seededNavHistory(ctx, s); err != nil {
			return err
		}
	}

	tooMany := make([]string, syncAnonymousLimit+1)
	for i := range tooMany {
		tooMany[i] = strconv.Itoa(100000 + i)
	}

	for _, req := range []struct {
		label string
		pair  scenario.Pair
		call  scenario.Call
	}{
		{"nav_history.retrieve(missing)", s.Pair, scenario.Get("/api/nav-history/" + missingID + "/")},
		{"nav_history.batch_query(empty)", s.Pair, scenario.Post("/api/nav-history/batch_query/", map[string]any{})},
		{"nav_history.batch_query(missing fund)", s.Pair, scenario.Post("/api/nav-history/batch_query/",
			map[string][]string{"fund_codes": {missingFundCode}})},
		{"nav_history.sync(empty)", s.Pair, scenario.Post("/api/nav-history/sync/", map[string]any{})},
		{"nav_history.sync(anonymous over limit)", s.Pair, scenario.Post("/api/nav-history/sync/",
			map[string][]string{"fund_codes": tooMany})},
		// An invalid token is rejected by authentication before the limit applies.
		{"nav_history.sync(invalid token)", s.WithTokens(invalidToken, invalidToken),
			scenario.Post("/api/nav-history/sync/", map[string][]string{"fund_codes": tooMany})},
	} {
		x, err := req.pair.Same(ctx, req.label, req.call)
		if err != nil {
			return err
		}
		if err := x.StatusAndSchema(); err != nil {
			return err
		}
	}
	return nil
}

func seededNavHistory(ctx context.Context, s *scenario.Session) error {
	list := fmt.Sprintf("/api/nav-history/?fund_code=%s&start_date=%s&end_date=%s",
		url.QueryEscape(seedFundCode), url.QueryEscape(seedNavStart), url.QueryEscape(seedNavEnd))
	x, err := s.Same(ctx, "nav_history.list(seeded)", scenario.Get(list))
	if err != nil {
		return err
	}
	if err := x.SameStatus(); err != nil {
		return err
	}
	if err := x.ExpectStatus(200); err != nil {
		return err
	}
	rows := gjson.ParseBytes(x.Golden.Body)
	if err := s.Assert("nav_history.list(seeded) rows", rows.IsArray() && len(rows.Array()) > 0,
		"expected seeded rows for %s, got %s", seedFundCode, x.Golden.JSON.Literal()); err != nil {
		return err
	}
	if err := x.Schema(); err != nil {
		return err
	}

	if x, err = s.Same(ctx, "nav_history.batch_query(seeded)", scenario.Post("/api/nav-history/batch_query/", map[string]any{
		"fund_codes": []string{seedFundCode},
		"start_date": seedNavStart,
		"end_date":   seedNavEnd,
	})); err != nil {
		return err
	}
	if err := x.SameStatus(); err != nil {
		return err
	}
	if err := x.ExpectStatus(200); err != nil {
		return err
	}
	rows = gjson.GetBytes(x.Golden.Body, seedFundCode)
	if err := s.Assert("nav_history.batch_query(seeded) rows", rows.IsArray() && len(rows.Array()) > 0,
		"expected seeded rows for %s", seedFundCode); err != nil {
		return err
	}
	return x.Schema()
}
