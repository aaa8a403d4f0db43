package cases

import (
	"context"
	"net/url"
	"slices"

	"github.com/tidwall/gjson"

	"github.com/fundval/contractdiff/internal/scenario"
)

const (
	seedFundCode = "000001"
	seedNavDate  = "2026-02-11"
)

// Funds compares the fund catalogue and its error paths. It needs database
// backed backends; the success paths of accuracy and query_nav also need the
// seeded rows.
func Funds(ctx context.Context, s *scenario.Session) error {
	if !s.Config.EnableDBCases {
		return scenario.Skip("database cases are disabled")
	}

	x, err := s.Same(ctx, "funds.list", scenario.Get("/api/funds/?page=1&page_size=5"))
	if err != nil {
		return err
	}
	if err := expectSchema(x, 200); err != nil {
		return err
	}

	code := gjson.GetBytes(x.Candidate.Body, "results.0.fund_code").String()
	if code == "" {
		return nil
	}
	fund := "/api/funds/" + url.PathEscape(code) + "/"
	missing := "/api/funds/" + missingFundCode + "/"

	if x, err = s.Same(ctx, "funds.retrieve", scenario.Get(fund)); err != nil {
		return err
	}
	if err := expectSchema(x, 200); err != nil {
		return err
	}

	for _, req := range []struct {
		label string
		call  scenario.Call
	}{
		{"funds.estimate(missing)", scenario.Get(missing + "estimate/")},
		{"funds.accuracy(missing)", scenario.Get(missing + "accuracy/")},
		{"funds.batch_estimate(empty)", scenario.Post("/api/funds/batch_estimate/", map[string]any{})},
		{"funds.batch_estimate(missing)", scenario.Post("/api/funds/batch_estimate/",
			map[string][]string{"fund_codes": {missingFundCode}})},
		{"funds.batch_update_nav(empty)", scenario.Post("/api/funds/batch_update_nav/", map[string]any{})},
		{"funds.batch_update_nav(missing)", scenario.Post("/api/funds/batch_update_nav/",
			map[string][]string{"fund_codes": {missingFundCode}})},
		{"funds.query_nav(missing)", scenario.Post("/api/funds/query_nav/", queryNav(missingFundCode, "2024-01-15"))},
	} {
		x, err := s.Same(ctx, req.label, req.call)
		if err != nil {
			return err
		}
		if err := x.StatusAndSchema(); err != nil {
			return err
		}
	}

	if !s.Config.EnableDBSeed {
		return nil
	}

	if x, err = s.Same(ctx, "funds.accuracy(seeded)", scenario.Get(fund+"accuracy/?days=100")); err != nil {
		return err
	}
	if err := expectSchema(x, 200); err != nil {
		return err
	}
	sources := x.Golden.JSON.Keys()
	if err := s.Assert("funds.accuracy(seeded) sources",
		len(sources) >= 2 && slices.Contains(sources, requiredSource),
		"expected at least two sources including %s, got %v", requiredSource, sources); err != nil {
		return err
	}

	if x, err = s.Same(ctx, "funds.query_nav(seeded)",
		scenario.Post("/api/funds/query_nav/", queryNav(seedFundCode, "2026-02-12"))); err != nil {
		return err
	}
	if err := expectSchema(x, 200); err != nil {
		return err
	}
	navDate := gjson.GetBytes(x.Golden.Body, "nav_date").String()
	return s.Assert("funds.query_nav(seeded) nav_date", navDate == seedNavDate,
		"expected nav_date %s, got %q", seedNavDate, navDate)
}

func queryNav(code, date string) map[string]any {
	return map[string]any{"fund_code": code, "operation_date": date, "before_15": true}
}

// expectSchema requires status want on both sides and equal schemas.
func expectSchema(x *scenario.Exchange, want int) error {
	if err := x.SameStatus(); err != nil {
		return err
	}
	if err := x.ExpectStatus(want); err != nil {
		return err
	}
	return x.Schema()
}
