package cases

import (
	"context"
	"math"
	"slices"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/fundval/contractdiff/internal/scenario"
)

const (
	requiredSource = "eastmoney"

	// Values produced by the seeded estimate_accuracy rows.
	seededRecordCount = 2
	seededAvgError    = 0.0180665
	seededTolerance   = 1e-6
	sideTolerance     = 1e-9
)

// Sources compares the list of estimate sources by name.
func Sources(ctx context.Context, s *scenario.Session) error {
	x, err := s.Same(ctx, "sources", scenario.Get("/api/sources/"))
	if err != nil {
		return err
	}
	if err := x.SameStatus(); err != nil {
		return err
	}
	if err := x.ExpectStatus(200); err != nil {
		return err
	}

	golden, candidate := sourceNames(x.Golden.Body), sourceNames(x.Candidate.Body)
	if err := s.Assert("sources.names", slices.Equal(golden, candidate),
		"source lists differ: golden=%s candidate=%s",
		strings.Join(golden, ","), strings.Join(candidate, ",")); err != nil {
		return err
	}
	return s.Assert("sources.required", slices.Contains(candidate, requiredSource),
		"sources must include %s", requiredSource)
}

func sourceNames(body []byte) []string {
	names := []string{}
	for _, r := range gjson.GetBytes(body, "#.name").Array() {
		names = append(names, r.String())
	}
	slices.Sort(names)
	return names
}

// SourcesAccuracy compares the accuracy report of the required source. With
// seeded databases the aggregated values are checked too.
func SourcesAccuracy(ctx context.Context, s *scenario.Session) error {
	x, err := s.Same(ctx, "sources.accuracy", scenario.Get("/api/sources/"+requiredSource+"/accuracy/"))
	if err != nil {
		return err
	}
	if err := x.StatusAndSchema(); err != nil {
		return err
	}
	if !s.Config.EnableDBSeed {
		return nil
	}

	x, err = s.Same(ctx, "sources.accuracy(seeded)", scenario.Get("/api/sources/"+requiredSource+"/accuracy/?days=100"))
	if err != nil {
		return err
	}
	if err := x.ExpectStatus(200); err != nil {
		return err
	}

	gCount := gjson.GetBytes(x.Golden.Body, "record_count")
	cCount := gjson.GetBytes(x.Candidate.Body, "record_count")
	if err := s.Assert("sources.accuracy(seeded) record_count",
		gCount.Type == gjson.Number && cCount.Type == gjson.Number &&
			gCount.Int() == seededRecordCount && cCount.Int() == seededRecordCount,
		"expected %d records: golden=%s candidate=%s", seededRecordCount, gCount.Raw, cCount.Raw); err != nil {
		return err
	}

	gAvg, gok := number(gjson.GetBytes(x.Golden.Body, "avg_error_rate"))
	cAvg, cok := number(gjson.GetBytes(x.Candidate.Body, "avg_error_rate"))
	if err := s.Assert("sources.accuracy(seeded) avg_error_rate", gok && cok,
		"avg_error_rate is not a number"); err != nil {
		return err
	}
	if err := s.Assert("sources.accuracy(seeded) avg_error_rate",
		math.Abs(gAvg-seededAvgError) <= seededTolerance && math.Abs(cAvg-seededAvgError) <= seededTolerance,
		"expected %g: golden=%g candidate=%g", seededAvgError, gAvg, cAvg); err != nil {
		return err
	}
	return s.Assert("sources.accuracy(seeded) agreement", math.Abs(gAvg-cAvg) <= sideTolerance,
		"avg_error_rate differs: golden=%g candidate=%g", gAvg, cAvg)
}
