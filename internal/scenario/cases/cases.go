// Package cases holds the scripted scenarios run against the fund valuation
// API. Each case talks to both backends through a scenario.Session.
package cases

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/fundval/contractdiff/internal/normalize"
	"github.com/fundval/contractdiff/internal/scenario"
	"github.com/fundval/contractdiff/value"
)

// strict compares bodies without any normalization.
var strict = normalize.RuleSet{}

// All returns every case in run order.
func All() []scenario.Case {
	return []scenario.Case{
		{Name: "health", Run: Health},
		{Name: "bootstrap", Run: Bootstrap},
		{Name: "auth", Run: Auth},
		{Name: "users", Run: Users},
		{Name: "accounts", Run: Accounts},
		{Name: "watchlists", Run: Watchlists},
		{Name: "sources", Run: Sources},
		{Name: "sources_accuracy", Run: SourcesAccuracy},
		{Name: "funds", Run: Funds},
		{Name: "nav_history", Run: NavHistory},
		{Name: "positions", Run: Positions},
		{Name: "positions_history", Run: PositionsHistory},
	}
}

// Names lists the case names in run order.
func Names() []string {
	names := []string{}
	for _, c := range All() {
		names = append(names, c.Name)
	}
	return names
}

// uniqueName returns prefix followed by a random suffix, so repeated runs
// against the same databases don't collide.
func uniqueName(prefix string) string {
	return prefix + "_" + uuid.NewString()[:8]
}

// findByID returns the element of the JSON array body whose id is id.
func findByID(body []byte, id string) (value.Value, bool, error) {
	r := gjson.GetBytes(body, fmt.Sprintf("#(id==%s)", strconv.Quote(id)))
	if !r.Exists() {
		return value.Value{}, false, nil
	}
	v, err := value.Parse([]byte(r.Raw))
	if err != nil {
		return value.Value{}, false, err
	}
	return v, true, nil
}

// number reads a JSON number, or a string holding one.
func number(r gjson.Result) (float64, bool) {
	switch r.Type {
	case gjson.Number:
		return r.Num, true
	case gjson.String:
		f, err := strconv.ParseFloat(r.Str, 64)
		return f, err == nil
	}
	return 0, false
}
