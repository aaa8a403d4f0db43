package cases

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/fundval/contractdiff/internal/normalize"
	"github.com/fundval/contractdiff/internal/scenario"
	"github.com/fundval/contractdiff/value"
)

// ids holds the id of the same entity on each side.
type ids struct {
	golden, candidate string
}

func idsOf(x *scenario.Exchange) ids {
	return ids{
		golden:    gjson.GetBytes(x.Golden.Body, "id").String(),
		candidate: gjson.GetBytes(x.Candidate.Body, "id").String(),
	}
}

// Accounts creates a parent and a child account and checks how both show up
// in the list, the detail views and the positions endpoint.
func Accounts(ctx context.Context, s *scenario.Session) error {
	if err := s.RequireInitialized(ctx); err != nil {
		return err
	}
	authed, _, err := s.Login(ctx)
	if err != nil {
		return err
	}

	name := uniqueName("acct")
	x, err := authed.Same(ctx, "accounts.create(parent)", scenario.Post("/api/accounts/", map[string]any{
		"name":       name,
		"parent":     nil,
		"is_default": true,
	}))
	if err != nil {
		return err
	}
	if err := x.StatusAndShape(normalize.Account); err != nil {
		return err
	}
	parent := idsOf(x)

	childBody := func(parentID string) map[string]any {
		return map[string]any{"name": name + "_child", "parent": parentID, "is_default": false}
	}
	x, err = authed.Do(ctx, "accounts.create(child)",
		scenario.Post("/api/accounts/", childBody(parent.golden)),
		scenario.Post("/api/accounts/", childBody(parent.candidate)))
	if err != nil {
		return err
	}
	if err := x.StatusAndShape(normalize.Account); err != nil {
		return err
	}
	child := idsOf(x)

	x, err = authed.Same(ctx, "accounts.list", scenario.Get("/api/accounts/"))
	if err != nil {
		return err
	}
	if err := x.SameStatus(); err != nil {
		return err
	}
	goldenParent, goldenChild, err := parentAndChild(authed, "golden", x.Golden.Body, parent.golden, child.golden)
	if err != nil {
		return err
	}
	candidateParent, candidateChild, err := parentAndChild(authed, "candidate", x.Candidate.Body, parent.candidate, child.candidate)
	if err != nil {
		return err
	}
	if err := authed.Shape("accounts.list(parent)", goldenParent, candidateParent, normalize.Account); err != nil {
		return err
	}
	if err := authed.Shape("accounts.list(child)", goldenChild, candidateChild, normalize.Account); err != nil {
		return err
	}

	x, err = authed.Do(ctx, "accounts.positions",
		scenario.Get(fmt.Sprintf("/api/accounts/%s/positions/", parent.golden)),
		scenario.Get(fmt.Sprintf("/api/accounts/%s/positions/", parent.candidate)))
	if err != nil {
		return err
	}
	if err := x.StatusAndShape(strict); err != nil {
		return err
	}
	if err := authed.Assert("accounts.positions(array)",
		x.Golden.JSON.Kind() == value.Array && x.Candidate.JSON.Kind() == value.Array,
		"positions are not arrays: golden=%s candidate=%s", x.Golden.JSON.Kind(), x.Candidate.JSON.Kind()); err != nil {
		return err
	}

	x, err = authed.Do(ctx, "accounts.retrieve(parent)",
		scenario.Get(fmt.Sprintf("/api/accounts/%s/", parent.golden)),
		scenario.Get(fmt.Sprintf("/api/accounts/%s/", parent.candidate)))
	if err != nil {
		return err
	}
	if err := x.SameStatus(); err != nil {
		return err
	}
	if err := authed.Assert("accounts.retrieve(parent) children",
		gjson.GetBytes(x.Golden.Body, "children").IsArray() && gjson.GetBytes(x.Candidate.Body, "children").IsArray(),
		"children is not an array"); err != nil {
		return err
	}
	if err := x.Shape(normalize.Account); err != nil {
		return err
	}

	x, err = authed.Do(ctx, "accounts.retrieve(child)",
		scenario.Get(fmt.Sprintf("/api/accounts/%s/", child.golden)),
		scenario.Get(fmt.Sprintf("/api/accounts/%s/", child.candidate)))
	if err != nil {
		return err
	}
	if err := x.SameStatus(); err != nil {
		return err
	}
	if err := authed.Assert("accounts.retrieve(child) children",
		!x.Golden.JSON.Has("children") && !x.Candidate.JSON.Has("children"),
		"a child account must not carry a children field"); err != nil {
		return err
	}
	return x.Shape(normalize.Account)
}

// parentAndChild locates both accounts in one side's list and checks how
// they are nested.
func parentAndChild(p scenario.Pair, side string, list []byte, parentID, childID string) (value.Value, value.Value, error) {
	label := "accounts.list(" + side + ")"
	if err := p.Assert(label, gjson.ParseBytes(list).IsArray(), "response is not an array"); err != nil {
		return value.Value{}, value.Value{}, err
	}

	parent, ok, err := findByID(list, parentID)
	if err != nil {
		return value.Value{}, value.Value{}, err
	}
	if err := p.Assert(label, ok, "parent account %s missing", parentID); err != nil {
		return value.Value{}, value.Value{}, err
	}
	child, ok, err := findByID(list, childID)
	if err != nil {
		return value.Value{}, value.Value{}, err
	}
	if err := p.Assert(label, ok, "child account %s missing", childID); err != nil {
		return value.Value{}, value.Value{}, err
	}

	children, _ := parent.Get("children")
	if err := p.Assert(label, children.Kind() == value.Array, "parent account has no children array"); err != nil {
		return value.Value{}, value.Value{}, err
	}
	nested := false
	for _, c := range children.Items() {
		if id, _ := c.Get("id"); id.Equal(value.StringValue(childID)) {
			nested = true
			break
		}
	}
	if err := p.Assert(label, nested, "parent children do not include %s", childID); err != nil {
		return value.Value{}, value.Value{}, err
	}
	if err := p.Assert(label, !child.Has("children"), "a child account must not carry a children field"); err != nil {
		return value.Value{}, value.Value{}, err
	}
	return parent, child, nil
}
