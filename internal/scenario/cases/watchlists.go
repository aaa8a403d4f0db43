package cases

import (
	"context"
	"fmt"

	"github.com/fundval/contractdiff/internal/normalize"
	"github.com/fundval/contractdiff/internal/scenario"
)

// missingFundCode is a fund code no backend knows.
const missingFundCode = "999999"

// Watchlists runs the lifecycle of a watchlist: create, list, retrieve,
// rename, the item error paths and delete.
func Watchlists(ctx context.Context, s *scenario.Session) error {
	if err := s.RequireInitialized(ctx); err != nil {
		return err
	}
	authed, _, err := s.Login(ctx)
	if err != nil {
		return err
	}

	name := uniqueName("wl")
	x, err := authed.Same(ctx, "watchlists.create", scenario.Post("/api/watchlists/", map[string]string{"name": name}))
	if err != nil {
		return err
	}
	if err := x.SameStatus(); err != nil {
		return err
	}
	if x.Status() != 201 {
		return x.Schema()
	}
	if err := x.Shape(normalize.Watchlist); err != nil {
		return err
	}
	wl := idsOf(x)

	each := func(format string) (scenario.Call, scenario.Call) {
		return scenario.Get(fmt.Sprintf(format, wl.golden)), scenario.Get(fmt.Sprintf(format, wl.candidate))
	}

	x, err = authed.Same(ctx, "watchlists.list", scenario.Get("/api/watchlists/"))
	if err != nil {
		return err
	}
	if err := x.StatusAndSchema(); err != nil {
		return err
	}
	golden, gok, err := findByID(x.Golden.Body, wl.golden)
	if err != nil {
		return err
	}
	candidate, cok, err := findByID(x.Candidate.Body, wl.candidate)
	if err != nil {
		return err
	}
	if err := authed.Assert("watchlists.list(created)", gok && cok,
		"created watchlist missing from list: golden=%t candidate=%t", gok, cok); err != nil {
		return err
	}
	if err := authed.Shape("watchlists.list(item)", golden, candidate, normalize.Watchlist); err != nil {
		return err
	}

	g, c := each("/api/watchlists/%s/")
	if x, err = authed.Do(ctx, "watchlists.retrieve", g, c); err != nil {
		return err
	}
	if err := x.StatusAndShape(normalize.Watchlist); err != nil {
		return err
	}

	rename := map[string]string{"name": name + "_new"}
	x, err = authed.Do(ctx, "watchlists.patch",
		scenario.Patch(g.Path, rename), scenario.Patch(c.Path, rename))
	if err != nil {
		return err
	}
	if err := x.StatusAndShape(normalize.Watchlist); err != nil {
		return err
	}

	missing := map[string]string{"fund_code": missingFundCode}
	x, err = authed.Do(ctx, "watchlists.items.add(missing)",
		scenario.Post(g.Path+"items/", missing), scenario.Post(c.Path+"items/", missing))
	if err != nil {
		return err
	}
	if err := x.StatusAndShape(strict); err != nil {
		return err
	}

	x, err = authed.Do(ctx, "watchlists.items.remove(missing)",
		scenario.Delete(g.Path+"items/"+missingFundCode+"/"), scenario.Delete(c.Path+"items/"+missingFundCode+"/"))
	if err != nil {
		return err
	}
	if err := x.StatusAndShape(strict); err != nil {
		return err
	}

	empty := map[string][]string{"fund_codes": {}}
	x, err = authed.Do(ctx, "watchlists.reorder(empty)",
		scenario.Put(g.Path+"reorder/", empty), scenario.Put(c.Path+"reorder/", empty))
	if err != nil {
		return err
	}
	if err := x.StatusAndShape(strict); err != nil {
		return err
	}

	x, err = authed.Do(ctx, "watchlists.delete", scenario.Delete(g.Path), scenario.Delete(c.Path))
	if err != nil {
		return err
	}
	if err := x.SameStatus(); err != nil {
		return err
	}
	return x.ExpectStatus(204)
}
