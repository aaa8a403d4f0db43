package normalize

import (
	"maps"
	"slices"
)

// Built-in rule sets for the entities the scenario suite exercises.
var (
	// Account covers account payloads, including nested child accounts.
	Account = MustRuleSet([]RuleSpec{
		{Path: "$.id", Class: ClassUUID},
		{Path: "$.parent", Class: ClassUUID},
		{Path: "$.created_at", Class: ClassTimestamp},
		{Path: "$.updated_at", Class: ClassTimestamp},
	}, "children")

	// WatchlistItem covers one fund entry of a watchlist.
	WatchlistItem = MustRuleSet([]RuleSpec{
		{Path: "$.id", Class: ClassUUID},
		{Path: "$.fund", Class: ClassUUID},
		{Path: "$.created_at", Class: ClassTimestamp},
	})

	// Watchlist covers a watchlist and its items.
	Watchlist = MustRuleSet([]RuleSpec{
		{Path: "$.id", Class: ClassUUID},
		{Path: "$.created_at", Class: ClassTimestamp},
		{Path: "$.items[*].id", Class: ClassUUID},
		{Path: "$.items[*].fund", Class: ClassUUID},
		{Path: "$.items[*].created_at", Class: ClassTimestamp},
	})

	// Login covers login and register responses.
	Login = MustRuleSet([]RuleSpec{
		{Path: "$.access_token", Class: ClassValue},
		{Path: "$.refresh_token", Class: ClassValue},
		{Path: "$.user.id", Class: ClassValue},
	})

	// Refresh covers token refresh responses.
	Refresh = MustRuleSet([]RuleSpec{
		{Path: "$.access_token", Class: ClassValue},
	})

	// CurrentUser covers the authenticated user profile.
	CurrentUser = MustRuleSet([]RuleSpec{
		{Path: "$.id", Class: ClassValue},
		{Path: "$.created_at", Class: ClassValue},
	})

	// Health lets the backends report different database engines.
	Health = MustRuleSet([]RuleSpec{
		{Path: "$.database", Class: ClassValue},
	})
)

var builtins = map[string]RuleSet{
	"account":        Account,
	"watchlist":      Watchlist,
	"watchlist-item": WatchlistItem,
	"login":          Login,
	"refresh":        Refresh,
	"current-user":   CurrentUser,
	"health":         Health,
}

// Builtin returns a built-in rule set by name.
func Builtin(name string) (RuleSet, bool) {
	rs, ok := builtins[name]
	return rs, ok
}

// BuiltinNames lists the built-in rule sets in sorted order.
func BuiltinNames() []string {
	return slices.Sorted(maps.Keys(builtins))
}
