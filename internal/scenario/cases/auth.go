package cases

import (
	"context"
	"errors"

	"github.com/tidwall/gjson"

	"github.com/fundval/contractdiff/internal/normalize"
	"github.com/fundval/contractdiff/internal/scenario"
)

const registerPassword = "password123"

// Auth walks login, token refresh and the current user profile.
func Auth(ctx context.Context, s *scenario.Session) error {
	if err := s.RequireInitialized(ctx); err != nil {
		return err
	}

	authed, login, err := s.Login(ctx)
	if err != nil {
		return err
	}
	if err := login.Shape(normalize.Login); err != nil {
		return err
	}

	x, err := s.Do(ctx, "auth.refresh",
		scenario.Post("/api/auth/refresh", map[string]string{
			"refresh_token": gjson.GetBytes(login.Golden.Body, "refresh_token").String(),
		}),
		scenario.Post("/api/auth/refresh", map[string]string{
			"refresh_token": gjson.GetBytes(login.Candidate.Body, "refresh_token").String(),
		}))
	if err != nil {
		return err
	}
	if err := x.StatusAndShape(normalize.Refresh); err != nil {
		return err
	}

	x, err = authed.Same(ctx, "auth.me", scenario.Get("/api/auth/me"))
	if err != nil {
		return err
	}
	return x.StatusAndShape(normalize.CurrentUser)
}

// Users covers the admin summary and self registration, including the
// duplicate username error.
func Users(ctx context.Context, s *scenario.Session) error {
	if err := s.RequireInitialized(ctx); err != nil {
		return err
	}

	authed, _, err := s.Login(ctx)
	switch {
	case err == nil:
		x, err := authed.Same(ctx, "users.me.summary", scenario.Get("/api/users/me/summary/"))
		if err != nil {
			return err
		}
		if err := x.StatusAndShape(strict); err != nil {
			return err
		}
	case !errors.Is(err, scenario.ErrSkipped):
		return err
	}

	register := scenario.Post("/api/users/register/", map[string]string{
		"username":         uniqueName("newuser"),
		"password":         registerPassword,
		"password_confirm": registerPassword,
	})

	x, err := s.Same(ctx, "users.register", register)
	if err != nil {
		return err
	}
	if err := x.SameStatus(); err != nil {
		return err
	}
	if x.Status() != 201 {
		// Registration is closed (403) or rejected (400): only the error
		// bodies can be compared.
		return x.Shape(strict)
	}
	if err := x.Shape(normalize.Login); err != nil {
		return err
	}

	x, err = s.Same(ctx, "users.register(duplicate)", register)
	if err != nil {
		return err
	}
	return x.StatusAndShape(strict)
}
