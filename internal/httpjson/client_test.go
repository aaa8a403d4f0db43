package httpjson

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundval/contractdiff/value"
)

const golden = "http://golden.test"

func TestGetDecodesJSON(t *testing.T) {
	defer gock.Off()

	gock.New(golden).
		Get("/api/health/").
		MatchHeader("Accept", "application/json").
		Reply(200).
		JSON(map[string]any{"status": "ok", "system_initialized": false})

	resp, err := New(golden+"/", 0).Get(context.Background(), "/api/health/")
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, value.Object, resp.JSON.Kind())
	initialized, ok := resp.JSON.Get("system_initialized")
	require.True(t, ok)
	b, _ := initialized.Bool()
	assert.False(t, b)
	assert.True(t, gock.IsDone())
}

func TestPostSendsJSONBody(t *testing.T) {
	defer gock.Off()

	gock.New(golden).
		Post("/api/auth/login").
		MatchType("json").
		JSON(map[string]string{"username": "admin", "password": "admin123"}).
		Reply(401).
		JSON(map[string]string{"error": "bad credentials"})

	resp, err := New(golden, 0).Post(context.Background(), "/api/auth/login",
		map[string]string{"username": "admin", "password": "admin123"})
	require.NoError(t, err)
	assert.Equal(t, 401, resp.Status)
	assert.Equal(t, `{"error":"bad credentials"}`, resp.JSON.String())
	assert.True(t, gock.IsDone())
}

func TestWithTokenSendsBearer(t *testing.T) {
	defer gock.Off()

	gock.New(golden).
		Get("/api/auth/me").
		MatchHeader("Authorization", "^Bearer tok-123$").
		Reply(200).
		JSON(map[string]string{"username": "admin"})

	base := New(golden, 0)
	authed := base.WithToken("tok-123")
	resp, err := authed.Get(context.Background(), "/api/auth/me")
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Empty(t, base.token)
	assert.Equal(t, golden, authed.BaseURL())
}

func TestVerbs(t *testing.T) {
	defer gock.Off()

	gock.New(golden).Patch("/api/watchlists/1/").Reply(200).JSON(map[string]string{"name": "n"})
	gock.New(golden).Put("/api/watchlists/1/reorder/").Reply(400).JSON(map[string]string{"error": "empty"})
	gock.New(golden).Delete("/api/watchlists/1/").Reply(204)

	c := New(golden, 0)
	ctx := context.Background()

	resp, err := c.Patch(ctx, "/api/watchlists/1/", map[string]string{"name": "n"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)

	resp, err = c.Put(ctx, "/api/watchlists/1/reorder/", map[string][]string{"fund_codes": {}})
	require.NoError(t, err)
	assert.Equal(t, 400, resp.Status)

	resp, err = c.Delete(ctx, "/api/watchlists/1/")
	require.NoError(t, err)
	assert.Equal(t, 204, resp.Status)
	assert.True(t, resp.JSON.IsNull())
	assert.True(t, gock.IsDone())
}

func TestNonJSONBody(t *testing.T) {
	defer gock.Off()

	body := "<html>" + strings.Repeat("x", 500) + "</html>"
	gock.New(golden).Get("/broken").Reply(502).BodyString(body)

	_, err := New(golden, 0).Get(context.Background(), "/broken")
	require.Error(t, err)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, 502, decodeErr.Status)
	assert.Len(t, decodeErr.Snippet, 200)
	assert.True(t, strings.HasPrefix(err.Error(), "non-JSON response: GET http://golden.test/broken status=502 body=<html>xxx"))
	assert.ErrorIs(t, err, value.ErrInvalidJSON)
}

func TestTransportError(t *testing.T) {
	defer gock.Off()

	gock.New(golden).Get("/down").ReplyError(errors.New("connection refused"))

	_, err := New(golden, 0).Get(context.Background(), "/down")
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "GET", reqErr.Method)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSnippetKeepsRunes(t *testing.T) {
	t.Parallel()

	body := []byte(strings.Repeat("a", 199) + "密钥")
	got := snippet(body)
	assert.Equal(t, strings.Repeat("a", 199), got)
	assert.Equal(t, "short", snippet([]byte("short")))
}
