package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundval/contractdiff/internal/config"
	"github.com/fundval/contractdiff/internal/version"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	command := rootCmd()
	var out bytes.Buffer
	command.SetOut(&out)
	command.SetErr(&out)
	command.SetArgs(args)
	err := command.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCompareEqual(t *testing.T) {
	golden := writeFile(t, "golden.json", `{"status":"ok","items":[1,2]}`)
	candidate := writeFile(t, "candidate.json", `{"items":[1,2],"status":"ok"}`)

	out, err := execute(t, "compare", golden, candidate)
	require.NoError(t, err)
	assert.Contains(t, out, "### Do golden and candidate have the same shape?")
	assert.Contains(t, out, "Looking good! No differences found.")
}

func TestCompareDifferent(t *testing.T) {
	golden := writeFile(t, "golden.json", `{"status":"ok"}`)
	candidate := writeFile(t, "candidate.json", `{"status":"degraded"}`)

	out, err := execute(t, "compare", golden, candidate)
	assert.ErrorIs(t, err, errDifferences)
	assert.Contains(t, out, "- `$.status`")

	// Same kinds everywhere, so the schemas agree.
	out, err = execute(t, "compare", "--mode", "schema", golden, candidate)
	require.NoError(t, err)
	assert.Contains(t, out, "same schema?")
}

func TestCompareWithRules(t *testing.T) {
	golden := writeFile(t, "golden.json", `{"status":"ok","database":"sqlite"}`)
	candidate := writeFile(t, "candidate.json", `{"status":"ok","database":"postgres"}`)

	_, err := execute(t, "compare", golden, candidate)
	assert.ErrorIs(t, err, errDifferences)

	out, err := execute(t, "compare", "--rules", "health", golden, candidate)
	require.NoError(t, err)
	assert.Contains(t, out, "Looking good!")

	rules := writeFile(t, "rules.yaml", "rules:\n  - path: $.database\n    class: value\n")
	_, err = execute(t, "compare", "--rules", rules, golden, candidate)
	require.NoError(t, err)
}

func TestCompareJSON(t *testing.T) {
	golden := writeFile(t, "golden.json", `{"a":1}`)
	candidate := writeFile(t, "candidate.json", `{"a":"1"}`)

	out, err := execute(t, "compare", "--format", "json", golden, candidate)
	assert.ErrorIs(t, err, errDifferences)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "shape", report["mode"])
	assert.Equal(t, false, report["equal"])
	assert.NotEmpty(t, report["patch"])

	out, err = execute(t, "compare", "--format", "json", "--summary", golden, candidate)
	assert.ErrorIs(t, err, errDifferences)
	report = nil
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotContains(t, report, "patch")
}

func TestCompareErrors(t *testing.T) {
	valid := writeFile(t, "valid.json", `{}`)
	broken := writeFile(t, "broken.json", `{"a":`)

	_, err := execute(t, "compare", "--mode", "exact", valid, valid)
	assert.ErrorContains(t, err, `unknown compare mode "exact"`)

	_, err = execute(t, "compare", "--format", "yaml", valid, valid)
	assert.ErrorContains(t, err, `unknown format "yaml"`)

	_, err = execute(t, "compare", valid, broken)
	assert.ErrorContains(t, err, "candidate: ")

	_, err = execute(t, "compare", filepath.Join(t.TempDir(), "missing.json"), valid)
	assert.ErrorContains(t, err, "golden: ")

	_, err = execute(t, "compare", valid)
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	file := writeFile(t, "doc.json", `{"results":[{"id":1},{"id":"2"}],"count":2}`)

	out, err := execute(t, "stats", file)
	require.NoError(t, err)
	assert.Contains(t, out, "File: "+file)
	assert.Contains(t, out, `"maxArrayLength": 2`)
	assert.NotContains(t, out, "### All paths:")

	out, err = execute(t, "stats", "--details", file)
	require.NoError(t, err)
	assert.Contains(t, out, "### All paths:")
	assert.Contains(t, out, "$.results[*].id [number string]\n")
}

func TestRules(t *testing.T) {
	out, err := execute(t, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "health\t$.database=value\n")
	assert.Contains(t, out, "account\t")

	out, err = execute(t, "rules", "refresh")
	require.NoError(t, err)
	assert.Equal(t, "$.access_token=value\n", out)

	_, err = execute(t, "rules", "no-such-rules")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", out)
}

func healthBackend(t *testing.T, database string) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api/health/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "database": database})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunHealth(t *testing.T) {
	golden := healthBackend(t, "sqlite")
	candidate := healthBackend(t, "postgres")

	out, err := execute(t, "run", "--no-color", "--case", "health",
		"--golden", golden.URL, "--candidate", candidate.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "PASS health (")

	out, err = execute(t, "run", "--no-color", "--tree", "--case", "health",
		"--golden", golden.URL, "--candidate", candidate.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 0 skipped")
}

func TestRunUnknownCase(t *testing.T) {
	_, err := execute(t, "run", "--case", "nope")
	assert.ErrorContains(t, err, `unknown case "nope"`)
}

func TestBindFlags(t *testing.T) {
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.String("golden", "", "")
	v := config.New()

	bindFlags(v, flags, map[string]string{config.KeyGoldenBaseURL: "golden"})
	require.NoError(t, flags.Parse([]string{"--golden", "http://golden.test"}))
	assert.Equal(t, "http://golden.test", v.GetString(config.KeyGoldenBaseURL))

	assert.Panics(t, func() {
		bindFlags(v, flags, map[string]string{config.KeyCandidateBaseURL: "renamed"})
	})

	// Every run flag the config keys name exists.
	assert.NotPanics(t, func() { runCmd() })
}
