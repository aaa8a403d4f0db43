package scenario

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/goleak"

	"github.com/fundval/contractdiff/internal/config"
	"github.com/fundval/contractdiff/internal/httpjson"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("github.com/golang/glog.(*fileSink).flushDaemon"),
	)
}

// backend starts a fake API serving the routes registered by setup.
func backend(t *testing.T, setup func(r chi.Router)) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	setup(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func reply(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	}
}

func testConfig(golden, candidate *httptest.Server) config.Config {
	return config.Config{
		GoldenBaseURL:    golden.URL,
		CandidateBaseURL: candidate.URL,
		AdminUsername:    "admin",
		AdminPassword:    "admin123",
		Timeout:          httpjson.DefaultTimeout,
	}
}

func recordingPair(golden, candidate *httptest.Server) (Pair, *recorder) {
	rec := &recorder{}
	return Pair{
		Golden:    httpjson.New(golden.URL, 0),
		Candidate: httpjson.New(candidate.URL, 0),
		rec:       rec,
	}, rec
}
