package cases

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// fakeOptions tunes a fake backend. The zero value is an initialized
// backend that behaves like the reference implementation.
type fakeOptions struct {
	uninitialized  bool
	database       string
	bootstrapKey   string
	sources        []string
	childChildren  bool
	deleteStatus   int
	registerClosed bool
	recordCount    any
	avgErrorRate   any
	funds          []map[string]any
	// navRows are the NAV history rows of the seeded fund.
	navRows []map[string]any
	// historyExtra adds rows to every child account history.
	historyExtra int
	// syncOpen lets anonymous callers sync any number of funds.
	syncOpen bool
}

type account struct {
	ID        string
	Name      string
	Parent    *string
	IsDefault bool
	CreatedAt string
	UpdatedAt string
}

type watchlist struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Items     []any  `json:"items"`
	CreatedAt string `json:"created_at"`
}

type fakeAPI struct {
	opts fakeOptions

	mu         sync.Mutex
	tokens     map[string]bool
	users      map[string]bool
	accounts   []*account
	watchlists map[string]*watchlist
}

func newFakeAPI(t *testing.T, opts fakeOptions) *httptest.Server {
	t.Helper()
	if opts.database == "" {
		opts.database = "sqlite"
	}
	if opts.sources == nil {
		opts.sources = []string{"eastmoney", "sina"}
	}
	if opts.deleteStatus == 0 {
		opts.deleteStatus = http.StatusNoContent
	}
	api := &fakeAPI{
		opts:       opts,
		tokens:     map[string]bool{},
		users:      map[string]bool{},
		watchlists: map[string]*watchlist{},
	}
	srv := httptest.NewServer(api.routes())
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func readJSON(r *http.Request) map[string]any {
	body := map[string]any{}
	_ = json.NewDecoder(r.Body).Decode(&body)
	return body
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (f *fakeAPI) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/health/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]any{
			"status":             "ok",
			"database":           f.opts.database,
			"system_initialized": !f.opts.uninitialized,
		})
	})

	r.Post("/api/admin/bootstrap/verify", func(w http.ResponseWriter, r *http.Request) {
		key, _ := readJSON(r)["bootstrap_key"].(string)
		if f.opts.bootstrapKey != "" && key == f.opts.bootstrapKey {
			writeJSON(w, 200, map[string]any{"valid": true, "message": "密钥验证成功"})
			return
		}
		writeJSON(w, 400, map[string]any{"valid": false, "error": "密钥无效"})
	})
	r.Post("/api/admin/bootstrap/initialize", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 400, map[string]any{"error": "密钥无效"})
	})

	r.Post("/api/auth/login", f.login)
	r.Post("/api/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]any{"access_token": f.issue()})
	})
	r.Post("/api/users/register/", f.register)

	r.Group(func(r chi.Router) {
		r.Use(f.authenticated)
		r.Get("/api/auth/me", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, 200, map[string]any{
				"id": uuid.NewString(), "username": "admin", "role": "admin", "created_at": now(),
			})
		})
		r.Get("/api/users/me/summary/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, 200, map[string]any{"account_count": 0, "watchlist_count": 0})
		})
		r.Route("/api/accounts", f.accountRoutes)
		r.Route("/api/watchlists", f.watchlistRoutes)
		r.Route("/api/positions", f.positionRoutes)
	})
	r.Route("/api/nav-history", f.navHistoryRoutes)

	r.Get("/api/sources/", func(w http.ResponseWriter, _ *http.Request) {
		out := []map[string]string{}
		for _, name := range f.opts.sources {
			out = append(out, map[string]string{"name": name})
		}
		writeJSON(w, 200, out)
	})
	r.Get("/api/sources/{name}/accuracy/", func(w http.ResponseWriter, r *http.Request) {
		count, avg := any(0), any(nil)
		if r.URL.Query().Get("days") != "" {
			count, avg = f.opts.recordCount, f.opts.avgErrorRate
		}
		writeJSON(w, 200, map[string]any{
			"source": chi.URLParam(r, "name"), "record_count": count, "avg_error_rate": avg,
		})
	})

	r.Get("/api/funds/", func(w http.ResponseWriter, _ *http.Request) {
		funds := f.opts.funds
		if funds == nil {
			funds = []map[string]any{}
		}
		writeJSON(w, 200, map[string]any{"count": len(funds), "results": funds})
	})
	r.Get("/api/funds/{code}/", func(w http.ResponseWriter, r *http.Request) {
		for _, fund := range f.opts.funds {
			if fund["fund_code"] == chi.URLParam(r, "code") {
				writeJSON(w, 200, fund)
				return
			}
		}
		writeJSON(w, 404, map[string]string{"detail": "Not found."})
	})
	r.Get("/api/funds/{code}/estimate/", notFound)
	r.Get("/api/funds/{code}/accuracy/", notFound)
	r.Post("/api/funds/query_nav/", notFound)
	r.Post("/api/funds/batch_estimate/", func(w http.ResponseWriter, r *http.Request) {
		codes, ok := readJSON(r)["fund_codes"].([]any)
		if !ok {
			writeJSON(w, 400, map[string]string{"error": "缺少 fund_codes 参数"})
			return
		}
		out := map[string]any{}
		for _, c := range codes {
			out[c.(string)] = map[string]string{"error": "基金不存在"}
		}
		writeJSON(w, 200, out)
	})
	r.Post("/api/funds/batch_update_nav/", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := readJSON(r)["fund_codes"]; !ok {
			writeJSON(w, 400, map[string]string{"error": "缺少 fund_codes 参数"})
			return
		}
		writeJSON(w, 200, map[string]any{})
	})
	return r
}

func (f *fakeAPI) issue() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := uuid.NewString()
	f.tokens[token] = true
	return token
}

func (f *fakeAPI) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		ok := f.tokens[token]
		f.mu.Unlock()
		if !ok {
			writeJSON(w, 401, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeAPI) session(username string) map[string]any {
	return map[string]any{
		"access_token":  f.issue(),
		"refresh_token": f.issue(),
		"user":          map[string]any{"id": uuid.NewString(), "username": username, "role": "user"},
	}
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	body := readJSON(r)
	if body["username"] != "admin" || body["password"] != "admin123" {
		writeJSON(w, 401, map[string]string{"error": "用户名或密码错误"})
		return
	}
	writeJSON(w, 200, f.session("admin"))
}

func (f *fakeAPI) register(w http.ResponseWriter, r *http.Request) {
	if f.opts.registerClosed {
		writeJSON(w, 403, map[string]string{"error": "注册未开放"})
		return
	}
	username, _ := readJSON(r)["username"].(string)
	f.mu.Lock()
	exists := f.users[username]
	f.users[username] = true
	f.mu.Unlock()
	if exists {
		writeJSON(w, 400, map[string][]string{"username": {"用户名已存在"}})
		return
	}
	writeJSON(w, 201, f.session(username))
}

func (f *fakeAPI) render(a *account, withChildren bool) map[string]any {
	out := map[string]any{
		"id": a.ID, "name": a.Name, "parent": a.Parent, "is_default": a.IsDefault,
		"created_at": a.CreatedAt, "updated_at": a.UpdatedAt,
	}
	if a.Parent != nil && !f.opts.childChildren {
		return out
	}
	if !withChildren {
		return out
	}
	children := []any{}
	for _, c := range f.accounts {
		if c.Parent != nil && *c.Parent == a.ID {
			children = append(children, f.render(c, false))
		}
	}
	out["children"] = children
	return out
}

func (f *fakeAPI) find(id string) *account {
	for _, a := range f.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (f *fakeAPI) accountRoutes(r chi.Router) {
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		body := readJSON(r)
		a := &account{ID: uuid.NewString(), CreatedAt: now(), UpdatedAt: now()}
		a.Name, _ = body["name"].(string)
		a.IsDefault, _ = body["is_default"].(bool)
		if p, ok := body["parent"].(string); ok {
			a.Parent = &p
		}
		f.mu.Lock()
		f.accounts = append(f.accounts, a)
		out := f.render(a, true)
		f.mu.Unlock()
		writeJSON(w, 201, out)
	})
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		out := []any{}
		for _, a := range f.accounts {
			out = append(out, f.render(a, true))
		}
		f.mu.Unlock()
		writeJSON(w, 200, out)
	})
	r.Get("/{id}/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		a := f.find(chi.URLParam(r, "id"))
		if a == nil {
			writeJSON(w, 404, map[string]string{"detail": "Not found."})
			return
		}
		writeJSON(w, 200, f.render(a, true))
	})
	r.Get("/{id}/positions/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, []any{})
	})
}

func (f *fakeAPI) watchlistRoutes(r chi.Router) {
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		name, _ := readJSON(r)["name"].(string)
		wl := &watchlist{ID: uuid.NewString(), Name: name, Items: []any{}, CreatedAt: now()}
		f.mu.Lock()
		f.watchlists[wl.ID] = wl
		f.mu.Unlock()
		writeJSON(w, 201, wl)
	})
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		out := []*watchlist{}
		for _, wl := range f.watchlists {
			out = append(out, wl)
		}
		f.mu.Unlock()
		writeJSON(w, 200, out)
	})
	r.Route("/{id}", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				f.mu.Lock()
				_, ok := f.watchlists[chi.URLParam(r, "id")]
				f.mu.Unlock()
				if !ok {
					writeJSON(w, 404, map[string]string{"detail": "Not found."})
					return
				}
				next.ServeHTTP(w, r)
			})
		})
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			writeJSON(w, 200, f.watchlists[chi.URLParam(r, "id")])
		})
		r.Patch("/", func(w http.ResponseWriter, r *http.Request) {
			name, _ := readJSON(r)["name"].(string)
			f.mu.Lock()
			defer f.mu.Unlock()
			wl := f.watchlists[chi.URLParam(r, "id")]
			wl.Name = name
			writeJSON(w, 200, wl)
		})
		r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			delete(f.watchlists, chi.URLParam(r, "id"))
			f.mu.Unlock()
			writeJSON(w, f.opts.deleteStatus, nil)
		})
		r.Post("/items/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, 404, map[string]string{"error": "基金不存在"})
		})
		r.Delete("/items/{code}/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, 404, map[string]string{"error": "基金不在自选列表中"})
		})
		r.Put("/reorder/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, 400, map[string]string{"error": "fund_codes 不能为空"})
		})
	})
}

func (f *fakeAPI) hasFund(code string) bool {
	for _, fund := range f.opts.funds {
		if fund["fund_code"] == code {
			return true
		}
	}
	return false
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, 404, map[string]string{"detail": "Not found."})
}

func (f *fakeAPI) positionRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, []any{})
	})
	r.Get("/operations/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, []any{})
	})
	r.Post("/operations/", func(w http.ResponseWriter, r *http.Request) {
		body := readJSON(r)
		code, _ := body["fund_code"].(string)
		if !f.hasFund(code) {
			writeJSON(w, 400, map[string][]string{"fund_code": {"基金不存在"}})
			return
		}
		writeJSON(w, 201, map[string]any{
			"id": uuid.NewString(), "fund_code": code, "operation_type": body["operation_type"],
		})
	})
	r.Get("/operations/{id}/", notFound)
	r.Post("/recalculate/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"message": "持仓已重新计算"})
	})
	r.Get("/history/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("account_id")
		if id == "" {
			writeJSON(w, 400, map[string]string{"error": "缺少 account_id 参数"})
			return
		}
		f.mu.Lock()
		a := f.find(id)
		f.mu.Unlock()
		switch {
		case a == nil:
			notFound(w, r)
			return
		case a.Parent == nil:
			writeJSON(w, 400, map[string]string{"error": "不支持父账户"})
			return
		}
		rows := []map[string]any{}
		day := time.Now().UTC()
		for i := 0; i < 7+f.opts.historyExtra; i++ {
			rows = append(rows, map[string]any{
				"date": day.AddDate(0, 0, -i).Format(time.DateOnly), "total_value": "0.00",
			})
		}
		writeJSON(w, 200, rows)
	})
	r.Get("/{id}/", notFound)
}

func (f *fakeAPI) navHistoryRoutes(r chi.Router) {
	seeded := func(code string) []map[string]any {
		rows := []map[string]any{}
		if code == seedFundCode {
			rows = append(rows, f.opts.navRows...)
		}
		return rows
	}
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, seeded(r.URL.Query().Get("fund_code")))
	})
	r.Get("/{id}/", notFound)
	r.Post("/batch_query/", func(w http.ResponseWriter, r *http.Request) {
		codes, ok := readJSON(r)["fund_codes"].([]any)
		if !ok {
			writeJSON(w, 400, map[string]string{"error": "缺少 fund_codes 参数"})
			return
		}
		out := map[string]any{}
		for _, c := range codes {
			code, _ := c.(string)
			out[code] = seeded(code)
		}
		writeJSON(w, 200, out)
	})
	r.Post("/sync/", func(w http.ResponseWriter, r *http.Request) {
		codes, ok := readJSON(r)["fund_codes"].([]any)
		if !ok {
			writeJSON(w, 400, map[string]string{"error": "缺少 fund_codes 参数"})
			return
		}
		authorized := false
		if header := r.Header.Get("Authorization"); header != "" {
			f.mu.Lock()
			authorized = f.tokens[strings.TrimPrefix(header, "Bearer ")]
			f.mu.Unlock()
			if !authorized {
				writeJSON(w, 401, map[string]string{"detail": "Given token not valid for any token type"})
				return
			}
		}
		if len(codes) > 15 && !authorized && !f.opts.syncOpen {
			writeJSON(w, 403, map[string]string{"error": "同步超过 15 个基金需要管理员权限"})
			return
		}
		writeJSON(w, 200, map[string]int{"synced": len(codes)})
	})
}
