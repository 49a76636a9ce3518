package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	"storefront/internal/repos"
)

type testApp struct {
	app  *fiber.App
	db   *sqlx.DB
	deps *handlers.Deps
}

func newTestApp(t *testing.T, opts handlers.Options) *testApp {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{SessionTTL: time.Hour, BcryptCost: bcrypt.MinCost}
	deps := handlers.NewDeps(db, cfg)
	if opts.GlobalMax == 0 {
		opts.GlobalMax = 1000
	}
	return &testApp{app: handlers.NewApp(deps, opts), db: db, deps: deps}
}

// call sends a JSON request and decodes the JSON response into a generic map.
func (a *testApp) call(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: non-JSON body %q", method, path, raw)
		}
	}
	return resp.StatusCode, out
}

func (a *testApp) register(t *testing.T, email string) string {
	t.Helper()
	status, body := a.call(t, "POST", "/api/auth/register", "", map[string]string{
		"email": email, "password": "password123",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("register %s: %d %v", email, status, body)
	}
	return body["token"].(string)
}

func (a *testApp) adminToken(t *testing.T) string {
	t.Helper()
	if err := a.deps.Auth.EnsureAdmin(context.Background(), "admin@example.com", "admin-password"); err != nil {
		t.Fatal(err)
	}
	status, body := a.call(t, "POST", "/api/auth/login", "", map[string]string{
		"email": "admin@example.com", "password": "admin-password",
	})
	if status != fiber.StatusOK {
		t.Fatalf("admin login: %d %v", status, body)
	}
	return body["token"].(string)
}

func (a *testApp) product(t *testing.T, admin string, name string, price, inventory int64) int64 {
	t.Helper()
	status, body := a.call(t, "POST", "/api/products", admin, map[string]any{
		"name": name, "price_cents": price, "inventory": inventory,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create product: %d %v", status, body)
	}
	return int64(body["id"].(float64))
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

// captureLogs temporarily redirects the standard logger and parses JSON lines.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
