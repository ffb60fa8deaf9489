package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"autosalon/internal/config"
	"autosalon/internal/http/handlers"
	applog "autosalon/internal/log"
	"autosalon/internal/metrics"
	"autosalon/internal/repos"
)

const (
	testSecret    = "test-secret-0123456789abcdef-0123456789"
	adminEmail    = "admin@autosalon.local"
	adminPassword = "admin-pass"
)

type testEnv struct {
	app     *fiber.App
	db      *sqlx.DB
	deps    *handlers.Deps
	metrics *metrics.Metrics
}

func testConfig() config.Config {
	return config.Config{
		AppEnv:          "test",
		JWTSecret:       testSecret,
		JWTIssuer:       "autosalon",
		TokenTTL:        time.Hour,
		BcryptCost:      bcrypt.MinCost,
		StoreTimeout:    5 * time.Second,
		LoginRateMax:    1000,
		LoginRateWindow: time.Minute,
		CORSOrigins:     "*",
		BodyLimit:       1 << 20,
	}
}

func newEnv(t *testing.T, mods ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	for _, m := range mods {
		m(&cfg)
	}
	db, err := repos.OpenDB(context.Background(), repos.Options{Driver: repos.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	m := metrics.New()
	deps, err := handlers.NewDeps(db, cfg, m)
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	deps.AccessLog = io.Discard
	if _, err := deps.Auth.EnsureAdmin(context.Background(), adminEmail, "Admin", adminPassword); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	return &testEnv{app: handlers.NewApp(cfg, deps), db: db, deps: deps, metrics: m}
}

// do sends a JSON request and returns the status and raw body.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rd = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (e *testEnv) doObject(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	status, raw := e.do(t, method, path, token, body)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return status, out
}

func (e *testEnv) register(t *testing.T, username, email, password string) int64 {
	t.Helper()
	status, body := e.doObject(t, http.MethodPost, "/api/register", "", map[string]any{
		"username": username, "email": email, "password": password,
	})
	require.Equal(t, fiber.StatusCreated, status, "body: %v", body)
	return int64(body["userId"].(float64))
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	status, body := e.doObject(t, http.MethodPost, "/api/login", "", map[string]any{
		"email": email, "password": password,
	})
	require.Equal(t, fiber.StatusOK, status, "body: %v", body)
	return body["token"].(string)
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	return e.login(t, adminEmail, adminPassword)
}

type logEntry struct {
	Level  string         `json:"level"`
	Kind   string         `json:"kind"`
	Action string         `json:"action"`
	Status int            `json:"status"`
	UserID *float64       `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

// captureLogs swaps the process logger for the duration of fn and returns
// the decoded entries plus the raw output.
func captureLogs(t *testing.T, fn func()) ([]logEntry, string) {
	t.Helper()
	buf := &lockedBuffer{}
	prev := applog.Logger()
	applog.SetLogger(applog.New(buf, "json", "debug"))
	defer applog.SetLogger(prev)

	fn()

	var entries []logEntry
	dec := json.NewDecoder(bytes.NewReader(buf.b.Bytes()))
	for dec.More() {
		var e logEntry
		if err := dec.Decode(&e); err != nil {
			t.Fatalf("decode log line: %v", err)
		}
		entries = append(entries, e)
	}
	return entries, buf.b.String()
}

func findAction(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

func fullCar(name string) map[string]any {
	return map[string]any{
		"name": name, "price": 21500.5, "description": "one owner", "image": "car.jpg",
		"year": 2017, "mileage": 64000, "fuelType": "Diesel", "transmission": "Manual",
		"color": "Blue", "status": "Available",
	}
}

func fullCustomer(email string) map[string]any {
	return map[string]any{
		"firstName": "Ilze", "lastName": "Ozola", "email": email, "phone": "+371 2000 0000",
		"address": "Brivibas 1", "city": "Riga", "state": "Riga", "zipCode": "LV-1050",
		"country": "Latvia", "avatar": "ilze.png",
	}
}

// raw sends a bodiless request with extra headers.
func (e *testEnv) raw(t *testing.T, method, path string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}
