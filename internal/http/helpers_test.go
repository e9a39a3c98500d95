package handlers_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"watchflip/internal/config"
	"watchflip/internal/domain"
	"watchflip/internal/http/handlers"
	"watchflip/internal/repos"
	"watchflip/internal/services"
)

const (
	testUser     = "operator"
	testPassword = "Flip-W4tches!"
)

type testApp struct {
	app  *fiber.App
	deps *handlers.Deps
	auth bool
}

type appOpts struct {
	auth    bool
	rateMax int
	col     handlers.Collaborators
}

func newTestApp(t *testing.T, o appOpts) *testApp {
	t.Helper()
	cfg := config.Config{DBDriver: "sqlite", DBDSN: ":memory:", MediaDir: t.TempDir(), BulkWorkers: 2}
	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN, false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hash := ""
	if o.auth {
		if hash, err = services.HashPassword(testPassword); err != nil {
			t.Fatal(err)
		}
	}
	deps := handlers.NewDeps(db, cfg, services.NewAuthService(testUser, hash), o.col)
	app := handlers.NewApp(deps, handlers.AppConfig{
		TemplatesDir: "../../web/templates",
		StaticDir:    "../../web/static",
		MediaDir:     cfg.MediaDir,
		RateMax:      o.rateMax,
	})
	return &testApp{app: app, deps: deps, auth: o.auth}
}

func (a *testApp) watches() *services.WatchService { return a.deps.WatchHandler.Watches }

func (a *testApp) seed(t *testing.T, brand, model, price string) domain.Watch {
	t.Helper()
	p := decimal.RequireFromString(price)
	w, err := a.watches().Create(context.Background(), domain.WatchInput{Brand: &brand, Model: &model, PurchasePrice: &p})
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func basic(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

// do sends a JSON request, authenticating when the app has a password.
func (a *testApp) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.auth {
		req.Header.Set("Authorization", basic(testUser, testPassword))
	}
	resp, err := a.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// uploadImage posts data as a multipart image for watch id.
func uploadImage(t *testing.T, a *testApp, id, name string, data []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest("POST", "/api/v1/watches/"+id+"/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if a.auth {
		req.Header.Set("Authorization", basic(testUser, testPassword))
	}
	resp, err := a.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func bodyString(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return string(b)
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

type logEntry struct {
	Level    string         `json:"level"`
	Action   string         `json:"action"`
	Operator string         `json:"operator"`
	Fields   map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func hasAction(entries []logEntry, action string) bool {
	for _, e := range entries {
		if e.Action == action {
			return true
		}
	}
	return false
}
