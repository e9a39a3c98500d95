package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Writes need operator credentials once a password hash is configured.
func TestWritesRequireOperator(t *testing.T) {
	a := newTestApp(t, appOpts{auth: true})

	body := []byte(`{"brand":"Seiko","model":"SKX007","purchasePrice":150}`)
	var resp *http.Response
	entries := captureLogs(t, func() {
		req := httptest.NewRequest("POST", "/api/v1/watches", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		var err error
		if resp, err = a.app.Test(req, -1); err != nil {
			t.Fatal(err)
		}
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401 without creds, got %d", resp.StatusCode)
	}
	if resp.Header.Get("WWW-Authenticate") == "" {
		t.Fatal("missing WWW-Authenticate challenge")
	}
	if !hasAction(entries, "access.denied.operator") {
		t.Fatalf("expected access.denied.operator log, got %+v", entries)
	}

	req := httptest.NewRequest("POST", "/api/v1/watches", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", basic(testUser, "wrong-password"))
	resp, err := a.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401 with a bad password, got %d", resp.StatusCode)
	}

	entries = captureLogs(t, func() {
		resp = a.do(t, "POST", "/api/v1/watches", map[string]any{"brand": "Seiko", "model": "SKX007", "purchasePrice": 150})
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("want 201 with creds, got %d", resp.StatusCode)
	}
	found := false
	for _, e := range entries {
		if e.Action == "watch.create" {
			found = true
			if e.Level != "audit" || e.Operator != testUser {
				t.Fatalf("audit entry = %+v", e)
			}
		}
	}
	if !found {
		t.Fatal("missing watch.create audit entry")
	}
}

func TestReadsStayPublic(t *testing.T) {
	a := newTestApp(t, appOpts{auth: true})
	a.seed(t, "Omega", "Speedmaster", "3200")

	for _, path := range []string{"/api/v1/watches", "/api/v1/metrics/summary", "/api/v1/export/json", "/"} {
		resp, err := a.app.Test(httptest.NewRequest("GET", path, nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: want 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestListingsNeedOperator(t *testing.T) {
	a := newTestApp(t, appOpts{auth: true})
	req := httptest.NewRequest("POST", "/api/v1/listings/scrape", bytes.NewReader([]byte(`{"url":"https://www.ebay.com/itm/1"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", resp.StatusCode)
	}
}
