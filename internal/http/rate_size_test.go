package handlers_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// Burst hits past the per-IP budget return 429.
func TestRateLimit(t *testing.T) {
	a := newTestApp(t, appOpts{rateMax: 3})

	var last *http.Response
	entries := captureLogs(t, func() {
		for i := 0; i < 4; i++ {
			resp, err := a.app.Test(httptest.NewRequest("GET", "/api/v1/watches", nil), -1)
			if err != nil {
				t.Fatal(err)
			}
			if i < 3 && resp.StatusCode == http.StatusTooManyRequests {
				t.Fatalf("hit rate limit too early at %d", i)
			}
			last = resp
		}
	})
	if last.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", last.StatusCode)
	}
	if !hasAction(entries, "rate.global.hit") {
		t.Fatal("expected rate.global.hit log")
	}

	// health checks are exempt
	resp, _ := a.app.Test(httptest.NewRequest("GET", "/healthz", nil), -1)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz should bypass the limiter, got %d", resp.StatusCode)
	}
}

// Oversized uploads are rejected with 413.
func TestBodySizeLimit(t *testing.T) {
	a := newTestApp(t, appOpts{})
	w := a.seed(t, "Seiko", "SKX007", "150")

	oversize := bytes.Repeat([]byte("A"), (6<<20)+10)
	req := httptest.NewRequest("POST", "/api/v1/watches/"+w.ID+"/images", bytes.NewReader(oversize))
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := a.app.Test(req, -1)
	// Fiber may surface the limit as a transport error instead of a response
	if err != nil {
		if strings.Contains(err.Error(), "body size exceeds") || strings.Contains(err.Error(), "too large") {
			return
		}
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 413 for oversize, got %d body=%s", resp.StatusCode, string(body))
	}
}

// Per-image cap is enforced below the transport limit.
func TestImageTooLarge(t *testing.T) {
	a := newTestApp(t, appOpts{})
	w := a.seed(t, "Seiko", "SKX007", "150")

	resp := uploadImage(t, a, w.ID, "big.jpg", bytes.Repeat([]byte("x"), (5<<20)+1))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", resp.StatusCode)
	}
	resp = uploadImage(t, a, w.ID, "notes.txt", []byte("hello"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("wrong type: want 400, got %d", resp.StatusCode)
	}
}
