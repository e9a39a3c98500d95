package handlers_test

import (
	"testing"

	"watchflip/internal/domain"
)

func TestValidationFailuresAreLogged(t *testing.T) {
	a := newTestApp(t, appOpts{})
	entries := captureLogs(t, func() {
		a.do(t, "POST", "/api/v1/watches", map[string]any{"brand": "", "model": "X", "purchasePrice": 10})
	})
	var got *logEntry
	for i := range entries {
		if entries[i].Action == "validation.fail" {
			got = &entries[i]
		}
	}
	if got == nil {
		t.Fatalf("no validation.fail entry in %+v", entries)
	}
	if got.Level != "warn" {
		t.Fatalf("level = %q, want warn", got.Level)
	}
}

func TestMutationsAreAudited(t *testing.T) {
	a := newTestApp(t, appOpts{})
	w := a.seed(t, "Longines", "Spirit", "1100")

	entries := captureLogs(t, func() {
		a.do(t, "PUT", "/api/v1/watches/"+w.ID, map[string]any{"serviceCost": 250})
		a.do(t, "POST", "/api/v1/watches/"+w.ID+"/favorite", nil)
		a.do(t, "POST", "/api/v1/watches/bulk/status", map[string]any{"ids": []string{w.ID}, "status": string(domain.StatusReadyToSell)})
		a.do(t, "DELETE", "/api/v1/watches/"+w.ID, nil)
	})
	for _, action := range []string{"watch.update", "watch.favorite", "bulk.status", "watch.delete"} {
		if !hasAction(entries, action) {
			t.Errorf("missing %s audit entry", action)
		}
	}
}
