package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	applog "watchflip/internal/log"
)

func capture(t *testing.T, fn func()) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	oldW, oldFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()
	fn()
	var m map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &m); err != nil {
		t.Fatalf("not a JSON line: %q (%v)", buf.String(), err)
	}
	return m
}

func TestNilContext(t *testing.T) {
	m := capture(t, func() {
		applog.Warn(nil, "consul.register", errors.New("connection refused"), map[string]any{"addr": "localhost:8500"})
	})
	if m["level"] != "warn" || m["action"] != "consul.register" || m["err"] != "connection refused" {
		t.Fatalf("entry = %v", m)
	}
	if _, ok := m["path"]; ok {
		t.Fatal("request fields should be omitted without a context")
	}
}

func TestTimed(t *testing.T) {
	m := capture(t, func() {
		applog.Timed("analyzer.call", time.Now().Add(-25*time.Millisecond), nil, nil)
	})
	if m["level"] != "info" {
		t.Fatalf("level = %v", m["level"])
	}
	if ms, _ := m["latency_ms"].(float64); ms < 25 {
		t.Fatalf("latency_ms = %v", m["latency_ms"])
	}

	m = capture(t, func() {
		applog.Timed("scraper.fetch", time.Now(), errors.New("timeout"), nil)
	})
	if m["level"] != "error" || m["err"] != "timeout" {
		t.Fatalf("entry = %v", m)
	}
}
