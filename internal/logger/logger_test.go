package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/samvad-hq/listfetch/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" INFO ":  zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v want %v", in, got, want)
		}
	}
}

func TestInitWritesStructuredJSON(t *testing.T) {
	t.Cleanup(func() { S = nil })

	var buf bytes.Buffer
	log, err := initWithWriter(&config.Config{AppName: "listfetch", Env: "test", LogLevel: "info"}, &buf)
	if err != nil {
		t.Fatalf("initWithWriter: %v", err)
	}

	log.DebugObj("hidden", "k", 1)
	log.InfoObj("fetch completed", "fetch_meta", map[string]any{"count": 2})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected exactly one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "fetch completed" || entry["app"] != "listfetch" {
		t.Fatalf("unexpected entry %#v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("missing ts field: %#v", entry)
	}
	meta, ok := entry["fetch_meta"].(map[string]any)
	if !ok || meta["count"] != float64(2) {
		t.Fatalf("unexpected fetch_meta %#v", entry["fetch_meta"])
	}
}

func TestPackageHelpersAreSafeBeforeInit(t *testing.T) {
	S = nil
	InfoObj("noop", "k", 1)
	ErrorObj("noop", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
