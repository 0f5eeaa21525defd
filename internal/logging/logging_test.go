package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func capture(t *testing.T, o Options) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	if err := Init(o); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		Close()
		SetOutput(os.Stderr)
		_ = Init(Options{})
	})
	return &buf
}

func TestQuiet(t *testing.T) {
	buf := capture(t, Options{Quiet: true, Verbose: true})
	Say("hello")
	Warn("careful")
	Debug("details")
	Error("boom")
	if got := buf.String(); got != "boom\n" {
		t.Fatalf("quiet output = %q, want only the error", got)
	}
}

func TestNotQuiet(t *testing.T) {
	buf := capture(t, Options{})
	Say("hello")
	Warn("careful")
	Debug("details")
	if got := buf.String(); got != "hello\ncareful\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestVerbose(t *testing.T) {
	buf := capture(t, Options{Verbose: true})
	Debug("page fetched", zap.Int("page", 3))
	got := buf.String()
	if !strings.Contains(got, "page fetched") || !strings.Contains(got, "3") {
		t.Fatalf("verbose output missing debug event: %q", got)
	}
}

func TestFileSink(t *testing.T) {
	p := filepath.Join(t.TempDir(), "logs", "dcs.log")
	capture(t, Options{Quiet: true, File: p})
	Debug("stream opened", zap.String("url", "wss://x"))
	Close()

	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(b), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v: %q", err, b)
	}
	if entry["msg"] != "stream opened" || entry["url"] != "wss://x" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}
