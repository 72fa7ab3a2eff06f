package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, Config{Level: "info", Format: "json"}).With(String("run", "baseline"))

	log.Info(context.Background(), "run finished", Int("steps", 57), Float("impulse", 12.5))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if entry["msg"] != "run finished" {
		t.Errorf("expected msg 'run finished', got %v", entry["msg"])
	}
	if entry["run"] != "baseline" {
		t.Errorf("expected run baseline, got %v", entry["run"])
	}
	if entry["steps"] != float64(57) {
		t.Errorf("expected steps 57, got %v", entry["steps"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, Config{Level: "warn"})

	log.Debug(context.Background(), "step")
	log.Info(context.Background(), "start")
	if buf.Len() != 0 {
		t.Errorf("expected nothing below warn, got %q", buf.String())
	}

	log.Error(context.Background(), "failed", Err(errors.New("boom")))
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected error text in output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"WARNING": "WARN",
		"error":   "ERROR",
		"":        "INFO",
		"bogus":   "INFO",
	}
	for in, want := range tests {
		if got := parseLevel(in).Level().String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestContextLogger(t *testing.T) {
	if _, ok := FromContext(context.Background()).(noopLogger); !ok {
		t.Error("expected noop logger from empty context")
	}

	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), NewWriter(&buf, Config{}))
	FromContext(ctx).Info(ctx, "hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected logged message, got %q", buf.String())
	}
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, Config{Level: "debug", Format: "console"})

	log.Debug(context.Background(), "step", Int("step", 3))
	out := buf.String()
	if !strings.Contains(out, "step") || !strings.Contains(out, "3") {
		t.Errorf("expected debug line, got %q", out)
	}

	buf.Reset()
	quiet := NewWriter(&buf, Config{Level: "error", Format: "console"})
	quiet.Info(context.Background(), "start")
	if buf.Len() != 0 {
		t.Errorf("expected nothing below error, got %q", buf.String())
	}
}
