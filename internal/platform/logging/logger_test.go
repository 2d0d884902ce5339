package logging

import (
	"bytes"
	"errors"
	"testing"

	sonic "github.com/bytedance/sonic"
)

func TestNew_JSONFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(LevelInfo, FormatJSON, &buf)
	logger.With("job", "history").Info("history sync summary", "created", 3, "error", errors.New("boom"))
	logger.Debug("hidden")

	var line map[string]any
	if err := sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["msg"] != "history sync summary" {
		t.Fatalf("unexpected msg: %v", line["msg"])
	}
	if line["job"] != "history" {
		t.Fatalf("expected job field, got %v", line["job"])
	}
	if line["created"] != float64(3) {
		t.Fatalf("expected created=3, got %v", line["created"])
	}
	if line["error"] != "boom" {
		t.Fatalf("expected error field, got %v", line["error"])
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"debug":   LevelDebug,
		"WARNING": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q)=%s want %s", input, got, want)
		}
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	t.Parallel()

	var logger *Logger
	logger.Info("no panic")
	if logger.With("k", "v") == nil {
		t.Fatalf("expected non-nil logger from nil receiver")
	}
}
