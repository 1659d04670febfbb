package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("text format includes message and attrs", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, Config{})

		logger.Info("edit committed", "user_id", "alice_example.com")

		out := buf.String()
		if !strings.Contains(out, "edit committed") {
			t.Errorf("output missing message: %q", out)
		}
		if !strings.Contains(out, "user_id=alice_example.com") {
			t.Errorf("output missing attribute: %q", out)
		}
	})

	t.Run("JSON format produces JSON lines", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, Config{JSON: true})

		logger.Info("hello")

		if !strings.HasPrefix(buf.String(), "{") {
			t.Errorf("expected JSON output, got %q", buf.String())
		}
	})

	t.Run("level filters below threshold", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, Config{Level: slog.LevelWarn})

		logger.Debug("invisible")
		logger.Info("also invisible")

		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	logger.Error("discarded")
}
