package shared

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("GenerateID() produced invalid UUID %q: %v", id, err)
	}

	if GenerateID() == id {
		t.Error("consecutive IDs should differ")
	}
}

func TestGenerateState(t *testing.T) {
	state, err := GenerateState()
	if err != nil {
		t.Fatalf("failed to generate state: %v", err)
	}

	if _, err := uuid.Parse(state); err != nil {
		t.Errorf("GenerateState() produced invalid token %q: %v", state, err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Info("hello", "key", "value")
	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, "key") {
		t.Errorf("expected log output to contain message and fields, got %q", out)
	}

	t.Run("Nil Writer Defaults To Stderr", func(t *testing.T) {
		if NewLogger(nil) == nil {
			t.Error("expected a logger even with a nil writer")
		}
	})

	t.Run("WithLogger", func(t *testing.T) {
		buf.Reset()
		child := WithLogger(logger, "component", "test")
		child.Info("scoped")
		if !strings.Contains(buf.String(), "component") {
			t.Errorf("expected child logger to carry fields, got %q", buf.String())
		}
	})

	t.Run("SetLogLevel", func(t *testing.T) {
		buf.Reset()
		SetLogLevel(logger, log.ErrorLevel)
		logger.Info("suppressed")
		if buf.Len() != 0 {
			t.Errorf("expected info log to be suppressed at error level, got %q", buf.String())
		}
	})
}

func TestOpenBrowser(t *testing.T) {
	original := getRuntime
	defer func() { getRuntime = original }()

	getRuntime = func() string { return "plan9" }
	if err := OpenBrowser("http://localhost:3000"); err == nil {
		t.Error("expected an error for an unsupported platform")
	}
}
