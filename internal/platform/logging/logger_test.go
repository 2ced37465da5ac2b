package logging

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// captureLogOutput captures a single log entry emitted by logFn and returns it as a map.
func captureLogOutput(t *testing.T, logFn func(*zap.Logger)) map[string]any {
	t.Helper()

	resetLoggerForTest()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	defer func() { _ = r.Close() }()

	origStdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = origStdout }()

	logger := Logger()
	logFn(logger)
	_ = logger.Sync()

	if closeErr := w.Close(); closeErr != nil {
		t.Fatalf("failed to close writer: %v", closeErr)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read log output: %v", err)
	}

	line := strings.TrimSpace(string(data))
	if line == "" {
		t.Fatalf("expected log output, got empty string")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("failed to unmarshal log JSON: %v", err)
	}
	return payload
}

// resetLoggerForTest clears the singleton state so tests can capture fresh log output.
func resetLoggerForTest() {
	loggerOnce = sync.Once{}
	baseLogger = nil
	sugarLogger = nil
	loggerErr = nil
}

func TestLoggerStructuredOutput(t *testing.T) {
	payload := captureLogOutput(t, func(l *zap.Logger) {
		l.Info("profile updated", zap.String("userId", "user-1"))
	})

	if got := payload["severity"]; got != "INFO" {
		t.Fatalf("expected severity INFO, got %v", got)
	}
	if got := payload["message"]; got != "profile updated" {
		t.Fatalf("expected message, got %v", got)
	}
	if got := payload["userId"]; got != "user-1" {
		t.Fatalf("expected userId field, got %v", got)
	}
	ts, ok := payload["timestamp"].(string)
	if !ok || !strings.HasSuffix(ts, "Z") || len(ts) != len("2006-01-02T15:04:05.000000Z") {
		t.Fatalf("expected microsecond UTC timestamp, got %v", payload["timestamp"])
	}
	if _, ok := payload["caller"]; !ok {
		t.Fatal("expected caller field")
	}
}

func TestSetLevel(t *testing.T) {
	defer func() { _ = SetLevel("") }()
	resetLoggerForTest()
	defer resetLoggerForTest()

	if err := SetLevel("WARN"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Logger().Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("expected info to be disabled at warn level")
	}
	if !Logger().Core().Enabled(zapcore.WarnLevel) {
		t.Fatal("expected warn to be enabled")
	}

	// The level is shared, so a logger built earlier follows later changes.
	if err := SetLevel("debug"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Logger().Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug to be enabled after SetLevel")
	}
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	defer func() { _ = SetLevel("") }()
	if err := SetLevel("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := SetLevel("chatty"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if Level() != zapcore.WarnLevel {
		t.Fatalf("rejected name must keep the level, got %v", Level())
	}
	if err := SetLevel(""); err != nil || Level() != zapcore.InfoLevel {
		t.Fatalf("empty name should reset to info, got %v (%v)", Level(), err)
	}
}

type captureArrayEncoder struct {
	zapcore.PrimitiveArrayEncoder
	values []string
}

func (c *captureArrayEncoder) AppendString(s string) { c.values = append(c.values, s) }

func TestEncodeSeverityMapping(t *testing.T) {
	tests := []struct {
		level    zapcore.Level
		expected string
	}{
		{zapcore.DebugLevel, "DEBUG"},
		{zapcore.InfoLevel, "INFO"},
		{zapcore.WarnLevel, "WARNING"},
		{zapcore.ErrorLevel, "ERROR"},
		{zapcore.DPanicLevel, "CRITICAL"},
		{zapcore.PanicLevel, "ALERT"},
		{zapcore.FatalLevel, "EMERGENCY"},
		{zapcore.Level(99), "DEFAULT"},
	}

	for _, tt := range tests {
		enc := &captureArrayEncoder{}
		encodeSeverity(tt.level, enc)
		if len(enc.values) != 1 || enc.values[0] != tt.expected {
			t.Fatalf("encodeSeverity(%v) = %v, want %s", tt.level, enc.values, tt.expected)
		}
	}
}

func TestLoggerAndSugarShareCore(t *testing.T) {
	resetLoggerForTest()
	if Logger() != Logger() {
		t.Fatal("expected singleton logger")
	}
	if Sugar().Desugar().Core() != Logger().Core() {
		t.Fatal("expected sugar to share the logger core")
	}
	if err := Err(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
