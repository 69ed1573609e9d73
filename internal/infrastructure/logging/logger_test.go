package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nerrad567/gray-logic-registry/internal/infrastructure/config"
)

func TestNew_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", "text"} {
		logger := New(config.LoggingConfig{Level: "debug", Format: format, Output: "stderr"}, "1.0.0")
		if logger == nil {
			t.Errorf("New() with format %q returned nil", format)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"DEBUG", zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLogger_OutputContainsDefaultFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := newWithCore(core, "test")

	logger.Info("test message", "key", "value")
	logger.Debug("filtered")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Message != "test message" {
		t.Errorf("Message = %q, want %q", entries[0].Message, "test message")
	}

	fields := entries[0].ContextMap()
	for key, want := range map[string]string{"service": serviceName, "version": "test", "key": "value"} {
		if fields[key] != want {
			t.Errorf("field %s = %v, want %q", key, fields[key], want)
		}
	}
}

func TestLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := newWithCore(core, "test")

	child := logger.With("component", "mqtt")
	if child == logger {
		t.Fatal("With() returned the parent logger")
	}

	child.Warn("connected")
	logger.Error("plain")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if got := entries[0].ContextMap()["component"]; got != "mqtt" {
		t.Errorf("child component = %v, want mqtt", got)
	}
	if _, ok := entries[1].ContextMap()["component"]; ok {
		t.Error("parent logger picked up the child's fields")
	}
}

func TestDefaultAndNop(t *testing.T) {
	if Default() == nil {
		t.Error("Default() returned nil")
	}
	Nop().Info("discarded", "k", 1)
}
