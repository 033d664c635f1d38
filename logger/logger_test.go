package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestWithComponent(t *testing.T) {
	log := Logger()
	entry := log.WithComponent("test")
	if v, ok := entry.Entry.Data["component"]; !ok || v != "test" {
		t.Fatalf("component field missing: %v", entry.Entry.Data)
	}
}

func TestConfigureInvalidLevel(t *testing.T) {
	// Ensure environment variables do not override the provided level
	t.Setenv("LOG_LEVEL", "")

	log := Logger()
	if err := log.Configure("invalid", "json", "stdout", 0); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestWithEnv(t *testing.T) {
	os.Setenv("FOO", "bar")
	log := Logger()
	entry := log.WithEnv("FOO")
	if v, ok := entry.Entry.Data["FOO"]; !ok || v != "bar" {
		t.Fatalf("env field not set: %v", entry.Entry.Data)
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := parseLevel("report"); err != nil || lvl != logrus.InfoLevel {
		t.Errorf("report should map to info, got %v, %v", lvl, err)
	}
	if lvl, err := parseLevel("DEBUG"); err != nil || lvl != logrus.DebugLevel {
		t.Errorf("levels should be case insensitive, got %v, %v", lvl, err)
	}
	if _, err := parseLevel("chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLogPerformanceEntry(t *testing.T) {
	log := Logger()
	var buf bytes.Buffer
	log.SetOutput(&buf)

	LogPerformanceEntry(log.WithComponent("runner"), "runner", "prepare_data", 0, nil)

	out := buf.String()
	for _, want := range []string{"duration_ms", `"operation":"prepare_data"`, `"component":"runner"`} {
		if !strings.Contains(out, want) {
			t.Errorf("performance entry missing %q: %s", want, out)
		}
	}
}

func TestLogMetricEmitsEntry(t *testing.T) {
	log := Logger()
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.LogMetric("llm", "tokens_total", 42, "", Fields{"model": "gpt-4o-mini"})

	out := buf.String()
	for _, want := range []string{`"metric":"tokens_total"`, `"value":42`, `"metric_type":"gauge"`} {
		if !strings.Contains(out, want) {
			t.Errorf("metric entry missing %q: %s", want, out)
		}
	}
}
