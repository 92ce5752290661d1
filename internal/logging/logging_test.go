package logging

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testStringer string

func (s testStringer) String() string { return string(s) }

func TestInitAndLoggingToFile(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "nested", "voi.log")

	if err := Init(logPath); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close()
	})

	LogEvent("hello %s", "world")
	LogCalculation("evsi", 7, map[string]any{"value": 12.5})
	_ = Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "hello world") {
		t.Fatalf("expected LogEvent content, got: %s", content)
	}
	if !strings.Contains(content, "[EVSI] request=7 value=12.5") {
		t.Fatalf("expected LogCalculation content, got: %s", content)
	}
}

func TestBuildCalculationMessage(t *testing.T) {
	msg := buildCalculationMessage(" net ", 0, map[string]any{
		"scenario": "two words",
		"prior":    testStringer("Normal"),
		"err":      errors.New("boom"),
		"sizes":    map[string]int{"total": 10},
		"empty":    " ",
	})
	for _, want := range []string{"[NET]", `scenario="two words"`, "prior=Normal", `err="boom"`, `sizes={"total":10}`, `empty=""`} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %s", want, msg)
		}
	}
	if strings.Contains(msg, "request=") {
		t.Fatalf("request id 0 should be omitted: %s", msg)
	}
	if idx := strings.Index(msg, "empty="); idx > strings.Index(msg, "err=") {
		t.Fatalf("expected keys in sorted order: %s", msg)
	}
	if got := buildCalculationMessage("", 0, nil); got != "[UNKNOWN]" {
		t.Fatalf("unexpected default kind: %s", got)
	}
}

func TestInitDiscard(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	if err := Init(""); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	LogEvent("discard")
	if buf.Len() != 0 {
		t.Fatalf("expected log output discarded, got: %s", buf.String())
	}
}
