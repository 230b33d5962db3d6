package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func reset() {
	SetVerbose(false)
	SetLevel(LevelError)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}
}

func TestLevels_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("embed %d sections", 3)
	Info("indexed %s", "a.pdf")
	Warn("skipped %s", "b.pdf")

	want := "[DEBUG] embed 3 sections\n[INFO] indexed a.pdf\n[WARN] skipped b.pdf\n"
	if buf.String() != want {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestLevels_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("Hidden")

	if buf.Len() > 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestError_AlwaysPrints(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Error("index unavailable: %v", "closed")

	if buf.String() != "[ERROR] index unavailable: closed\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Analysis")

	if buf.String() != "\n=== Analysis ===\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestTimer(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	stop := Timer("query index")
	stop()

	out := buf.String()
	if !strings.HasPrefix(out, "[DEBUG] query index took ") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestSetLevel(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelWarn)

	Info("hidden")
	Warn("fell back to %s", "local")
	Section("Hidden")

	if buf.String() != "[WARN] fell back to local\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
	if Enabled(LevelInfo) || !Enabled(LevelError) {
		t.Error("Enabled does not follow the threshold")
	}

	SetVerbose(true)
	if !Enabled(LevelDebug) {
		t.Error("verbose should enable debug")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{" Warn ", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	if Level(9).String() != "Level(9)" {
		t.Errorf("unexpected name %q", Level(9).String())
	}
}
