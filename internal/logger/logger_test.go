package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}
}

func TestDebugSuppressedWhenQuiet(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("hidden %d", 1)
	Info("hidden too")
	if buf.Len() != 0 {
		t.Errorf("expected no output when quiet, got %q", buf.String())
	}
}

func TestVerboseOutput(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Ingest")
	Debug("chunks: %d", 5)
	Info("done")

	out := buf.String()
	for _, want := range []string{"=== Ingest ===", "[DEBUG] chunks: 5", "[INFO] done"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestWarnAlwaysPrinted(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn("cache persist failed: %s", "disk full")
	if !strings.Contains(buf.String(), "[WARN] cache persist failed: disk full") {
		t.Errorf("expected warning to be printed, got %q", buf.String())
	}
}
