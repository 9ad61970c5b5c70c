package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel("info")
	})
	return buf
}

func TestLevelThreshold(t *testing.T) {
	buf := captureOutput(t)

	SetLevel("warn")
	InfoC("test", "hidden")
	WarnC("test", "visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be suppressed at warn level: %q", out)
	}
	if !strings.Contains(out, "[WARN] [test] visible") {
		t.Fatalf("missing warn line: %q", out)
	}
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	buf := captureOutput(t)

	SetLevel("bogus")
	DebugC("test", "debug line")
	InfoC("test", "info line")

	out := buf.String()
	if strings.Contains(out, "debug line") {
		t.Fatalf("debug should be suppressed at default level: %q", out)
	}
	if !strings.Contains(out, "info line") {
		t.Fatalf("missing info line: %q", out)
	}
}

func TestFieldsSortedByKey(t *testing.T) {
	buf := captureOutput(t)

	InfoCF("engine", "Loaded", map[string]interface{}{
		"zebra": 1,
		"alpha": "x",
		"mid":   true,
	})

	out := buf.String()
	if !strings.Contains(out, "alpha=x mid=true zebra=1") {
		t.Fatalf("fields not sorted: %q", out)
	}
	if !strings.Contains(out, "[INFO] [engine] Loaded") {
		t.Fatalf("unexpected line shape: %q", out)
	}
}
