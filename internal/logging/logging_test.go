package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"keysync/internal/logging"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	b, err := logging.NewBackend("", "info,DIRC=debug", &buf)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	defer b.Close()

	core := b.Logger("CORE")
	dirc := b.Logger("DIRC")

	core.Debugf("hidden")
	core.Infof("core info")
	dirc.Debugf("dirc debug")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatal("debug line leaked through an info-level logger")
	}
	if !strings.Contains(out, "core info") {
		t.Fatalf("missing info line in %q", out)
	}
	if !strings.Contains(out, "dirc debug") {
		t.Fatalf("missing per-subsystem debug line in %q", out)
	}
}

func TestLoggerReuse(t *testing.T) {
	b, err := logging.NewBackend("", "warn", nil)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	defer b.Close()

	if b.Logger("CORE") != b.Logger("CORE") {
		t.Fatal("same subsystem must reuse one logger")
	}
}

func TestBadDebugLevel(t *testing.T) {
	if _, err := logging.NewBackend("", "nope", nil); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
	if _, err := logging.NewBackend("", "a=b=c", nil); err == nil {
		t.Fatal("expected an error for a malformed entry")
	}
}

func TestRotatedFile(t *testing.T) {
	logFile := t.TempDir() + "/logs/keysync.log"
	b, err := logging.NewBackend(logFile, "info", nil)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.Logger("CORE").Infof("to file")
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
