package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggerWritesFieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "debug", false)

	log.With(WithField("jid", 1)).Debug("reaped", WithField("pgid", 500))

	out := buf.String()
	if !strings.Contains(out, "DEBUG reaped jid=1 pgid=500") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "warn", false)

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line logged at warn level: %q", out)
	}
	if !strings.Contains(out, "WARN  shown") {
		t.Fatalf("missing warn line: %q", out)
	}
}

func TestUnknownLevelFallsBackToWarn(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "chatty", false)

	log.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestNewWritesAndClosesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shell.log")
	log, closeLog, err := New(path, "info")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	log.Info("to file", WithField("jid", 2))
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := closeLog(); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("second close err = %v, want os.ErrClosed", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "INFO  to file jid=2") {
		t.Fatalf("log file = %q", data)
	}
}

func TestNewWithoutFileHasNoopClose(t *testing.T) {
	_, closeLog, err := New("", "warn")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
