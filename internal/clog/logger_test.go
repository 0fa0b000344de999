package clog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// decodeLines parses the JSON lines written to a file output.
func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger()
	l.SetFileOutput(&buf)
	l.SetErrOutput(nil) // disable console for testing
	l.SetLevel(LevelDebug)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	entries := decodeLines(t, buf.String())
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d: %s", len(entries), buf.String())
	}

	want := []struct{ level, msg string }{
		{"debug", "debug message"},
		{"info", "info message"},
		{"warn", "warn message"},
		{"error", "error message"},
	}
	for i, w := range want {
		if entries[i]["level"] != w.level {
			t.Errorf("entry %d level = %v, want %s", i, entries[i]["level"], w.level)
		}
		if entries[i]["message"] != w.msg {
			t.Errorf("entry %d message = %v, want %s", i, entries[i]["message"], w.msg)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger()
	l.SetFileOutput(&buf)
	l.SetErrOutput(nil)
	l.SetLevel(LevelWarn)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Errorf("debug message should be filtered, got: %s", output)
	}
	if strings.Contains(output, "info message") {
		t.Errorf("info message should be filtered, got: %s", output)
	}
	if !strings.Contains(output, "warn message") || !strings.Contains(output, "error message") {
		t.Errorf("expected warn and error messages, got: %s", output)
	}
}

func TestLogger_ServerMode(t *testing.T) {
	var fileBuf, errBuf bytes.Buffer
	l := NewLogger()
	l.SetFileOutput(&fileBuf)
	l.SetErrOutput(&errBuf)
	l.SetLevel(LevelDebug)

	// CLI mode: only warn/error reach the console
	l.Info("cli info")
	l.Warn("cli warning")

	if strings.Contains(errBuf.String(), "cli info") {
		t.Errorf("CLI mode should not echo info to console, got: %s", errBuf.String())
	}
	if !strings.Contains(errBuf.String(), "cli warning") {
		t.Errorf("CLI mode should echo warnings to console, got: %s", errBuf.String())
	}

	errBuf.Reset()
	l.SetServerMode(true)
	l.Info("request served")

	if !strings.Contains(errBuf.String(), "request served") {
		t.Errorf("server mode should echo info to console, got: %s", errBuf.String())
	}
	if !strings.Contains(errBuf.String(), "INF") {
		t.Errorf("console line should carry a level marker, got: %s", errBuf.String())
	}
	if !strings.Contains(fileBuf.String(), "request served") {
		t.Errorf("file should receive all messages, got: %s", fileBuf.String())
	}
}

func TestLogger_FormatWithArgs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger()
	l.SetFileOutput(&buf)
	l.SetErrOutput(nil)
	l.SetLevel(LevelDebug)

	l.Info("count: %d, name: %s", 42, "test")

	if !strings.Contains(buf.String(), "count: 42, name: test") {
		t.Errorf("expected formatted message, got: %s", buf.String())
	}
}

func TestLogger_Timestamp(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger()
	l.SetFileOutput(&buf)
	l.SetErrOutput(nil)

	l.Info("test")

	entries := decodeLines(t, buf.String())
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ts, ok := entries[0]["time"].(string)
	if !ok || !strings.Contains(ts, "T") {
		t.Errorf("expected RFC3339 time field, got: %v", entries[0]["time"])
	}
}

func TestOpenLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "test.log")

	f, err := OpenLogFile(path)
	if err != nil {
		t.Fatalf("OpenLogFile() error = %v", err)
	}
	if _, err := f.WriteString("line one\n"); err != nil {
		t.Fatalf("WriteString() error = %v", err)
	}
	_ = f.Close()

	// Reopening appends rather than truncating
	f, err = OpenLogFile(path)
	if err != nil {
		t.Fatalf("OpenLogFile() second open error = %v", err)
	}
	if _, err := f.WriteString("line two\n"); err != nil {
		t.Fatalf("WriteString() error = %v", err)
	}
	_ = f.Close()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(content) != "line one\nline two\n" {
		t.Errorf("unexpected content: %q", content)
	}
}
