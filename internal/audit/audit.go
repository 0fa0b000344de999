// Package audit provides structured logging for pdd executions and file writes.
// Log entries follow a key=value format suitable for parsing and analysis.
package audit

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// EventType represents the type of execution or file event.
type EventType string

// Event types for pdd executions.
const (
	EventRequest  EventType = "REQUEST"
	EventComplete EventType = "COMPLETE"
	EventFail     EventType = "FAIL"
	EventTimeout  EventType = "TIMEOUT"
)

// Event types for the file endpoints.
const (
	EventFileWrite EventType = "FILE_WRITE"
	EventFileRead  EventType = "FILE_READ"
)

// Event represents an execution or file audit log entry.
type Event struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time

	// Type is the event type (REQUEST, COMPLETE, etc.)
	Type EventType

	// ID identifies one execution across its REQUEST and outcome lines.
	ID string

	// Command is the pdd subcommand name.
	Command string

	// Cmd is the full assembled command line.
	Cmd string

	// Path is the file path relative to the server root (for file events).
	Path string

	// Kind is the failure kind (for FAIL events).
	Kind string

	// Reason is the failure message (for FAIL events).
	Reason string

	// ExitCode is the command exit code (for COMPLETE events).
	ExitCode int

	// Duration is the execution time (for COMPLETE and TIMEOUT events).
	Duration time.Duration
}

// Format returns the log entry as a formatted string.
// Format: 2024-01-15T14:32:05Z EXEC REQUEST id=1f0c... command=sync cmd="pdd sync -b app --yes"
// Format: 2024-01-15T14:32:05Z FILE FILE_WRITE path="prompts/app.prompt"
func (e *Event) Format() string {
	var b strings.Builder

	b.WriteString(e.Timestamp.UTC().Format(time.RFC3339))

	if e.isFileEvent() {
		b.WriteString(" FILE ")
		b.WriteString(string(e.Type))
		b.WriteString(" path=")
		b.WriteString(quoteValue(e.Path))
		writeOptionalField(&b, "reason", e.Reason)
		return b.String()
	}

	b.WriteString(" EXEC ")
	b.WriteString(string(e.Type))
	b.WriteString(" id=")
	b.WriteString(e.ID)
	b.WriteString(" command=")
	b.WriteString(e.Command)

	e.formatTypeSpecificFields(&b)

	return b.String()
}

// isFileEvent returns true if the event comes from the file endpoints.
func (e *Event) isFileEvent() bool {
	return e.Type == EventFileWrite || e.Type == EventFileRead
}

// formatTypeSpecificFields appends type-specific key=value pairs to the builder.
func (e *Event) formatTypeSpecificFields(b *strings.Builder) {
	switch e.Type {
	case EventRequest:
		writeOptionalField(b, "cmd", e.Cmd)
	case EventComplete:
		b.WriteString(" exit=")
		b.WriteString(strconv.Itoa(e.ExitCode))
		b.WriteString(" duration=")
		b.WriteString(formatDuration(e.Duration))
	case EventFail:
		writeOptionalField(b, "kind", e.Kind)
		writeOptionalField(b, "reason", e.Reason)
	case EventTimeout:
		b.WriteString(" duration=")
		b.WriteString(formatDuration(e.Duration))
	}
}

// writeOptionalField appends " key=quoted_value" to the builder if value is non-empty.
func writeOptionalField(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString(" ")
	b.WriteString(key)
	b.WriteString("=")
	b.WriteString(quoteValue(value))
}

// quoteValue returns a quoted string value.
// Values are always quoted for consistency and to handle spaces/special chars.
func quoteValue(s string) string {
	return fmt.Sprintf("%q", s)
}

// formatDuration formats a duration as a human-readable string (e.g., "2.3s", "1m30s").
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

// Logger writes audit events to an io.Writer.
// A nil *Logger is valid and discards every event.
type Logger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLogger creates a new audit logger that writes to the given writer.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w}
}

// Log writes an event to the audit log.
func (l *Logger) Log(e *Event) error {
	if l == nil || l.w == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	line := e.Format() + "\n"
	_, err := l.w.Write([]byte(line))
	if err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

// LogRequest logs an EXEC REQUEST event.
func (l *Logger) LogRequest(id, command, cmd string) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      EventRequest,
		ID:        id,
		Command:   command,
		Cmd:       cmd,
	})
}

// LogComplete logs an EXEC COMPLETE event. Non-zero exits are COMPLETE too.
func (l *Logger) LogComplete(id, command string, exitCode int, duration time.Duration) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      EventComplete,
		ID:        id,
		Command:   command,
		ExitCode:  exitCode,
		Duration:  duration,
	})
}

// LogFail logs an EXEC FAIL event for executions that never produced an exit code.
func (l *Logger) LogFail(id, command, kind, reason string) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      EventFail,
		ID:        id,
		Command:   command,
		Kind:      kind,
		Reason:    reason,
	})
}

// LogTimeout logs an EXEC TIMEOUT event.
func (l *Logger) LogTimeout(id, command string, duration time.Duration) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      EventTimeout,
		ID:        id,
		Command:   command,
		Duration:  duration,
	})
}

// LogFileWrite logs a FILE FILE_WRITE event. A non-empty reason marks a failed write.
func (l *Logger) LogFileWrite(path, reason string) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      EventFileWrite,
		Path:      path,
		Reason:    reason,
	})
}

// LogFileRead logs a FILE FILE_READ event. A non-empty reason marks a failed read.
func (l *Logger) LogFileRead(path, reason string) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      EventFileRead,
		Path:      path,
		Reason:    reason,
	})
}
