package testsupport

import (
	"context"
	"maps"
	"sync"

	"github.com/goliatone/go-portal/pkg/interfaces"
)

// LogEntry is one captured log call.
type LogEntry struct {
	Level   string
	Message string
	Args    []any
	Fields  map[string]any
}

// RecordingLogger captures entries for assertions. Child loggers created
// with WithFields share the parent's entry list.
type RecordingLogger struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	fields  map[string]any
}

var (
	_ interfaces.Logger       = (*RecordingLogger)(nil)
	_ interfaces.FieldsLogger = (*RecordingLogger)(nil)
)

// NewRecordingLogger returns an empty recorder.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{mu: &sync.Mutex{}, entries: &[]LogEntry{}}
}

func (l *RecordingLogger) Trace(msg string, args ...any) { l.log("TRACE", msg, args...) }
func (l *RecordingLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args...) }
func (l *RecordingLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args...) }
func (l *RecordingLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args...) }
func (l *RecordingLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args...) }
func (l *RecordingLogger) Fatal(msg string, args ...any) { l.log("FATAL", msg, args...) }

func (l *RecordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := maps.Clone(l.fields)
	if merged == nil {
		merged = map[string]any{}
	}
	maps.Copy(merged, fields)
	return &RecordingLogger{mu: l.mu, entries: l.entries, fields: merged}
}

func (l *RecordingLogger) WithContext(context.Context) interfaces.Logger {
	return l
}

// GetLogger lets the recorder double as a LoggerProvider.
func (l *RecordingLogger) GetLogger(string) interfaces.Logger {
	return l
}

// Entries returns a snapshot of captured entries.
func (l *RecordingLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(*l.entries))
	copy(out, *l.entries)
	return out
}

// Has reports whether an entry with level and message was captured.
func (l *RecordingLogger) Has(level, message string) bool {
	for _, entry := range l.Entries() {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}
	return false
}

func (l *RecordingLogger) log(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, LogEntry{
		Level:   level,
		Message: msg,
		Args:    append([]any(nil), args...),
		Fields:  maps.Clone(l.fields),
	})
}
