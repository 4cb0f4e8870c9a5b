package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// LogEntry is a single captured slog record.
type LogEntry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder buffers slog records so tests can assert on what was logged.
// It is safe for concurrent use.
type LogRecorder struct {
	mu      sync.Mutex
	entries []LogEntry
	t       *testing.T
}

// NewLogRecorder creates a recorder bound to the given test. Records are
// echoed to the test log for debugging.
func NewLogRecorder(t *testing.T) *LogRecorder {
	return &LogRecorder{t: t}
}

// NewTestLogger creates a logger whose output is captured by the returned
// recorder.
func NewTestLogger(t *testing.T) (*slog.Logger, *LogRecorder) {
	rec := NewLogRecorder(t)
	return slog.New(&recorderHandler{rec: rec}), rec
}

func (rec *LogRecorder) record(e LogEntry) {
	rec.mu.Lock()
	rec.entries = append(rec.entries, e)
	rec.mu.Unlock()

	if rec.t != nil {
		rec.t.Logf("[%s] %s %v", e.Level, e.Message, e.Attrs)
	}
}

// Entries returns a copy of all captured entries.
func (rec *LogRecorder) Entries() []LogEntry {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	out := make([]LogEntry, len(rec.entries))
	copy(out, rec.entries)
	return out
}

// ByLevel returns the captured entries at the given level.
func (rec *LogRecorder) ByLevel(level slog.Level) []LogEntry {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	var out []LogEntry
	for _, e := range rec.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// HasMessage reports whether any entry's message contains the substring.
func (rec *LogRecorder) HasMessage(substr string) bool {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	for _, e := range rec.entries {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// HasAttr reports whether any entry carries the given attribute value.
func (rec *LogRecorder) HasAttr(key string, value any) bool {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	for _, e := range rec.entries {
		if v, ok := e.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}

// Len returns the number of captured entries.
func (rec *LogRecorder) Len() int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return len(rec.entries)
}

// Reset discards all captured entries.
func (rec *LogRecorder) Reset() {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.entries = rec.entries[:0]
}

// recorderHandler adapts a LogRecorder to slog.Handler. Preset attributes
// from With and WithGroup are resolved into each captured entry, so
// component-scoped loggers remain assertable.
type recorderHandler struct {
	rec    *LogRecorder
	attrs  []slog.Attr
	groups []string
}

func (h *recorderHandler) Enabled(context.Context, slog.Level) bool {
	// Capture every level in tests.
	return true
}

func (h *recorderHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Resolve().Any()
	}
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[prefix+a.Key] = a.Value.Resolve().Any()
		return true
	})

	h.rec.record(LogEntry{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	return nil
}

func (h *recorderHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &recorderHandler{rec: h.rec, attrs: merged, groups: h.groups}
}

func (h *recorderHandler) WithGroup(name string) slog.Handler {
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)
	return &recorderHandler{rec: h.rec, attrs: h.attrs, groups: groups}
}

// AssertLogged fails the test when no entry at the level contains the
// message substring.
func AssertLogged(t *testing.T, rec *LogRecorder, level slog.Level, message string) {
	t.Helper()

	for _, e := range rec.ByLevel(level) {
		if strings.Contains(e.Message, message) {
			return
		}
	}

	t.Errorf("expected log message not found at level %s: %q", level, message)
	for _, e := range rec.ByLevel(level) {
		t.Logf("  captured: %s", e.Message)
	}
}

// AssertLogAttr fails the test when no entry carries the attribute value.
func AssertLogAttr(t *testing.T, rec *LogRecorder, key string, want any) {
	t.Helper()

	if !rec.HasAttr(key, want) {
		t.Errorf("expected log attribute not found: %s=%v", key, want)
		for _, e := range rec.Entries() {
			t.Logf("  captured: %s %v", e.Message, e.Attrs)
		}
	}
}

// AssertNoErrorLogs fails the test when any error-level entry was captured.
func AssertNoErrorLogs(t *testing.T, rec *LogRecorder) {
	t.Helper()

	for _, e := range rec.ByLevel(slog.LevelError) {
		t.Errorf("unexpected error log: %s %v", e.Message, e.Attrs)
	}
}
