package logger

import (
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger captures log entries in memory for assertions in tests.
type TestLogger struct {
	mu      sync.Mutex
	entries []TestEntry
	fields  map[string]interface{}
}

// TestEntry is a single captured log call.
type TestEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewTestLogger creates a logger that records entries instead of writing them.
func NewTestLogger() *TestLogger {
	return &TestLogger{fields: map[string]interface{}{}}
}

// Entries returns a copy of everything logged so far.
func (l *TestLogger) Entries() []TestEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]TestEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// HasMessage reports whether any entry carries the given message.
func (l *TestLogger) HasMessage(msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.Message == msg {
			return true
		}
	}
	return false
}

func (l *TestLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	l.entries = append(l.entries, TestEntry{Level: level, Message: msg, Fields: merged})
}

func (l *TestLogger) Debug(msg string) { l.record("debug", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.record("info", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.record("warn", msg, nil) }
func (l *TestLogger) Error(msg string) { l.record("error", msg, nil) }
func (l *TestLogger) Fatal(msg string) { l.record("fatal", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.record("debug", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.record("info", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.record("warn", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.record("error", msg, fields)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return &testChild{parent: l, fields: map[string]interface{}{key: value}}
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return &testChild{parent: l, fields: fields}
}

func (l *TestLogger) WithError(err error) Logger {
	return &testChild{parent: l, fields: map[string]interface{}{"error": err}}
}

func (l *TestLogger) GetZerolog() *zerolog.Logger {
	zl := zerolog.Nop()
	return &zl
}

// testChild forwards to its parent so all entries land in one place.
type testChild struct {
	parent *TestLogger
	fields map[string]interface{}
}

func (c *testChild) merged(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(c.fields)+len(fields))
	for k, v := range c.fields {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func (c *testChild) Debug(msg string) { c.parent.record("debug", msg, c.fields) }
func (c *testChild) Info(msg string)  { c.parent.record("info", msg, c.fields) }
func (c *testChild) Warn(msg string)  { c.parent.record("warn", msg, c.fields) }
func (c *testChild) Error(msg string) { c.parent.record("error", msg, c.fields) }
func (c *testChild) Fatal(msg string) { c.parent.record("fatal", msg, c.fields) }

func (c *testChild) DebugWithFields(msg string, fields map[string]interface{}) {
	c.parent.record("debug", msg, c.merged(fields))
}

func (c *testChild) InfoWithFields(msg string, fields map[string]interface{}) {
	c.parent.record("info", msg, c.merged(fields))
}

func (c *testChild) WarnWithFields(msg string, fields map[string]interface{}) {
	c.parent.record("warn", msg, c.merged(fields))
}

func (c *testChild) ErrorWithFields(msg string, fields map[string]interface{}) {
	c.parent.record("error", msg, c.merged(fields))
}

func (c *testChild) WithField(key string, value interface{}) Logger {
	return &testChild{parent: c.parent, fields: c.merged(map[string]interface{}{key: value})}
}

func (c *testChild) WithFields(fields map[string]interface{}) Logger {
	return &testChild{parent: c.parent, fields: c.merged(fields)}
}

func (c *testChild) WithError(err error) Logger {
	return &testChild{parent: c.parent, fields: c.merged(map[string]interface{}{"error": err})}
}

func (c *testChild) GetZerolog() *zerolog.Logger {
	zl := zerolog.Nop()
	return &zl
}
