// Package testutil holds shared test doubles used across packages.
package testutil

import (
	"sync"

	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
)

// LogEntry is a single captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []logging.Field
}

// MockLogger is a thread-safe logging.Logger that records every call so tests
// can assert on emitted entries.  Fatal records instead of exiting.
type MockLogger struct {
	mu      sync.Mutex
	entries []LogEntry
	with    []logging.Field
}

// NewMockLogger returns an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(level, msg string, fields []logging.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := append(append([]logging.Field{}, m.with...), fields...)
	m.entries = append(m.entries, LogEntry{Level: level, Message: msg, Fields: all})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.record("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.record("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.record("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.record("error", msg, fields) }
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.record("fatal", msg, fields) }

func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &MockLogger{with: append(append([]logging.Field{}, m.with...), fields...), entries: m.entries}
}

func (m *MockLogger) Named(string) logging.Logger { return m }

// Entries returns a copy of all captured entries.
func (m *MockLogger) Entries() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogEntry{}, m.entries...)
}

// HasMessage reports whether any captured entry has the given message.
func (m *MockLogger) HasMessage(msg string) bool {
	for _, e := range m.Entries() {
		if e.Message == msg {
			return true
		}
	}
	return false
}
