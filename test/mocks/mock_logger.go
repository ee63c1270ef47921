package mocks

import (
	"fmt"
	"sync"
)

// MockLogger records formatted log lines instead of writing them.
type MockLogger struct {
	mu    sync.Mutex
	Lines []string
}

func (m *MockLogger) record(level, format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lines = append(m.Lines, fmt.Sprintf("[%s] %s", level, fmt.Sprintf(format, args...)))
}

func (m *MockLogger) Debug(format string, args ...any) { m.record("DEBUG", format, args...) }
func (m *MockLogger) Info(format string, args ...any)  { m.record("INFO", format, args...) }
func (m *MockLogger) Warn(format string, args ...any)  { m.record("WARN", format, args...) }
func (m *MockLogger) Error(format string, args ...any) { m.record("ERROR", format, args...) }
func (m *MockLogger) Fatal(format string, args ...any) { m.record("FATAL", format, args...) }

// Snapshot returns a copy of the recorded lines.
func (m *MockLogger) Snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Lines...)
}
