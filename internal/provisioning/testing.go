package provisioning

import (
	"fmt"
	"sync"
)

// MockObserver records events and log lines for assertions in tests, both
// here and in the steps package.
type MockObserver struct {
	mu     sync.Mutex
	events []Event
	logs   []string
}

// NewMockObserver creates an empty MockObserver.
func NewMockObserver() *MockObserver {
	return &MockObserver{}
}

// Event implements Observer.
func (m *MockObserver) Event(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Infof implements Observer.
func (m *MockObserver) Infof(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, fmt.Sprintf(format, args...))
}

// Warnf implements Observer.
func (m *MockObserver) Warnf(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, "warn: "+fmt.Sprintf(format, args...))
}

// Events returns a copy of the recorded events.
func (m *MockObserver) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Logs returns a copy of the recorded log lines.
func (m *MockObserver) Logs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.logs))
	copy(out, m.logs)
	return out
}

// HasEvent reports whether an event of the given type was recorded for the
// given step ("" matches any step).
func (m *MockObserver) HasEvent(t EventType, step string) bool {
	for _, e := range m.Events() {
		if e.Type == t && (step == "" || e.Step == step) {
			return true
		}
	}
	return false
}
