package brain

import (
	"context"
	"fmt"
	"sync"
)

// Mock is a scriptable Brain for tests. It replays a fixed sequence of
// responses and errors and records every prompt it receives.
type Mock struct {
	mu        sync.Mutex
	name      string
	responses []any // string or error, consumed in order
	prompts   []string
}

// NewMock creates a mock brain that returns the given responses in
// order. The last response repeats once the sequence is exhausted.
func NewMock(responses ...string) *Mock {
	m := &Mock{name: "mock"}
	for _, r := range responses {
		m.responses = append(m.responses, r)
	}
	return m
}

// WithName sets the reported backend name.
func (m *Mock) WithName(name string) *Mock {
	m.name = name
	return m
}

// QueueResponse appends a successful response to the script.
func (m *Mock) QueueResponse(response string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, response)
	return m
}

// QueueError appends a failure to the script.
func (m *Mock) QueueError(err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, err)
	return m
}

// Name implements Brain.
func (m *Mock) Name() string { return m.name }

// Invoke implements Brain, replaying the scripted sequence.
func (m *Mock) Invoke(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)

	if len(m.responses) == 0 {
		return "", fmt.Errorf("mock brain %s has no scripted responses", m.name)
	}

	next := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}

	switch v := next.(type) {
	case error:
		return "", v
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("mock brain %s has invalid scripted response %T", m.name, next)
	}
}

// Prompts returns a copy of every prompt received so far.
func (m *Mock) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// CallCount returns how many times Invoke has been called.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

var _ Brain = (*Mock)(nil)
