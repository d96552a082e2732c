package engine

import (
	"context"
	"encoding/json"
	"sync"
)

// Mock is an Engine for tests. It records calls and replays a queued
// response or error per call.
type Mock struct {
	mu sync.Mutex

	// Responses are returned in order; the last one repeats
	Responses []json.RawMessage
	// Err, when set, is returned instead of a response
	Err error

	calls []Request
}

// GenerateStructured records the request and returns the next queued response
func (m *Mock) GenerateStructured(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)
	if m.Err != nil {
		return nil, m.Err
	}

	if len(m.Responses) == 0 {
		return &Response{Data: json.RawMessage(`{}`)}, nil
	}
	idx := len(m.calls) - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return &Response{Data: m.Responses[idx]}, nil
}

// CallCount reports how many times the engine was invoked
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall returns the most recent request, or a zero Request
func (m *Mock) LastCall() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return Request{}
	}
	return m.calls[len(m.calls)-1]
}
