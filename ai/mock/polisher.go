package mock

import (
	"context"
	"sync/atomic"
)

// Polisher is a test double for ai.Polisher.
type Polisher struct {
	// PolishFunc is called by Polish if set.
	// If nil, the answer is returned unchanged.
	PolishFunc func(ctx context.Context, answer, citation string) (string, error)

	callCount atomic.Int64
}

// NewPolisher creates a mock polisher that returns answers unchanged.
func NewPolisher() *Polisher {
	return &Polisher{}
}

// Polish invokes the injected behavior or echoes the answer.
func (m *Polisher) Polish(ctx context.Context, answer, citation string) (string, error) {
	m.callCount.Add(1)

	if m.PolishFunc != nil {
		return m.PolishFunc(ctx, answer, citation)
	}
	return answer, nil
}

// CallCount returns the number of times Polish was called.
func (m *Polisher) CallCount() int {
	return int(m.callCount.Load())
}
