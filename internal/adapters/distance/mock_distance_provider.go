package distance

import (
	"context"
	"fmt"
	"sync"

	"dispatch-service/internal/ports"
)

// MockPair is a canned origin->destination measurement.
type MockPair struct {
	From, To string
	Meters   int
	Seconds  int
}

// MockDistanceProvider answers from a fixed table and counts lookups.
// Used in tests and when no ORS key is configured in development.
type MockDistanceProvider struct {
	mu    sync.Mutex
	m     map[string]ports.DistanceResult
	calls int
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[string]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = ports.DistanceResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockDistanceProvider{m: m}
}

func (p *MockDistanceProvider) GetDistance(ctx context.Context, origin, destination string) (ports.DistanceResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++

	r, ok := p.m[origin+"|"+destination]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("missing pair %q -> %q", origin, destination)
	}
	return r, nil
}

func (p *MockDistanceProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// MockMatrixProvider adds batched lookups on top of MockDistanceProvider.
type MockMatrixProvider struct {
	*MockDistanceProvider
	BatchCalls int
}

func NewMockMatrixProvider(pairs []MockPair) *MockMatrixProvider {
	return &MockMatrixProvider{MockDistanceProvider: NewMockDistanceProvider(pairs)}
}

func (p *MockMatrixProvider) GetDistances(ctx context.Context, origin string, destinations []string) (map[string]ports.DistanceResult, error) {
	p.BatchCalls++

	out := make(map[string]ports.DistanceResult, len(destinations))
	for _, d := range destinations {
		p.mu.Lock()
		r, ok := p.m[origin+"|"+d]
		p.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("missing pair %q -> %q", origin, d)
		}
		out[d] = r
	}
	return out, nil
}
