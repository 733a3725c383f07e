package distance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dispatch-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memDistanceCache struct {
	mu sync.Mutex
	m  map[string]ports.DistanceResult
}

func (c *memDistanceCache) GetMany(_ context.Context, origin string, dests []string) (map[string]ports.DistanceResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]ports.DistanceResult{}
	for _, d := range dests {
		if r, ok := c.m[origin+"|"+d]; ok {
			out[d] = r
		}
	}
	return out, nil
}

func (c *memDistanceCache) PutMany(_ context.Context, origin string, results map[string]ports.DistanceResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = map[string]ports.DistanceResult{}
	}
	for d, r := range results {
		c.m[origin+"|"+d] = r
	}
	return nil
}

type fakeORS struct {
	geocodes    atomic.Int32
	matrices    atomic.Int32
	failMatrix  atomic.Int32
	lastCountry atomic.Value
}

func (f *fakeORS) handler(t *testing.T) http.Handler {
	coords := map[string][]float64{
		"Depot":    {77.59, 12.97},
		"Koramang": {77.62, 12.93},
		"Whitefld": {77.75, 12.97},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/geocode/search", func(w http.ResponseWriter, r *http.Request) {
		f.geocodes.Add(1)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		f.lastCountry.Store(r.URL.Query().Get("boundary.country"))

		c, ok := coords[r.URL.Query().Get("text")]
		if !ok {
			_, _ = w.Write([]byte(`{"features":[]}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"features": []any{map[string]any{"geometry": map[string]any{"coordinates": c}}},
		})
	})
	mux.HandleFunc("/v2/matrix/driving-car", func(w http.ResponseWriter, r *http.Request) {
		f.matrices.Add(1)
		if f.failMatrix.Load() > 0 {
			f.failMatrix.Add(-1)
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}

		var req orsMatrixQuery
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}

		dist := make([]float64, 0, len(req.Destinations))
		dur := make([]float64, 0, len(req.Destinations))
		for i := range req.Destinations {
			dist = append(dist, float64(1000*(i+1))+0.4)
			dur = append(dur, float64(60*(i+1)))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"distances": [][]float64{dist},
			"durations": [][]float64{dur},
		})
	})
	return mux
}

func newTestProvider(t *testing.T, f *fakeORS, cache ports.DistanceCache) *ORSDistanceProvider {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	p, err := NewORSDistanceProvider(ORSConfig{APIKey: "test-key", BaseURL: srv.URL + "/"}, cache, nil)
	require.NoError(t, err)
	return p
}

func TestORS_RequiresAPIKey(t *testing.T) {
	_, err := NewORSDistanceProvider(ORSConfig{}, nil, nil)
	assert.Error(t, err)
}

func TestORS_GetDistancesRoundsAndDedupes(t *testing.T) {
	f := &fakeORS{}
	p := newTestProvider(t, f, nil)

	got, err := p.GetDistances(context.Background(), "Depot", []string{"Koramang", " Koramang ", "Whitefld", "Depot"})
	require.NoError(t, err)

	assert.Equal(t, map[string]ports.DistanceResult{
		"Koramang": {DistanceMeters: 1000, DurationSeconds: 60},
		"Whitefld": {DistanceMeters: 2000, DurationSeconds: 120},
	}, got)
	assert.Equal(t, int32(1), f.matrices.Load())
	assert.Equal(t, "IN", f.lastCountry.Load())
}

func TestORS_UsesDistanceCache(t *testing.T) {
	f := &fakeORS{}
	cache := &memDistanceCache{}
	p := newTestProvider(t, f, cache)
	ctx := context.Background()

	first, err := p.GetDistance(ctx, "Depot", "Whitefld")
	require.NoError(t, err)

	second, err := p.GetDistance(ctx, "Depot", "Whitefld")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), f.matrices.Load())
	assert.Equal(t, int32(2), f.geocodes.Load())
}

func TestORS_RetriesServiceUnavailable(t *testing.T) {
	prev := retryBackoff
	retryBackoff = time.Millisecond
	t.Cleanup(func() { retryBackoff = prev })

	f := &fakeORS{}
	f.failMatrix.Store(2)
	p := newTestProvider(t, f, nil)

	r, err := p.GetDistance(context.Background(), "Depot", "Koramang")
	require.NoError(t, err)
	assert.Equal(t, 1000, r.DistanceMeters)
	assert.Equal(t, int32(3), f.matrices.Load())
}

func TestORS_UnknownAddressFails(t *testing.T) {
	p := newTestProvider(t, &fakeORS{}, nil)

	_, err := p.GetDistance(context.Background(), "Depot", "Atlantis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestORS_SameOriginAndDestination(t *testing.T) {
	f := &fakeORS{}
	p := newTestProvider(t, f, nil)

	r, err := p.GetDistance(context.Background(), "Depot", "Depot")
	require.NoError(t, err)
	assert.Equal(t, ports.DistanceResult{}, r)
	assert.Zero(t, f.geocodes.Load())
}

func TestMockMatrixProvider(t *testing.T) {
	p := NewMockMatrixProvider([]MockPair{{From: "A", To: "B", Meters: 10, Seconds: 2}})

	got, err := p.GetDistances(context.Background(), "A", []string{"B"})
	require.NoError(t, err)
	assert.Equal(t, 10, got["B"].DistanceMeters)
	assert.Equal(t, 1, p.BatchCalls)

	_, err = p.GetDistance(context.Background(), "B", "A")
	assert.Error(t, err)
	assert.Equal(t, 1, p.Calls())
}
