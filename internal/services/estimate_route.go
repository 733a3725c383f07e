package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"dispatch-service/internal/ports"
)

const maxLookups = 5

// RouteEstimate is a suggested distance and nominal duration for a new route.
type RouteEstimate struct {
	Destination     string  `json:"destination"`
	DistanceKm      float64 `json:"distanceKm"`
	BaseTimeMinutes float64 `json:"baseTimeMinutes"`
}

// EstimateRoutes measures origin -> each destination and converts the results
// into route units (km, minutes, 2dp). A single batched lookup is used when
// the provider supports it.
func EstimateRoutes(
	ctx context.Context,
	provider ports.DistanceProvider,
	origin string,
	destinations []string,
) ([]RouteEstimate, error) {
	if provider == nil {
		return nil, ErrEstimatorUnavailable
	}

	origin = strings.TrimSpace(origin)
	if origin == "" {
		return nil, errors.New("estimate routes: origin must be non-empty")
	}

	dests := make([]string, 0, len(destinations))
	for _, d := range destinations {
		if d = strings.TrimSpace(d); d != "" {
			dests = append(dests, d)
		}
	}
	if len(dests) == 0 {
		return nil, errors.New("estimate routes: at least one destination is required")
	}

	results := make(map[string]ports.DistanceResult, len(dests))
	if mp, ok := provider.(ports.DistanceMatrixProvider); ok {
		r, err := mp.GetDistances(ctx, origin, dests)
		if err != nil {
			return nil, fmt.Errorf("estimate routes: get matrix distances from %q: %w", origin, err)
		}
		results = r
	} else {
		r, err := fetchEach(ctx, provider, origin, dests)
		if err != nil {
			return nil, err
		}
		results = r
	}

	out := make([]RouteEstimate, 0, len(dests))
	for _, d := range dests {
		r, ok := results[d]
		if !ok {
			return nil, fmt.Errorf("estimate routes: missing distance for %q", d)
		}
		out = append(out, RouteEstimate{
			Destination:     d,
			DistanceKm:      math.Round(float64(r.DistanceMeters)/10) / 100,
			BaseTimeMinutes: math.Round(float64(r.DurationSeconds)/60*100) / 100,
		})
	}

	return out, nil
}

type lookupResult struct {
	destination string
	result      ports.DistanceResult
	err         error
}

// fetchEach issues single-pair lookups with at most maxLookups in flight and
// cancels the rest on the first failure.
func fetchEach(
	ctx context.Context,
	provider ports.DistanceProvider,
	origin string,
	dests []string,
) (map[string]ports.DistanceResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, maxLookups)
	resultsCh := make(chan lookupResult, len(dests))
	var wg sync.WaitGroup

	for _, d := range dests {
		wg.Add(1)
		go func(dest string) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			r, err := provider.GetDistance(ctx, origin, dest)
			if err != nil {
				resultsCh <- lookupResult{destination: dest, err: fmt.Errorf("estimate routes: get distance %q -> %q: %w", origin, dest, err)}
				cancel()
				return
			}
			resultsCh <- lookupResult{destination: dest, result: r}
		}(d)
	}

	wg.Wait()
	close(resultsCh)

	out := make(map[string]ports.DistanceResult, len(dests))
	var firstErr error
	for res := range resultsCh {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		out[res.destination] = res.result
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
