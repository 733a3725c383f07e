package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/platform/obs"
	"dispatch-service/internal/ports"
)

// orsMatrixQuery is the body of POST /v2/matrix/{profile}. Coordinates are
// [lon, lat] pairs and both index lists point into Locations.
type orsMatrixQuery struct {
	Locations    [][]float64 `json:"locations"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Sources      []int       `json:"sources"`
}

// orsMatrixReply carries one row per source. A null cell means ORS found
// no drivable path between the pair.
type orsMatrixReply struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

func newMatrixQuery(origin domain.Coordinates, stops []domain.Coordinates) orsMatrixQuery {
	q := orsMatrixQuery{
		Locations:    [][]float64{origin.CoordsToList()},
		Destinations: make([]int, len(stops)),
		Metrics:      []string{"distance", "duration"},
		Sources:      []int{0},
	}
	for i, c := range stops {
		q.Locations = append(q.Locations, c.CoordsToList())
		q.Destinations[i] = i + 1
	}
	return q
}

// row returns the single source row, checked against the number of stops
// that were asked for.
func (r orsMatrixReply) row(stops int) (dist, dur []*float64, err error) {
	if len(r.Distances) != 1 || len(r.Durations) != 1 {
		return nil, nil, fmt.Errorf("ors matrix: want 1 source row, got %d distance and %d duration rows",
			len(r.Distances), len(r.Durations))
	}
	dist, dur = r.Distances[0], r.Durations[0]
	if len(dist) != stops || len(dur) != stops {
		return nil, nil, fmt.Errorf("ors matrix: asked for %d stops, got %d distances and %d durations",
			stops, len(dist), len(dur))
	}
	return dist, dur, nil
}

// matrixFromOrigin measures the origin against every address in stops,
// whose coordinates must already be in coords.
func (o *ORSDistanceProvider) matrixFromOrigin(
	ctx context.Context,
	origin domain.Coordinates,
	stops []string,
	coords map[string]domain.Coordinates,
) (out map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.matrixFromOrigin")(&err)

	if len(stops) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	stopCoords := make([]domain.Coordinates, len(stops))
	for i, s := range stops {
		c, ok := coords[s]
		if !ok {
			return nil, fmt.Errorf("ors matrix: no coordinates for %q", s)
		}
		stopCoords[i] = c
	}

	payload, err := json.Marshal(newMatrixQuery(origin, stopCoords))
	if err != nil {
		return nil, fmt.Errorf("ors matrix: encode query: %w", err)
	}

	endpoint := o.cfg.BaseURL + "/v2/matrix/" + o.cfg.Profile
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("ors matrix: %w", err)
	}
	defer resp.Body.Close()

	var reply orsMatrixReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("ors matrix: decode reply: %w", err)
	}
	dist, dur, err := reply.row(len(stops))
	if err != nil {
		return nil, err
	}

	out = make(map[string]ports.DistanceResult, len(stops))
	for i, s := range stops {
		if dist[i] == nil || dur[i] == nil {
			return nil, fmt.Errorf("ors matrix: no drivable route to %q", s)
		}
		out[s] = ports.DistanceResult{
			DistanceMeters:  int(math.Round(*dist[i])),
			DurationSeconds: int(math.Round(*dur[i])),
		}
	}
	return out, nil
}
