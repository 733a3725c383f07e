package distance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/platform/obs"
	"dispatch-service/internal/ports"

	"github.com/sirupsen/logrus"
)

const (
	DefaultORSBaseURL = "https://api.openrouteservice.org"
	DefaultORSProfile = "driving-car"
	DefaultORSCountry = "IN"
)

type ORSConfig struct {
	APIKey  string
	BaseURL string
	Profile string
	// Country restricts geocoding results (ISO 3166-1 alpha-2).
	Country string
	Timeout time.Duration
}

// ORSDistanceProvider measures road distance between addresses with
// OpenRouteService, consulting the geocode and distance caches first.
// It is safe for concurrent use.
type ORSDistanceProvider struct {
	session   *http.Client
	cfg       ORSConfig
	distances ports.DistanceCache
	geocodes  ports.GeocodeCache
}

// NewORSDistanceProvider fills unset config fields with defaults. Either
// cache may be nil.
func NewORSDistanceProvider(cfg ORSConfig, distances ports.DistanceCache, geocodes ports.GeocodeCache) (*ORSDistanceProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultORSBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Profile == "" {
		cfg.Profile = DefaultORSProfile
	}
	if cfg.Country == "" {
		cfg.Country = DefaultORSCountry
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &ORSDistanceProvider{
		session:   &http.Client{Timeout: cfg.Timeout},
		cfg:       cfg,
		distances: distances,
		geocodes:  geocodes,
	}, nil
}

// normalize collapses whitespace so cache keys are stable.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (o *ORSDistanceProvider) GetDistance(ctx context.Context, origin, destination string) (ports.DistanceResult, error) {
	origin, destination = normalize(origin), normalize(destination)
	if origin == "" || destination == "" {
		return ports.DistanceResult{}, errors.New("get ORS distance: origin and destination must be non-empty")
	}
	if origin == destination {
		return ports.DistanceResult{}, nil
	}

	results, err := o.GetDistances(ctx, origin, []string{destination})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("get ORS distance %q -> %q: %w", origin, destination, err)
	}

	r, ok := results[destination]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("get ORS distance: no result for %q -> %q", origin, destination)
	}
	return r, nil
}

// GetDistances returns results keyed by normalized destination. Destinations
// equal to the origin and duplicates are dropped.
func (o *ORSDistanceProvider) GetDistances(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.GetDistances")(&err)

	origin = normalize(origin)
	if origin == "" {
		return nil, errors.New("origin must be non-empty")
	}

	seen := make(map[string]struct{}, len(destinations))
	dests := make([]string, 0, len(destinations))
	for _, d := range destinations {
		d = normalize(d)
		if d == "" || d == origin {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dests = append(dests, d)
	}
	if len(dests) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	out := make(map[string]ports.DistanceResult, len(dests))
	if o.distances != nil {
		hits, err := o.distances.GetMany(ctx, origin, dests)
		if err != nil {
			return nil, fmt.Errorf("ORS get distance cache: %w", err)
		}
		for k, v := range hits {
			out[k] = v
		}
	}

	misses := make([]string, 0, len(dests))
	for _, d := range dests {
		if _, ok := out[d]; !ok {
			misses = append(misses, d)
		}
	}
	if len(misses) == 0 {
		return out, nil
	}

	coords, err := o.resolve(ctx, append([]string{origin}, misses...))
	if err != nil {
		return nil, fmt.Errorf("retrieving coordinates: %w", err)
	}

	fetched, err := o.matrixFromOrigin(ctx, coords[origin], misses, coords)
	if err != nil {
		return nil, fmt.Errorf("fetching matrix row: %w", err)
	}

	var missing []string
	for _, d := range misses {
		if _, ok := fetched[d]; !ok {
			missing = append(missing, d)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("ORS matrix service did not return the following destinations: %s", strings.Join(missing, ", "))
	}

	if o.distances != nil {
		if err := o.distances.PutMany(ctx, origin, fetched); err != nil {
			logrus.WithError(err).WithField("origin", origin).Warn("distance cache write failed")
		}
	}

	for k, v := range fetched {
		out[k] = v
	}
	return out, nil
}

// resolve returns coordinates for every address, geocoding cache misses.
func (o *ORSDistanceProvider) resolve(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	coords := make(map[string]domain.Coordinates, len(addresses))
	if o.geocodes != nil {
		hits, err := o.geocodes.GetMany(ctx, addresses)
		if err != nil {
			return nil, fmt.Errorf("ORS get geocode cache: %w", err)
		}
		for k, v := range hits {
			coords[k] = v
		}
	}

	var misses []string
	for _, a := range addresses {
		if _, ok := coords[a]; !ok {
			misses = append(misses, a)
		}
	}
	if len(misses) == 0 {
		return coords, nil
	}

	fresh, err := o.geocodeMany(ctx, misses)
	if err != nil {
		return nil, err
	}

	if o.geocodes != nil && len(fresh) > 0 {
		if err := o.geocodes.PutMany(ctx, fresh); err != nil {
			logrus.WithError(err).Warn("geocode cache write failed")
		}
	}

	for k, v := range fresh {
		coords[k] = v
	}
	for _, a := range addresses {
		if _, ok := coords[a]; !ok {
			return nil, fmt.Errorf("missing coordinate for %q", a)
		}
	}
	return coords, nil
}
