package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch-service/internal/platform/obs"
	"dispatch-service/internal/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SQLDistanceCache stores origin->destination results in the distance_cache
// table. Entries older than MaxAge are treated as misses; zero keeps them forever.
type SQLDistanceCache struct {
	DB     *sqlx.DB
	MaxAge time.Duration
	Now    func() time.Time
}

func NewSQLDistanceCache(db *sqlx.DB, maxAge time.Duration) *SQLDistanceCache {
	return &SQLDistanceCache{DB: db, MaxAge: maxAge}
}

type distanceRow struct {
	Destination     string    `db:"destination"`
	DistanceMeters  int       `db:"distance_meters"`
	DurationSeconds int       `db:"duration_seconds"`
	FetchedAt       time.Time `db:"fetched_at"`
}

func (s *SQLDistanceCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("distance cache: db is nil")
	}
	if origin == "" {
		return nil, errors.New("get distance cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	var rows []distanceRow
	err = s.DB.SelectContext(ctx, &rows, `
		SELECT destination, distance_meters, duration_seconds, fetched_at
		FROM distance_cache
		WHERE origin = $1
			AND destination = ANY($2::text[])`,
		origin, pq.Array(uniq),
	)
	if err != nil {
		return nil, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}

	cutoff := time.Time{}
	if s.MaxAge > 0 {
		cutoff = s.now().Add(-s.MaxAge)
	}

	out := make(map[string]ports.DistanceResult, len(rows))
	for _, r := range rows {
		if r.FetchedAt.Before(cutoff) {
			continue
		}
		out[r.Destination] = ports.DistanceResult{
			DistanceMeters:  r.DistanceMeters,
			DurationSeconds: r.DurationSeconds,
		}
	}
	return out, nil
}

func (s *SQLDistanceCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) error {
	if s.DB == nil {
		return errors.New("distance cache: db is nil")
	}
	if origin == "" {
		return errors.New("insert distance cache: origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert distance cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO distance_cache (origin, destination, distance_meters, duration_seconds, fetched_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (origin, destination) DO UPDATE
		SET distance_meters = EXCLUDED.distance_meters,
			duration_seconds = EXCLUDED.duration_seconds,
			fetched_at = EXCLUDED.fetched_at`)
	if err != nil {
		return fmt.Errorf("insert distance cache: db prepare: %w", err)
	}
	defer stmt.Close()

	now := s.now()
	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return errors.New("insert distance cache: empty destination key")
		}
		if _, err := stmt.ExecContext(ctx, origin, dest, r.DistanceMeters, r.DurationSeconds, now); err != nil {
			return fmt.Errorf("insert distance cache dest=%q: %w", dest, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert distance cache commit: %w", err)
	}
	return nil
}

func (s *SQLDistanceCache) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
