package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/platform/obs"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SQLGeocodeCache maps normalized addresses to coordinates.
type SQLGeocodeCache struct {
	DB *sqlx.DB
}

func NewSQLGeocodeCache(db *sqlx.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

type geocodeRow struct {
	Address string  `db:"address"`
	Lon     float64 `db:"lon"`
	Lat     float64 `db:"lat"`
}

func (s *SQLGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueKeys(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	var rows []geocodeRow
	if err := s.DB.SelectContext(ctx, &rows,
		`SELECT address, lon, lat FROM geocode_cache WHERE address = ANY($1::text[])`,
		pq.Array(uniq),
	); err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	out := make(map[string]domain.Coordinates, len(rows))
	for _, r := range rows {
		out[r.Address] = domain.Coordinates{Lon: r.Lon, Lat: r.Lat}
	}
	return out, nil
}

// PutMany upserts every mapping in one transaction.
func (s *SQLGeocodeCache) PutMany(ctx context.Context, coords map[string]domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if len(coords) == 0 {
		return nil
	}

	rows := make([]geocodeRow, 0, len(coords))
	for addr, c := range coords {
		if strings.TrimSpace(addr) == "" {
			return errors.New("insert geocode cache: empty address key")
		}
		rows = append(rows, geocodeRow{Address: addr, Lon: c.Lon, Lat: c.Lat})
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range rows {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO geocode_cache (address, lon, lat)
			VALUES (:address, :lon, :lat)
			ON CONFLICT (address) DO UPDATE
			SET lon = EXCLUDED.lon, lat = EXCLUDED.lat`, r); err != nil {
			return fmt.Errorf("insert geocode cache address=%q: %w", r.Address, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}
	return nil
}
