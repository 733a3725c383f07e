package repositories

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// InitSchema creates every table the service uses. It is idempotent.
func InitSchema(db *sqlx.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createUsersQuery := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'manager',
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createDriversQuery := `
	CREATE TABLE IF NOT EXISTS drivers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Active'
			CHECK (status IN ('Active', 'Off Duty', 'On Break')),
		current_shift_hours DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (current_shift_hours >= 0),
		past_week_hours DOUBLE PRECISION[] NOT NULL DEFAULT '{0,0,0,0,0,0,0}',
		total_deliveries_today INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		id TEXT PRIMARY KEY,
		route_code TEXT NOT NULL UNIQUE,
		distance_km DOUBLE PRECISION NOT NULL CHECK (distance_km > 0),
		traffic_level TEXT NOT NULL CHECK (traffic_level IN ('Low', 'Medium', 'High')),
		base_time_minutes DOUBLE PRECISION NOT NULL CHECK (base_time_minutes > 0)
	);
	`

	createOrdersQuery := `
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		order_code TEXT NOT NULL UNIQUE,
		customer_name TEXT NOT NULL,
		value_rs DOUBLE PRECISION NOT NULL CHECK (value_rs >= 0),
		pickup_location TEXT NOT NULL,
		delivery_location TEXT NOT NULL,
		route_id TEXT NOT NULL REFERENCES routes(id) ON DELETE RESTRICT,
		assigned_driver_id TEXT REFERENCES drivers(id) ON DELETE SET NULL,
		status TEXT NOT NULL DEFAULT 'Pending'
			CHECK (status IN ('Pending', 'In Transit', 'Delivered', 'Cancelled')),
		priority TEXT NOT NULL DEFAULT 'Medium' CHECK (priority IN ('High', 'Medium', 'Low')),
		estimated_delivery_minutes DOUBLE PRECISION,
		actual_delivery_minutes DOUBLE PRECISION,
		order_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		delivery_timestamp TIMESTAMPTZ
	);
	`

	createSimulationResultsQuery := `
	CREATE TABLE IF NOT EXISTS simulation_results (
		id TEXT PRIMARY KEY,
		total_profit DOUBLE PRECISION NOT NULL,
		efficiency_score DOUBLE PRECISION NOT NULL,
		on_time_deliveries INTEGER NOT NULL,
		late_deliveries INTEGER NOT NULL,
		fuel_cost DOUBLE PRECISION NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_meters INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (origin, destination)
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);
	`

	statements := []string{
		createUsersQuery,
		createDriversQuery,
		createRoutesQuery,
		createOrdersQuery,
		createSimulationResultsQuery,
		createDistanceCacheQuery,
		createGeocodeCacheQuery,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);`,
		`CREATE INDEX IF NOT EXISTS idx_simulation_results_created_at ON simulation_results(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_distance_cache_destination_origin ON distance_cache(destination, origin);`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
