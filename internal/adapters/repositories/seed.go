package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch-service/internal/dataset"
	"dispatch-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// SeedSummary counts the rows written by SeedFromJSON.
type SeedSummary struct {
	Drivers int `json:"drivers"`
	Routes  int `json:"routes"`
	Orders  int `json:"orders"`
}

// SeedFromJSON replaces all drivers, routes and orders with the contents of
// a dataset file (JSON or YAML). Orders reference routes by route code.
func SeedFromJSON(ctx context.Context, db *sqlx.DB, path string) (SeedSummary, error) {
	if db == nil {
		return SeedSummary{}, errors.New("seed: DB is nil")
	}

	ds, err := dataset.Load(path)
	if err != nil {
		return SeedSummary{}, fmt.Errorf("seed: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return SeedSummary{}, fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"orders", "routes", "drivers"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return SeedSummary{}, fmt.Errorf("seed: clear %s: %w", table, err)
		}
	}

	now := time.Now().UTC()
	for _, d := range ds.Drivers {
		row := driverRowFrom(domain.Driver{
			ID:                   uuid.New().String(),
			Name:                 d.Name,
			Status:               d.Status,
			CurrentShiftHours:    d.CurrentShiftHours,
			PastWeekHours:        d.PastWeekHours,
			TotalDeliveriesToday: d.TotalDeliveriesToday,
			CreatedAt:            now,
			UpdatedAt:            now,
		})
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO drivers (`+driverColumns+`)
			VALUES (:id, :name, :status, :current_shift_hours, :past_week_hours,
				:total_deliveries_today, :created_at, :updated_at)`, row); err != nil {
			return SeedSummary{}, fmt.Errorf("seed: insert driver %q: %w", d.Name, err)
		}
	}

	routeIDs := make(map[string]string, len(ds.Routes))
	for _, r := range ds.Routes {
		id := uuid.New().String()
		routeIDs[r.RouteID] = id
		row := routeRowFrom(domain.Route{
			ID:              id,
			Code:            r.RouteID,
			DistanceKm:      r.DistanceKm,
			TrafficLevel:    r.TrafficLevel,
			BaseTimeMinutes: r.BaseTimeMinutes,
		})
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO routes (id, route_code, distance_km, traffic_level, base_time_minutes)
			VALUES (:id, :route_code, :distance_km, :traffic_level, :base_time_minutes)`, row); err != nil {
			return SeedSummary{}, fmt.Errorf("seed: insert route %q: %w", r.RouteID, err)
		}
	}

	for _, o := range ds.Orders {
		routeID, ok := routeIDs[o.RouteID]
		if !ok {
			return SeedSummary{}, fmt.Errorf("seed: order %q references unknown route %q", o.OrderID, o.RouteID)
		}

		orderDate := o.OrderDate
		if orderDate.IsZero() {
			orderDate = now
		}

		row := orderRowFrom(domain.Order{
			ID:               uuid.New().String(),
			OrderID:          o.OrderID,
			CustomerName:     o.CustomerName,
			ValueRs:          o.ValueRs,
			PickupLocation:   o.PickupLocation,
			DeliveryLocation: o.DeliveryLocation,
			RouteID:          routeID,
			Status:           o.Status,
			Priority:         o.Priority,
			OrderDate:        orderDate,
		})
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO orders (id, order_code, customer_name, value_rs, pickup_location,
				delivery_location, route_id, status, priority, order_date)
			VALUES (:id, :order_code, :customer_name, :value_rs, :pickup_location,
				:delivery_location, :route_id, :status, :priority, :order_date)`, row); err != nil {
			return SeedSummary{}, fmt.Errorf("seed: insert order %q: %w", o.OrderID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return SeedSummary{}, fmt.Errorf("seed: commit tx: %w", err)
	}

	summary := SeedSummary{Drivers: len(ds.Drivers), Routes: len(ds.Routes), Orders: len(ds.Orders)}
	logrus.WithFields(logrus.Fields{
		"path":    path,
		"drivers": summary.Drivers,
		"routes":  summary.Routes,
		"orders":  summary.Orders,
	}).Info("database seeded")

	return summary, nil
}

// SeedAdmin creates the admin account, or resets its password if it exists.
func SeedAdmin(ctx context.Context, db *sqlx.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return errors.New("seed admin: email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed admin: hash password: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (email) DO UPDATE
		SET password_hash = EXCLUDED.password_hash, role = EXCLUDED.role`,
		uuid.New().String(), email, "Administrator", domain.RoleAdmin, string(hash),
	); err != nil {
		return fmt.Errorf("seed admin: upsert %q: %w", email, err)
	}

	logrus.WithField("email", email).Info("admin user seeded")
	return nil
}
