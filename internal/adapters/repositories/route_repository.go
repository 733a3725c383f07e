package repositories

import (
	"context"

	"dispatch-service/internal/domain"

	"github.com/jmoiron/sqlx"
)

type PostgresRouteRepository struct{ DB *sqlx.DB }

func NewPostgresRouteRepository(db *sqlx.DB) *PostgresRouteRepository {
	return &PostgresRouteRepository{DB: db}
}

type routeRow struct {
	ID              string  `db:"id"`
	Code            string  `db:"route_code"`
	DistanceKm      float64 `db:"distance_km"`
	TrafficLevel    string  `db:"traffic_level"`
	BaseTimeMinutes float64 `db:"base_time_minutes"`
}

func (r routeRow) toDomain() domain.Route {
	return domain.Route{
		ID:              r.ID,
		Code:            r.Code,
		DistanceKm:      r.DistanceKm,
		TrafficLevel:    domain.TrafficLevel(r.TrafficLevel),
		BaseTimeMinutes: r.BaseTimeMinutes,
	}
}

func routeRowFrom(r domain.Route) routeRow {
	return routeRow{
		ID:              r.ID,
		Code:            r.Code,
		DistanceKm:      r.DistanceKm,
		TrafficLevel:    string(r.TrafficLevel),
		BaseTimeMinutes: r.BaseTimeMinutes,
	}
}

func (s *PostgresRouteRepository) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	var rows []routeRow
	if err := s.DB.SelectContext(ctx, &rows, `
		SELECT id, route_code, distance_km, traffic_level, base_time_minutes
		FROM routes
		ORDER BY route_code`); err != nil {
		return nil, mapErr("list routes", err)
	}

	routes := make([]domain.Route, 0, len(rows))
	for _, r := range rows {
		routes = append(routes, r.toDomain())
	}
	return routes, nil
}

func (s *PostgresRouteRepository) GetRoute(ctx context.Context, id string) (domain.Route, error) {
	var row routeRow
	if err := s.DB.GetContext(ctx, &row, `
		SELECT id, route_code, distance_km, traffic_level, base_time_minutes
		FROM routes
		WHERE id = $1`, id); err != nil {
		return domain.Route{}, mapErr("get route", err)
	}
	return row.toDomain(), nil
}

func (s *PostgresRouteRepository) CreateRoute(ctx context.Context, r domain.Route) (domain.Route, error) {
	if _, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO routes (id, route_code, distance_km, traffic_level, base_time_minutes)
		VALUES (:id, :route_code, :distance_km, :traffic_level, :base_time_minutes)`,
		routeRowFrom(r),
	); err != nil {
		return domain.Route{}, mapErr("create route", err)
	}
	return r, nil
}

func (s *PostgresRouteRepository) UpdateRoute(ctx context.Context, r domain.Route) (domain.Route, error) {
	res, err := s.DB.NamedExecContext(ctx, `
		UPDATE routes SET
			route_code = :route_code,
			distance_km = :distance_km,
			traffic_level = :traffic_level,
			base_time_minutes = :base_time_minutes
		WHERE id = :id`,
		routeRowFrom(r),
	)
	if err != nil {
		return domain.Route{}, mapErr("update route", err)
	}
	if err := requireAffected("update route", res); err != nil {
		return domain.Route{}, err
	}
	return r, nil
}

// DeleteRoute fails with ports.ErrConflict while orders still reference the route.
func (s *PostgresRouteRepository) DeleteRoute(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM routes WHERE id = $1`, id)
	if err != nil {
		return mapErr("delete route", err)
	}
	return requireAffected("delete route", res)
}

func (s *PostgresRouteRepository) CountRoutes(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.GetContext(ctx, &n, `SELECT count(*) FROM routes`); err != nil {
		return 0, mapErr("count routes", err)
	}
	return n, nil
}
