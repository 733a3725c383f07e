package repositories

import (
	"context"
	"errors"
	"time"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/platform/obs"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresDriverRepository implements ports.DriverRepository.
type PostgresDriverRepository struct{ DB *sqlx.DB }

func NewPostgresDriverRepository(db *sqlx.DB) *PostgresDriverRepository {
	return &PostgresDriverRepository{DB: db}
}

type driverRow struct {
	ID                   string          `db:"id"`
	Name                 string          `db:"name"`
	Status               string          `db:"status"`
	CurrentShiftHours    float64         `db:"current_shift_hours"`
	PastWeekHours        pq.Float64Array `db:"past_week_hours"`
	TotalDeliveriesToday int             `db:"total_deliveries_today"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
}

func (r driverRow) toDomain() domain.Driver {
	return domain.Driver{
		ID:                   r.ID,
		Name:                 r.Name,
		Status:               domain.DriverStatus(r.Status),
		CurrentShiftHours:    r.CurrentShiftHours,
		PastWeekHours:        domain.NormalizeWeekHours(r.PastWeekHours),
		TotalDeliveriesToday: r.TotalDeliveriesToday,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

func driverRowFrom(d domain.Driver) driverRow {
	return driverRow{
		ID:                   d.ID,
		Name:                 d.Name,
		Status:               string(d.Status),
		CurrentShiftHours:    d.CurrentShiftHours,
		PastWeekHours:        pq.Float64Array(domain.NormalizeWeekHours(d.PastWeekHours)),
		TotalDeliveriesToday: d.TotalDeliveriesToday,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

const driverColumns = `id, name, status, current_shift_hours, past_week_hours,
	total_deliveries_today, created_at, updated_at`

func (s *PostgresDriverRepository) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	return s.list(ctx, "list drivers", `SELECT `+driverColumns+` FROM drivers ORDER BY name, id`)
}

func (s *PostgresDriverRepository) ListActiveDrivers(ctx context.Context) ([]domain.Driver, error) {
	return s.list(ctx, "list active drivers",
		`SELECT `+driverColumns+` FROM drivers WHERE status = $1 ORDER BY name, id`,
		string(domain.DriverActive),
	)
}

func (s *PostgresDriverRepository) list(ctx context.Context, op, query string, args ...any) (_ []domain.Driver, err error) {
	defer obs.Time(ctx, "drivers."+op)(&err)

	if s.DB == nil {
		return nil, errors.New("postgres driver repository: DB is nil")
	}

	var rows []driverRow
	if err := s.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, mapErr(op, err)
	}

	drivers := make([]domain.Driver, 0, len(rows))
	for _, r := range rows {
		drivers = append(drivers, r.toDomain())
	}
	return drivers, nil
}

func (s *PostgresDriverRepository) GetDriver(ctx context.Context, id string) (domain.Driver, error) {
	var row driverRow
	if err := s.DB.GetContext(ctx, &row, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, id); err != nil {
		return domain.Driver{}, mapErr("get driver", err)
	}
	return row.toDomain(), nil
}

func (s *PostgresDriverRepository) CreateDriver(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	_, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO drivers (`+driverColumns+`)
		VALUES (:id, :name, :status, :current_shift_hours, :past_week_hours,
			:total_deliveries_today, :created_at, :updated_at)`,
		driverRowFrom(d),
	)
	if err != nil {
		return domain.Driver{}, mapErr("create driver", err)
	}
	return s.GetDriver(ctx, d.ID)
}

func (s *PostgresDriverRepository) UpdateDriver(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	d.UpdatedAt = time.Now().UTC()

	res, err := s.DB.NamedExecContext(ctx, `
		UPDATE drivers SET
			name = :name,
			status = :status,
			current_shift_hours = :current_shift_hours,
			past_week_hours = :past_week_hours,
			total_deliveries_today = :total_deliveries_today,
			updated_at = :updated_at
		WHERE id = :id`,
		driverRowFrom(d),
	)
	if err != nil {
		return domain.Driver{}, mapErr("update driver", err)
	}
	if err := requireAffected("update driver", res); err != nil {
		return domain.Driver{}, err
	}
	return s.GetDriver(ctx, d.ID)
}

func (s *PostgresDriverRepository) DeleteDriver(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		return mapErr("delete driver", err)
	}
	return requireAffected("delete driver", res)
}

func (s *PostgresDriverRepository) CountActiveDrivers(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.GetContext(ctx, &n, `SELECT count(*) FROM drivers WHERE status = $1`, string(domain.DriverActive)); err != nil {
		return 0, mapErr("count active drivers", err)
	}
	return n, nil
}
