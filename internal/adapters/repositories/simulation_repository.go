package repositories

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"dispatch-service/internal/domain"

	"github.com/jmoiron/sqlx"
)

type PostgresSimulationRepository struct{ DB *sqlx.DB }

func NewPostgresSimulationRepository(db *sqlx.DB) *PostgresSimulationRepository {
	return &PostgresSimulationRepository{DB: db}
}

// metadataJSON stores SimulationMetadata in a JSONB column.
type metadataJSON domain.SimulationMetadata

func (m metadataJSON) Value() (driver.Value, error) {
	b, err := json.Marshal(domain.SimulationMetadata(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *metadataJSON) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		*m = metadataJSON{}
		return nil
	default:
		return fmt.Errorf("scan simulation metadata: unsupported type %T", src)
	}

	var md domain.SimulationMetadata
	if err := json.Unmarshal(b, &md); err != nil {
		return fmt.Errorf("scan simulation metadata: %w", err)
	}
	*m = metadataJSON(md)
	return nil
}

type simulationRow struct {
	ID               string       `db:"id"`
	TotalProfit      float64      `db:"total_profit"`
	EfficiencyScore  float64      `db:"efficiency_score"`
	OnTimeDeliveries int          `db:"on_time_deliveries"`
	LateDeliveries   int          `db:"late_deliveries"`
	FuelCost         float64      `db:"fuel_cost"`
	Metadata         metadataJSON `db:"metadata"`
	CreatedAt        time.Time    `db:"created_at"`
}

func (r simulationRow) toDomain() domain.SimulationResult {
	return domain.SimulationResult{
		ID:               r.ID,
		TotalProfit:      r.TotalProfit,
		EfficiencyScore:  r.EfficiencyScore,
		OnTimeDeliveries: r.OnTimeDeliveries,
		LateDeliveries:   r.LateDeliveries,
		FuelCost:         r.FuelCost,
		Metadata:         domain.SimulationMetadata(r.Metadata),
		CreatedAt:        r.CreatedAt,
	}
}

func (s *PostgresSimulationRepository) SaveResult(ctx context.Context, r domain.SimulationResult) (domain.SimulationResult, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	row := simulationRow{
		ID:               r.ID,
		TotalProfit:      r.TotalProfit,
		EfficiencyScore:  r.EfficiencyScore,
		OnTimeDeliveries: r.OnTimeDeliveries,
		LateDeliveries:   r.LateDeliveries,
		FuelCost:         r.FuelCost,
		Metadata:         metadataJSON(r.Metadata),
		CreatedAt:        r.CreatedAt,
	}

	if _, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO simulation_results (id, total_profit, efficiency_score, on_time_deliveries,
			late_deliveries, fuel_cost, metadata, created_at)
		VALUES (:id, :total_profit, :efficiency_score, :on_time_deliveries,
			:late_deliveries, :fuel_cost, :metadata, :created_at)`, row); err != nil {
		return domain.SimulationResult{}, mapErr("save simulation result", err)
	}
	return r, nil
}

func (s *PostgresSimulationRepository) ListResults(ctx context.Context, limit int) ([]domain.SimulationResult, error) {
	var rows []simulationRow
	if err := s.DB.SelectContext(ctx, &rows, `
		SELECT id, total_profit, efficiency_score, on_time_deliveries, late_deliveries,
			fuel_cost, metadata, created_at
		FROM simulation_results
		ORDER BY created_at DESC
		LIMIT $1`, limit); err != nil {
		return nil, mapErr("list simulation results", err)
	}

	out := make([]domain.SimulationResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
