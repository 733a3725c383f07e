package ports

import (
	"context"

	"dispatch-service/internal/domain"
)

// SimulationRepository stores run summaries for historical lookup.
type SimulationRepository interface {
	SaveResult(ctx context.Context, r domain.SimulationResult) (domain.SimulationResult, error)
	// ListResults returns at most limit results, newest first.
	ListResults(ctx context.Context, limit int) ([]domain.SimulationResult, error)
}
