package ports

import (
	"context"

	"dispatch-service/internal/domain"
)

// DriverRepository is the persistence boundary for fleet drivers.
type DriverRepository interface {
	// ListDrivers returns all drivers sorted by name.
	ListDrivers(ctx context.Context) ([]domain.Driver, error)
	// ListActiveDrivers returns Active drivers sorted by name, the order the
	// simulation engine selects from.
	ListActiveDrivers(ctx context.Context) ([]domain.Driver, error)
	GetDriver(ctx context.Context, id string) (domain.Driver, error)
	CreateDriver(ctx context.Context, d domain.Driver) (domain.Driver, error)
	UpdateDriver(ctx context.Context, d domain.Driver) (domain.Driver, error)
	DeleteDriver(ctx context.Context, id string) error
	CountActiveDrivers(ctx context.Context) (int, error)
}
