package ports

import (
	"context"

	"dispatch-service/internal/domain"
)

type RouteRepository interface {
	ListRoutes(ctx context.Context) ([]domain.Route, error)
	GetRoute(ctx context.Context, id string) (domain.Route, error)
	CreateRoute(ctx context.Context, r domain.Route) (domain.Route, error)
	UpdateRoute(ctx context.Context, r domain.Route) (domain.Route, error)
	DeleteRoute(ctx context.Context, id string) error
	CountRoutes(ctx context.Context) (int, error)
}
