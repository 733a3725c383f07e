package ports

import (
	"context"

	"dispatch-service/internal/domain"
)

type OrderRepository interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	// ListOrdersByStatus returns orders in any of the given statuses,
	// ordered by order date then order id.
	ListOrdersByStatus(ctx context.Context, statuses ...domain.OrderStatus) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error)
	UpdateOrder(ctx context.Context, o domain.Order) (domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	CountOrdersByStatus(ctx context.Context, statuses ...domain.OrderStatus) (int, error)
}
