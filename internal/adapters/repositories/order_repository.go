package repositories

import (
	"context"
	"database/sql"
	"time"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/platform/obs"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PostgresOrderRepository struct{ DB *sqlx.DB }

func NewPostgresOrderRepository(db *sqlx.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{DB: db}
}

type orderRow struct {
	ID                 string          `db:"id"`
	OrderCode          string          `db:"order_code"`
	CustomerName       string          `db:"customer_name"`
	ValueRs            float64         `db:"value_rs"`
	PickupLocation     string          `db:"pickup_location"`
	DeliveryLocation   string          `db:"delivery_location"`
	RouteID            string          `db:"route_id"`
	AssignedDriverID   sql.NullString  `db:"assigned_driver_id"`
	Status             string          `db:"status"`
	Priority           string          `db:"priority"`
	EstimatedMinutes   sql.NullFloat64 `db:"estimated_delivery_minutes"`
	ActualMinutes      sql.NullFloat64 `db:"actual_delivery_minutes"`
	OrderDate          time.Time       `db:"order_date"`
	DeliveryTimestamp  sql.NullTime    `db:"delivery_timestamp"`
	RouteCode          sql.NullString  `db:"route_code"`
	AssignedDriverName sql.NullString  `db:"driver_name"`
}

func (r orderRow) toDomain() domain.Order {
	o := domain.Order{
		ID:                 r.ID,
		OrderID:            r.OrderCode,
		CustomerName:       r.CustomerName,
		ValueRs:            r.ValueRs,
		PickupLocation:     r.PickupLocation,
		DeliveryLocation:   r.DeliveryLocation,
		RouteID:            r.RouteID,
		Status:             domain.OrderStatus(r.Status),
		Priority:           domain.Priority(r.Priority),
		OrderDate:          r.OrderDate,
		RouteCode:          r.RouteCode.String,
		AssignedDriverName: r.AssignedDriverName.String,
	}
	if r.AssignedDriverID.Valid {
		id := r.AssignedDriverID.String
		o.AssignedDriverID = &id
	}
	if r.EstimatedMinutes.Valid {
		v := r.EstimatedMinutes.Float64
		o.EstimatedDeliveryTimeMinutes = &v
	}
	if r.ActualMinutes.Valid {
		v := r.ActualMinutes.Float64
		o.ActualDeliveryTimeMinutes = &v
	}
	if r.DeliveryTimestamp.Valid {
		t := r.DeliveryTimestamp.Time
		o.DeliveryTimestamp = &t
	}
	return o
}

func orderRowFrom(o domain.Order) orderRow {
	row := orderRow{
		ID:               o.ID,
		OrderCode:        o.OrderID,
		CustomerName:     o.CustomerName,
		ValueRs:          o.ValueRs,
		PickupLocation:   o.PickupLocation,
		DeliveryLocation: o.DeliveryLocation,
		RouteID:          o.RouteID,
		Status:           string(o.Status),
		Priority:         string(o.Priority),
		OrderDate:        o.OrderDate,
	}
	if o.AssignedDriverID != nil && *o.AssignedDriverID != "" {
		row.AssignedDriverID = sql.NullString{String: *o.AssignedDriverID, Valid: true}
	}
	if o.EstimatedDeliveryTimeMinutes != nil {
		row.EstimatedMinutes = sql.NullFloat64{Float64: *o.EstimatedDeliveryTimeMinutes, Valid: true}
	}
	if o.ActualDeliveryTimeMinutes != nil {
		row.ActualMinutes = sql.NullFloat64{Float64: *o.ActualDeliveryTimeMinutes, Valid: true}
	}
	if o.DeliveryTimestamp != nil {
		row.DeliveryTimestamp = sql.NullTime{Time: *o.DeliveryTimestamp, Valid: true}
	}
	return row
}

const orderSelect = `
	SELECT o.id, o.order_code, o.customer_name, o.value_rs, o.pickup_location,
		o.delivery_location, o.route_id, o.assigned_driver_id, o.status, o.priority,
		o.estimated_delivery_minutes, o.actual_delivery_minutes, o.order_date,
		o.delivery_timestamp, r.route_code, d.name AS driver_name
	FROM orders o
	LEFT JOIN routes r ON r.id = o.route_id
	LEFT JOIN drivers d ON d.id = o.assigned_driver_id`

func (s *PostgresOrderRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.list(ctx, "list orders", orderSelect+` ORDER BY o.order_date DESC, o.order_code`)
}

// ListOrdersByStatus returns matching orders oldest first, the order the
// simulation consumes them in.
func (s *PostgresOrderRepository) ListOrdersByStatus(ctx context.Context, statuses ...domain.OrderStatus) ([]domain.Order, error) {
	return s.list(ctx, "list orders by status",
		orderSelect+` WHERE o.status = ANY($1) ORDER BY o.order_date, o.order_code`,
		pq.Array(statusStrings(statuses)),
	)
}

func (s *PostgresOrderRepository) list(ctx context.Context, op, query string, args ...any) (_ []domain.Order, err error) {
	defer obs.Time(ctx, "orders."+op)(&err)

	var rows []orderRow
	if err := s.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, mapErr(op, err)
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, r := range rows {
		orders = append(orders, r.toDomain())
	}
	return orders, nil
}

func (s *PostgresOrderRepository) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	var row orderRow
	if err := s.DB.GetContext(ctx, &row, orderSelect+` WHERE o.id = $1`, id); err != nil {
		return domain.Order{}, mapErr("get order", err)
	}
	return row.toDomain(), nil
}

func (s *PostgresOrderRepository) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}

	if _, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO orders (id, order_code, customer_name, value_rs, pickup_location,
			delivery_location, route_id, assigned_driver_id, status, priority,
			estimated_delivery_minutes, actual_delivery_minutes, order_date, delivery_timestamp)
		VALUES (:id, :order_code, :customer_name, :value_rs, :pickup_location,
			:delivery_location, :route_id, :assigned_driver_id, :status, :priority,
			:estimated_delivery_minutes, :actual_delivery_minutes, :order_date, :delivery_timestamp)`,
		orderRowFrom(o),
	); err != nil {
		return domain.Order{}, mapErr("create order", err)
	}
	return s.GetOrder(ctx, o.ID)
}

func (s *PostgresOrderRepository) UpdateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	res, err := s.DB.NamedExecContext(ctx, `
		UPDATE orders SET
			order_code = :order_code,
			customer_name = :customer_name,
			value_rs = :value_rs,
			pickup_location = :pickup_location,
			delivery_location = :delivery_location,
			route_id = :route_id,
			assigned_driver_id = :assigned_driver_id,
			status = :status,
			priority = :priority,
			estimated_delivery_minutes = :estimated_delivery_minutes,
			actual_delivery_minutes = :actual_delivery_minutes,
			order_date = :order_date,
			delivery_timestamp = :delivery_timestamp
		WHERE id = :id`,
		orderRowFrom(o),
	)
	if err != nil {
		return domain.Order{}, mapErr("update order", err)
	}
	if err := requireAffected("update order", res); err != nil {
		return domain.Order{}, err
	}
	return s.GetOrder(ctx, o.ID)
}

func (s *PostgresOrderRepository) DeleteOrder(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return mapErr("delete order", err)
	}
	return requireAffected("delete order", res)
}

func (s *PostgresOrderRepository) CountOrdersByStatus(ctx context.Context, statuses ...domain.OrderStatus) (int, error) {
	var n int
	if err := s.DB.GetContext(ctx, &n,
		`SELECT count(*) FROM orders WHERE status = ANY($1)`,
		pq.Array(statusStrings(statuses)),
	); err != nil {
		return 0, mapErr("count orders", err)
	}
	return n, nil
}

func statusStrings(statuses []domain.OrderStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
