package repositories

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/platform/db"
	"dispatch-service/internal/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"
)

// PostgresSuite runs against a throwaway database named by TEST_DATABASE_URL.
type PostgresSuite struct {
	suite.Suite
	db          *sqlx.DB
	drivers     *PostgresDriverRepository
	routes      *PostgresRouteRepository
	orders      *PostgresOrderRepository
	simulations *PostgresSimulationRepository
	users       *PostgresUserRepository
}

func TestPostgresSuite(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	suite.Run(t, &PostgresSuite{})
}

func (s *PostgresSuite) SetupSuite() {
	conn, err := db.Open(os.Getenv("TEST_DATABASE_URL"))
	s.Require().NoError(err)
	s.Require().NoError(InitSchema(conn))

	s.db = conn
	s.drivers = NewPostgresDriverRepository(conn)
	s.routes = NewPostgresRouteRepository(conn)
	s.orders = NewPostgresOrderRepository(conn)
	s.simulations = NewPostgresSimulationRepository(conn)
	s.users = NewPostgresUserRepository(conn)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *PostgresSuite) SetupTest() {
	for _, table := range []string{"orders", "routes", "drivers", "simulation_results", "users"} {
		_, err := s.db.Exec(`DELETE FROM ` + table)
		s.Require().NoError(err)
	}
}

func (s *PostgresSuite) TestSeedFromJSON() {
	ctx := context.Background()

	summary, err := SeedFromJSON(ctx, s.db, filepath.Join("..", "..", "..", "data", "seeds", "dispatch.json"))
	s.Require().NoError(err)
	s.Equal(SeedSummary{Drivers: 5, Routes: 6, Orders: 20}, summary)

	active, err := s.drivers.ListActiveDrivers(ctx)
	s.Require().NoError(err)
	s.Len(active, 4)
	s.Equal("Amit Singh", active[0].Name)
	s.Len(active[0].PastWeekHours, domain.WeekDays)

	n, err := s.routes.CountRoutes(ctx)
	s.Require().NoError(err)
	s.Equal(6, n)

	orders, err := s.orders.ListOrdersByStatus(ctx, domain.OrderPending, domain.OrderInTransit)
	s.Require().NoError(err)
	s.Len(orders, 20)
	s.NotEmpty(orders[0].RouteCode)
	s.True(!orders[0].OrderDate.After(orders[1].OrderDate))
}

func (s *PostgresSuite) TestDriverCRUD() {
	ctx := context.Background()

	created, err := s.drivers.CreateDriver(ctx, domain.Driver{
		ID:            uuid.New().String(),
		Name:          "Asha",
		Status:        domain.DriverActive,
		PastWeekHours: []float64{8, 7},
	})
	s.Require().NoError(err)
	s.Equal([]float64{8, 7, 0, 0, 0, 0, 0}, created.PastWeekHours)

	created.Status = domain.DriverOnBreak
	updated, err := s.drivers.UpdateDriver(ctx, created)
	s.Require().NoError(err)
	s.Equal(domain.DriverOnBreak, updated.Status)

	count, err := s.drivers.CountActiveDrivers(ctx)
	s.Require().NoError(err)
	s.Zero(count)

	s.Require().NoError(s.drivers.DeleteDriver(ctx, created.ID))
	_, err = s.drivers.GetDriver(ctx, created.ID)
	s.ErrorIs(err, ports.ErrNotFound)
	s.ErrorIs(s.drivers.DeleteDriver(ctx, created.ID), ports.ErrNotFound)
}

func (s *PostgresSuite) TestOrderReferencesRoute() {
	ctx := context.Background()

	route, err := s.routes.CreateRoute(ctx, domain.Route{
		ID: uuid.New().String(), Code: "R100", DistanceKm: 10, TrafficLevel: domain.TrafficHigh, BaseTimeMinutes: 30,
	})
	s.Require().NoError(err)

	_, err = s.routes.CreateRoute(ctx, domain.Route{
		ID: uuid.New().String(), Code: "R100", DistanceKm: 1, TrafficLevel: domain.TrafficLow, BaseTimeMinutes: 1,
	})
	s.ErrorIs(err, ports.ErrConflict)

	order, err := s.orders.CreateOrder(ctx, domain.Order{
		ID: uuid.New().String(), OrderID: "ORD-1", CustomerName: "Kavya", ValueRs: 1200,
		PickupLocation: "A", DeliveryLocation: "B", RouteID: route.ID,
		Status: domain.OrderPending, Priority: domain.PriorityHigh,
	})
	s.Require().NoError(err)
	s.Equal("R100", order.RouteCode)
	s.Nil(order.AssignedDriverID)

	s.ErrorIs(s.routes.DeleteRoute(ctx, route.ID), ports.ErrConflict)

	n, err := s.orders.CountOrdersByStatus(ctx, domain.OrderPending)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *PostgresSuite) TestSimulationHistoryNewestFirst() {
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := s.simulations.SaveResult(ctx, domain.SimulationResult{
			ID:          uuid.New().String(),
			TotalProfit: float64(i),
			Metadata:    domain.SimulationMetadata{NumDrivers: i + 1, StartTime: "09:00"},
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
		s.Require().NoError(err)
	}

	results, err := s.simulations.ListResults(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(2.0, results[0].TotalProfit)
	s.Equal(3, results[0].Metadata.NumDrivers)
	s.Equal("09:00", results[0].Metadata.StartTime)
}

func (s *PostgresSuite) TestUsers() {
	ctx := context.Background()

	s.Require().NoError(SeedAdmin(ctx, s.db, "Admin@Example.com", "secret"))
	s.Require().NoError(SeedAdmin(ctx, s.db, "admin@example.com", "secret2"))

	u, err := s.users.GetUserByEmail(ctx, "admin@example.com")
	s.Require().NoError(err)
	s.Equal(domain.RoleAdmin, u.Role)

	_, err = s.users.CreateUser(ctx, u)
	s.ErrorIs(err, ports.ErrConflict)

	_, err = s.users.GetUserByEmail(ctx, "nobody@example.com")
	s.ErrorIs(err, ports.ErrNotFound)
}
