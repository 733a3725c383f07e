package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dispatch-service/internal/adapters/distance"
	"dispatch-service/internal/adapters/memory"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/ports"
	"dispatch-service/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) PingContext(ctx context.Context) error { return p.err }

type testServer struct {
	handler http.Handler
	store   *memory.Store
	token   string
}

func newTestServer(t *testing.T, estimator ports.DistanceProvider) *testServer {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	_, err := store.CreateRoute(ctx, domain.Route{ID: "route-1", Code: "R001", DistanceKm: 10, TrafficLevel: domain.TrafficLow, BaseTimeMinutes: 30})
	require.NoError(t, err)
	_, err = store.CreateDriver(ctx, domain.Driver{ID: "driver-1", Name: "Amit", Status: domain.DriverActive, CurrentShiftHours: 4})
	require.NoError(t, err)
	_, err = store.CreateOrder(ctx, domain.Order{
		ID: "order-1", OrderID: "ORD-001", ValueRs: 1500, RouteID: "route-1",
		Status: domain.OrderPending, Priority: domain.PriorityHigh,
		OrderDate: time.Date(2026, 10, 18, 6, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	auth := &services.AuthService{Users: store, Secret: []byte("router-test-secret")}
	user, err := auth.Register(ctx, "Ops", "ops@example.com", "password123", domain.RoleAdmin)
	require.NoError(t, err)
	token, err := auth.Issue(user)
	require.NoError(t, err)

	sim := &services.SimulationService{Drivers: store, Routes: store, Orders: store, Results: store}

	h := NewRouter(Deps{
		Drivers:        store,
		Routes:         store,
		Orders:         store,
		Simulation:     sim,
		Auth:           auth,
		Estimator:      estimator,
		AllowedOrigins: []string{"http://localhost:5173"},
	})
	return &testServer{handler: h, store: store, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	h := NewRouter(Deps{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])

	h = NewRouter(Deps{DB: pinger{err: errors.New("down")}})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decode[map[string]string](t, rec)["status"])
}

func TestProtectedRoutesRequireBearerToken(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/api/drivers", "/api/routes", "/api/orders", "/api/simulation/history"} {
		rec := s.do(t, http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/drivers", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthLoginAndRegister(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ops@example.com", "password": "password123"}, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.NotEmpty(t, body["token"])

	rec = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ops@example.com", "password": "nope"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/register", map[string]string{"name": "New", "email": "new@example.com", "password": "longenough"}, false)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode[map[string]any](t, rec)["user"].(map[string]any)
	assert.Equal(t, domain.RoleManager, user["role"])

	rec = s.do(t, http.MethodPost, "/api/auth/register", map[string]string{"name": "Dup", "email": "new@example.com", "password": "longenough"}, false)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/register", map[string]string{"name": "Short", "email": "short@example.com", "password": "x"}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDriverCRUD(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/drivers", map[string]any{
		"name":          "Bina",
		"pastWeekHours": "8,7,6",
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "Active", created["status"])
	assert.Len(t, created["pastWeekHours"], domain.WeekDays)
	id := created["id"].(string)

	rec = s.do(t, http.MethodPut, "/api/drivers/"+id, map[string]any{"status": "On Break"}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "On Break", decode[map[string]any](t, rec)["status"])

	rec = s.do(t, http.MethodPut, "/api/drivers/"+id, map[string]any{"status": "Sleeping"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[map[string]any](t, rec)["errors"])

	rec = s.do(t, http.MethodPost, "/api/drivers", map[string]any{"currentShiftHours": 3}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/drivers", `{"name":"X","unknown":1}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/drivers", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = s.do(t, http.MethodDelete, "/api/drivers/"+id, nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/drivers/"+id, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderCreateResolvesRoute(t *testing.T) {
	s := newTestServer(t, nil)

	order := map[string]any{
		"orderId":          "ORD-900",
		"customerName":     "Kiran",
		"valueRs":          640,
		"pickupLocation":   "Depot",
		"deliveryLocation": "Bandra",
		"assignedRoute":    "route-1",
	}
	rec := s.do(t, http.MethodPost, "/api/orders", order, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "R001", created["routeCode"])
	assert.Equal(t, "Pending", created["status"])
	assert.Equal(t, "Medium", created["priorityLevel"])
	assert.EqualValues(t, 30, created["estimatedDeliveryTimeMinutes"])

	order["orderId"] = "ORD-901"
	order["assignedRoute"] = "missing"
	rec = s.do(t, http.MethodPost, "/api/orders", order, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/orders", map[string]any{"orderId": "ORD-902"}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decode[map[string]any](t, rec)["errors"], 5)

	rec = s.do(t, http.MethodDelete, "/api/routes/route-1", nil, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouteEstimate(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPost, "/api/routes/estimate", map[string]string{"origin": "Depot", "destination": "Bandra"}, true)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	provider := distance.NewMockDistanceProvider([]distance.MockPair{{From: "Depot", To: "Bandra", Meters: 8000, Seconds: 1200}})
	s = newTestServer(t, provider)
	rec = s.do(t, http.MethodPost, "/api/routes/estimate", map[string]string{"origin": "Depot", "destination": "Bandra"}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Depot", body["origin"])
	assert.EqualValues(t, 8, body["distanceKm"])
	assert.EqualValues(t, 20, body["baseTimeMinutes"])
}

func TestSimulationEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	params := map[string]any{"numDrivers": 1, "startTime": "09:00", "maxHoursPerDay": 8}

	rec := s.do(t, http.MethodPost, "/api/simulation", params, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Simulation completed successfully", body["message"])
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 1600, data["totalProfit"])
	assert.EqualValues(t, 1, data["onTimeDeliveries"])
	assert.NotContains(t, data, "details")
	params0 := data["simulationParams"].(map[string]any)
	assert.Equal(t, "ops@example.com", params0["runBy"])

	rec = s.do(t, http.MethodPost, "/api/simulation?details=true", params, true)
	require.Equal(t, http.StatusOK, rec.Code)
	data = decode[map[string]any](t, rec)["data"].(map[string]any)
	assert.Len(t, data["details"], 1)

	rec = s.do(t, http.MethodPost, "/api/simulation", map[string]any{"numDrivers": 0, "startTime": "9am", "maxHoursPerDay": 30}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body = decode[map[string]any](t, rec)
	assert.Equal(t, "Invalid simulation parameters", body["message"])
	assert.Len(t, body["errors"], 3)

	rec = s.do(t, http.MethodPost, "/api/simulation", map[string]any{"numDrivers": 5, "startTime": "09:00", "maxHoursPerDay": 8}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]any](t, rec)["message"], "Requested: 5, Available: 1")

	rec = s.do(t, http.MethodGet, "/api/simulation/history?limit=1", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/simulation/history?limit=abc", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/simulation/status", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[map[string]any](t, rec)
	assert.Equal(t, true, status["systemReady"])
	assert.EqualValues(t, 1, status["pendingOrders"])
}
