package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"dispatch-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const sampleYAML = `
drivers:
  - name: Asha
    currentShiftHours: 9
    pastWeekHours: "8,7,6"
  - name: Bilal
    status: Off Duty
routes:
  - routeId: R001
    distanceKm: 10
    trafficLevel: High
    baseTimeMinutes: 30
orders:
  - orderId: ORD-001
    valueRs: 1500
    routeId: R001
  - orderId: ORD-002
    valueRs: 200
    routeId: R001
    status: Delivered
`

func TestLoad_YAMLAppliesDefaults(t *testing.T) {
	ds, err := Load(writeFile(t, "fleet.yaml", sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, domain.DriverActive, ds.Drivers[0].Status)
	assert.Equal(t, domain.WeekHours{8, 7, 6, 0, 0, 0, 0}, ds.Drivers[0].PastWeekHours)
	assert.Len(t, ds.Drivers[1].PastWeekHours, domain.WeekDays)
	assert.Equal(t, domain.OrderPending, ds.Orders[0].Status)
	assert.Equal(t, domain.PriorityMedium, ds.Orders[0].Priority)
}

func TestLoad_DomainViews(t *testing.T) {
	ds, err := Load(writeFile(t, "fleet.yml", sampleYAML))
	require.NoError(t, err)

	drivers := ds.DomainDrivers()
	require.Len(t, drivers, 2)
	assert.Equal(t, "driver-1", drivers[0].ID)
	assert.Equal(t, "Asha", drivers[0].Name)
	assert.Equal(t, domain.DriverOffDuty, drivers[1].Status)
	assert.Len(t, drivers[0].PastWeekHours, domain.WeekDays)

	routes := ds.DomainRoutes()
	require.Len(t, routes, 1)
	assert.Equal(t, "R001", routes[0].ID)

	orders := ds.DomainOrders()
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD-001", orders[0].OrderID)
	assert.Equal(t, "R001", orders[0].RouteID)
	assert.Equal(t, "R001", orders[0].RouteCode)
	assert.Equal(t, domain.OrderDelivered, orders[1].Status)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "fleet.json", `{
		"drivers": [{"name": "Asha", "pastWeekHours": [8, 8, 8, 8, 8, 8, 8, 8]}],
		"routes": [{"routeId": "R9", "distanceKm": 4, "trafficLevel": "Low", "baseTimeMinutes": 12}],
		"orders": [{"orderId": "O1", "valueRs": 10, "routeId": "R9", "status": "In Transit", "priority": "High"}]
	}`)

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, ds.Drivers[0].PastWeekHours, domain.WeekDays)
	assert.Equal(t, domain.OrderInTransit, ds.Orders[0].Status)
}

func TestLoad_CollectsAllProblems(t *testing.T) {
	path := writeFile(t, "bad.json", `{
		"drivers": [{"name": "", "status": "Napping"}],
		"routes": [
			{"routeId": "R1", "distanceKm": 0, "trafficLevel": "Low", "baseTimeMinutes": 5},
			{"routeId": "R1", "distanceKm": 3, "trafficLevel": "Jammed", "baseTimeMinutes": 5}
		],
		"orders": [{"orderId": "O1", "priority": "Urgent"}]
	}`)

	_, err := Load(path)
	require.Error(t, err)
	for _, want := range []string{
		"name is required",
		"invalid status",
		"distanceKm must be positive",
		"duplicate routeId",
		"invalid trafficLevel",
		"invalid priority",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "broken.json", `{"drivers": [`))
	assert.Error(t, err)
}

func TestLoad_SeedFile(t *testing.T) {
	ds, err := Load(filepath.Join("..", "..", "data", "seeds", "dispatch.json"))
	require.NoError(t, err)

	assert.Len(t, ds.Drivers, 5)
	assert.Len(t, ds.Routes, 6)
	assert.Len(t, ds.Orders, 20)
	active := 0
	for _, d := range ds.DomainDrivers() {
		if d.Status == domain.DriverActive {
			active++
		}
	}
	assert.Equal(t, 4, active)
}
