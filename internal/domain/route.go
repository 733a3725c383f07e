package domain

// TrafficLevel is the congestion class of a route.
type TrafficLevel string

const (
	TrafficLow    TrafficLevel = "Low"
	TrafficMedium TrafficLevel = "Medium"
	TrafficHigh   TrafficLevel = "High"
)

func (t TrafficLevel) Valid() bool {
	switch t {
	case TrafficLow, TrafficMedium, TrafficHigh:
		return true
	}
	return false
}

// Route is a delivery lane with a nominal, unadjusted duration.
// ID is the storage identity that orders reference; Code is the
// human-facing route id (e.g. "R001").
type Route struct {
	ID              string
	Code            string
	DistanceKm      float64
	TrafficLevel    TrafficLevel
	BaseTimeMinutes float64
}
