package simulation

import "fmt"

// Strategy selects which workload receives the next order.
type Strategy string

const (
	// RoundRobin assigns order i to workload i mod n regardless of load.
	RoundRobin Strategy = "round-robin"
	// LeastLoaded assigns to the workload with the fewest hours worked so far.
	// Ties go to the lowest selection index.
	LeastLoaded Strategy = "least-loaded"
)

// ParseStrategy maps a configured name to a Strategy. Empty means RoundRobin.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", RoundRobin:
		return RoundRobin, nil
	case LeastLoaded:
		return LeastLoaded, nil
	}
	return "", fmt.Errorf("unknown assignment strategy %q", s)
}

// pick returns the index into workloads for the order at position i.
// workloads must be non-empty.
func (s Strategy) pick(i int, workloads []*DriverWorkload) int {
	switch s {
	case LeastLoaded:
		best := 0
		for j := 1; j < len(workloads); j++ {
			if workloads[j].HoursWorked < workloads[best].HoursWorked {
				best = j
			}
		}
		return best
	default:
		return i % len(workloads)
	}
}
