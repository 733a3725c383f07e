package domain

import (
	"strconv"
	"strings"
	"time"
)

// DriverStatus describes a driver's dispatch availability.
type DriverStatus string

const (
	DriverActive  DriverStatus = "Active"
	DriverOffDuty DriverStatus = "Off Duty"
	DriverOnBreak DriverStatus = "On Break"
)

// WeekDays is the fixed length of a driver's past-week hours history.
const WeekDays = 7

func (s DriverStatus) Valid() bool {
	switch s {
	case DriverActive, DriverOffDuty, DriverOnBreak:
		return true
	}
	return false
}

// Driver is a fleet member eligible for dispatch.
// PastWeekHours always holds exactly WeekDays entries ordered day-1..day-7.
type Driver struct {
	ID                   string
	Name                 string
	Status               DriverStatus
	CurrentShiftHours    float64
	PastWeekHours        []float64
	TotalDeliveriesToday int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NormalizeWeekHours pads or truncates hours to exactly WeekDays entries.
// Negative values are clamped to zero.
func NormalizeWeekHours(hours []float64) []float64 {
	out := make([]float64, WeekDays)
	for i := 0; i < WeekDays && i < len(hours); i++ {
		if hours[i] > 0 {
			out[i] = hours[i]
		}
	}
	return out
}

// ParseWeekHours accepts "8,7,6,5,8,7,6", "8 7 6" or "8|7|6" and returns
// exactly WeekDays values. Unparseable entries count as zero.
func ParseWeekHours(s string) []float64 {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '|' || r == ' ' || r == '\t' || r == '\n'
	})

	hours := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			v = 0
		}
		hours = append(hours, v)
	}
	return NormalizeWeekHours(hours)
}
