package simulation

import (
	"errors"
	"fmt"
	"math"
	"os"

	"dispatch-service/internal/domain"

	"gopkg.in/yaml.v3"
)

// RuleSet holds the business constants applied to every order.
type RuleSet struct {
	FatigueThresholdHours float64 `yaml:"fatigue_threshold_hours"`
	FatigueMultiplier     float64 `yaml:"fatigue_multiplier"`
	GraceMinutes          float64 `yaml:"grace_minutes"`
	LatePenalty           float64 `yaml:"late_penalty"`
	FuelCostPerKm         float64 `yaml:"fuel_cost_per_km"`
	HighTrafficSurcharge  float64 `yaml:"high_traffic_surcharge_per_km"`
	HighValueThreshold    float64 `yaml:"high_value_threshold"`
	HighValueBonusRate    float64 `yaml:"high_value_bonus_rate"`
}

// DefaultRules returns the production rule set.
func DefaultRules() RuleSet {
	return RuleSet{
		FatigueThresholdHours: 8,
		FatigueMultiplier:     1.3,
		GraceMinutes:          10,
		LatePenalty:           50,
		FuelCostPerKm:         5,
		HighTrafficSurcharge:  2,
		HighValueThreshold:    1000,
		HighValueBonusRate:    0.10,
	}
}

// LoadRules reads a YAML rule file on top of DefaultRules, so a file
// only needs the keys it changes.
func LoadRules(path string) (RuleSet, error) {
	rules := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("load rules: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("load rules: parse %q: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return rules, fmt.Errorf("load rules: %w", err)
	}

	return rules, nil
}

func (r RuleSet) Validate() error {
	var errs []error
	if r.FatigueThresholdHours < 0 {
		errs = append(errs, errors.New("fatigue_threshold_hours must be >= 0"))
	}
	if r.FatigueMultiplier < 1 {
		errs = append(errs, errors.New("fatigue_multiplier must be >= 1"))
	}
	if r.GraceMinutes < 0 {
		errs = append(errs, errors.New("grace_minutes must be >= 0"))
	}
	if r.LatePenalty < 0 {
		errs = append(errs, errors.New("late_penalty must be >= 0"))
	}
	if r.FuelCostPerKm < 0 || r.HighTrafficSurcharge < 0 {
		errs = append(errs, errors.New("fuel costs must be >= 0"))
	}
	if r.HighValueBonusRate < 0 || r.HighValueBonusRate > 1 {
		errs = append(errs, errors.New("high_value_bonus_rate must be within [0,1]"))
	}
	return errors.Join(errs...)
}

// IsFatigued applies the start-of-run fatigue test.
func (r RuleSet) IsFatigued(currentShiftHours float64) bool {
	return currentShiftHours > r.FatigueThresholdHours
}

// ActualDeliveryTime applies the fatigue multiplier to the nominal route time.
func (r RuleSet) ActualDeliveryTime(baseTimeMinutes float64, fatigued bool) float64 {
	if fatigued {
		return baseTimeMinutes * r.FatigueMultiplier
	}
	return baseTimeMinutes
}

func (r RuleSet) AllowedTime(baseTimeMinutes float64) float64 {
	return baseTimeMinutes + r.GraceMinutes
}

func (r RuleSet) FuelCost(route domain.Route) float64 {
	cost := route.DistanceKm * r.FuelCostPerKm
	if route.TrafficLevel == domain.TrafficHigh {
		cost += route.DistanceKm * r.HighTrafficSurcharge
	}
	return cost
}

// Bonus is credited only for high-value orders delivered on time.
func (r RuleSet) Bonus(valueRs float64, late bool) float64 {
	if valueRs > r.HighValueThreshold && !late {
		return valueRs * r.HighValueBonusRate
	}
	return 0
}

func (r RuleSet) Penalty(late bool) float64 {
	if late {
		return r.LatePenalty
	}
	return 0
}

// round2 rounds half up to 2 decimals.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
