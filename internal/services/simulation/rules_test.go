package simulation

import (
	"os"
	"path/filepath"
	"testing"

	"dispatch-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRules_PartialFileKeepsDefaults(t *testing.T) {
	path := writeTempYAML(t, `
late_penalty: 75
fatigue_multiplier: 1.5
`)

	rules, err := LoadRules(path)
	require.NoError(t, err)

	want := DefaultRules()
	want.LatePenalty = 75
	want.FatigueMultiplier = 1.5
	assert.Equal(t, want, rules)
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := LoadRules("/nonexistent/rules.yaml")
	assert.Error(t, err)
}

func TestLoadRules_InvalidYAML(t *testing.T) {
	_, err := LoadRules(writeTempYAML(t, "{{invalid yaml"))
	assert.Error(t, err)
}

func TestLoadRules_RejectsInvalidValues(t *testing.T) {
	_, err := LoadRules(writeTempYAML(t, "fatigue_multiplier: 0.5\nhigh_value_bonus_rate: 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fatigue_multiplier")
	assert.Contains(t, err.Error(), "high_value_bonus_rate")
}

func TestRuleSet_DefaultsValidate(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())
}

func TestRuleSet_FatigueThresholdIsExclusive(t *testing.T) {
	r := DefaultRules()
	assert.False(t, r.IsFatigued(8))
	assert.True(t, r.IsFatigued(8.01))
}

func TestRuleSet_FuelCost(t *testing.T) {
	r := DefaultRules()
	assert.Equal(t, 70.0, r.FuelCost(domain.Route{DistanceKm: 10, TrafficLevel: domain.TrafficHigh}))
	assert.Equal(t, 50.0, r.FuelCost(domain.Route{DistanceKm: 10, TrafficLevel: domain.TrafficLow}))
}

func TestRound2_HalfUp(t *testing.T) {
	assert.Equal(t, 1.01, round2(1.005+1e-12))
	assert.Equal(t, -2.0, round2(-2.005+1e-12))
	assert.Equal(t, 0.0, round2(0))
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, RoundRobin, s)

	s, err = ParseStrategy("least-loaded")
	require.NoError(t, err)
	assert.Equal(t, LeastLoaded, s)

	_, err = ParseStrategy("random")
	assert.Error(t, err)
}
