package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dispatch-service/internal/config"
	"dispatch-service/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedPath = "../../data/seeds/dispatch.json"

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSimulateOverSeedDataset(t *testing.T) {
	out, err := runCLI(t, "simulate", "--data", seedPath, "--drivers", "3", "--start", "09:00", "--max-hours", "8")
	require.NoError(t, err)

	var got simulateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, 20, got.Report.Processed())
	assert.Len(t, got.Report.DriverUtilization, 3)
	assert.Nil(t, got.Report.Details)
	assert.Equal(t, 4, got.Metadata.AvailableDrivers)
	assert.Equal(t, "09:00", got.Metadata.StartTime)
}

func TestSimulateDetailsAndStrategy(t *testing.T) {
	out, err := runCLI(t, "simulate", "--data", seedPath, "--drivers", "2", "--strategy", "least-loaded", "--details")
	require.NoError(t, err)

	var got simulateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Report.Details, 20)
}

func TestSimulateErrors(t *testing.T) {
	_, err := runCLI(t, "simulate", "--data", seedPath, "--drivers", "9")
	assert.True(t, errors.Is(err, services.ErrNotEnoughDrivers), "got %v", err)

	_, err = runCLI(t, "simulate", "--data", seedPath, "--drivers", "1", "--start", "25:00")
	var verr *services.ValidationError
	assert.True(t, errors.As(err, &verr), "got %v", err)

	_, err = runCLI(t, "simulate", "--data", seedPath, "--drivers", "1", "--strategy", "fastest")
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("fatigue_multiplier: 0.5\n"), 0o600))
	_, err = runCLI(t, "simulate", "--data", seedPath, "--drivers", "1", "--rules", bad)
	assert.ErrorContains(t, err, "fatigue_multiplier")

	_, err = runCLI(t, "simulate", "--data", filepath.Join(t.TempDir(), "missing.json"), "--drivers", "1")
	assert.Error(t, err)
}

func TestSimulateWithRulesFile(t *testing.T) {
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("fuel_cost_per_km: 0\nhigh_traffic_surcharge_per_km: 0\n"), 0o600))

	out, err := runCLI(t, "simulate", "--data", seedPath, "--drivers", "2", "--rules", rules)
	require.NoError(t, err)

	var got simulateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Zero(t, got.Report.FuelCost)
}

func TestCommandContextOutsideExecute(t *testing.T) {
	cmd := newSimulateCmd(&config.Config{})
	assert.NotNil(t, commandContext(cmd))

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	cmd.SetContext(ctx)
	assert.Equal(t, ctx, commandContext(cmd))
}
