package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.InDelta(t, 1.0, cfg.Weights.Sum(), WeightTolerance)
}

func TestValidateRejectsBadWeights(t *testing.T) {
	cfg := Default()
	cfg.Weights.Pension = 0.50 // sum now 1.2
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category weights")

	cfg = Default()
	cfg.Weights.Debt = -0.10
	cfg.Weights.Pension = 0.50
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyScenarios(t *testing.T) {
	cfg := Default()
	cfg.Projection.Scenarios = nil
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Projection.Scenarios["broken"] = ScenarioMultipliers{RevenueCAGR: 0, BaseInflation: 1, PensionGrowth: 1}
	assert.Error(t, cfg.Validate())
}

func TestScenarioLookup(t *testing.T) {
	cfg := Default()

	m, err := cfg.Scenario("pessimistic")
	require.NoError(t, err)
	assert.Equal(t, 0.75, m.RevenueCAGR)
	assert.Equal(t, 1.4, m.PensionGrowth)

	_, err = cfg.Scenario("apocalyptic")
	assert.Error(t, err)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	content := []byte("model_version: v2.1\nprojection:\n  base_pension_growth: 0.06\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "v2.1", cfg.ModelVersion)
	assert.Equal(t, 0.06, cfg.Projection.BasePensionGrowth)
	// Untouched defaults survive the overlay.
	assert.Equal(t, 0.25, cfg.Weights.Liquidity)
	assert.Equal(t, 0.15, cfg.Projection.FallbackReserveRatio)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte("category_weights:\n  pension: 0.9\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err, "overlay that breaks the weight sum must be rejected")
}
