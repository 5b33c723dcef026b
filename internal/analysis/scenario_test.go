package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

func TestRunSimulation_ZeroDeltasLeaveBaselineUntouched(t *testing.T) {
	sim := NewSimulator(nil, logger.NewNop())
	baseline := map[string]float64{"supply_chain": 0.5, "demand": 0.7}

	result, err := sim.RunSimulation(baseline, Scenario{
		Name:         "no-op",
		DurationDays: 10,
	})
	require.NoError(t, err)
	require.Len(t, result.Days, 10)

	for _, day := range result.Days {
		assert.Equal(t, baseline, day.Indicators)
	}
	assert.Equal(t, 0.0, result.OverallImpact)
	assert.Equal(t, 0.0, result.PeakImpact)
	assert.Equal(t, "neutral", result.Direction)
	assert.Equal(t, "low", result.Severity)
	assert.Equal(t, 0, result.RecoveryTimeDays)
}

func TestRunSimulation_RejectsNonPositiveDuration(t *testing.T) {
	sim := NewSimulator(nil, logger.NewNop())
	_, err := sim.RunSimulation(map[string]float64{"a": 0.5}, Scenario{Name: "bad"})
	assert.ErrorIs(t, err, models.ErrMalformedInput)
}

func TestRunSimulation_PropagationRespectsDelay(t *testing.T) {
	sim := NewSimulator(nil, logger.NewNop())
	baseline := map[string]float64{"supply_chain": 0.8, "production": 0.7}

	result, err := sim.RunSimulation(baseline, Scenario{
		Name:               "port closure",
		AffectedIndicators: map[string]float64{"supply_chain": -0.4},
		DurationDays:       14,
	})
	require.NoError(t, err)

	// Direct effect lands immediately, the carried one only after the
	// 3 day supply_chain -> production delay.
	assert.InDelta(t, 0.4, result.Days[0].Indicators["supply_chain"], 1e-9)
	assert.InDelta(t, 0.7, result.Days[2].Indicators["production"], 1e-9)
	assert.Less(t, result.Days[3].Indicators["production"], 0.7)

	assert.Equal(t, "deteriorating", result.Direction)
	assert.Equal(t, "critical", result.Severity)
	assert.Greater(t, result.OverallImpact, 0.3)
	assert.Greater(t, result.RecoveryTimeDays, 0)
	assert.LessOrEqual(t, result.RecoveryTimeDays, maxRecoveryDays)
}

func TestRunSimulation_OnsetRampsLinearly(t *testing.T) {
	sim := NewSimulator([]PropagationRule{}, logger.NewNop())
	baseline := map[string]float64{"supply_chain": 0.8}

	result, err := sim.RunSimulation(baseline, Scenario{
		Name:               "slow onset",
		AffectedIndicators: map[string]float64{"supply_chain": -0.4},
		DurationDays:       10,
		OnsetDays:          4,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.8-0.4*0.25, result.Days[0].Indicators["supply_chain"], 1e-9)
	assert.InDelta(t, 0.8-0.4*0.50, result.Days[1].Indicators["supply_chain"], 1e-9)
	assert.InDelta(t, 0.4, result.Days[3].Indicators["supply_chain"], 1e-9)
	assert.InDelta(t, 0.4, result.Days[9].Indicators["supply_chain"], 1e-9)
}

func TestRunSimulation_RecoveryTailFadesOut(t *testing.T) {
	sim := NewSimulator([]PropagationRule{}, logger.NewNop())
	baseline := map[string]float64{"demand": 0.6}

	result, err := sim.RunSimulation(baseline, Scenario{
		Name:               "fading shock",
		AffectedIndicators: map[string]float64{"demand": -0.3},
		DurationDays:       10,
		RecoveryDays:       5,
	})
	require.NoError(t, err)

	// Full effect through the plateau, then a linear climb back.
	assert.InDelta(t, 0.3, result.Days[4].Indicators["demand"], 1e-9)
	assert.InDelta(t, 0.3, result.Days[5].Indicators["demand"], 1e-9)
	last := result.Days[5].Indicators["demand"]
	for d := 6; d < 10; d++ {
		v := result.Days[d].Indicators["demand"]
		assert.Greater(t, v, last)
		last = v
	}
	assert.Equal(t, 0, result.PeakDay)
}

func TestRunSimulation_ClampsToUnitRange(t *testing.T) {
	sim := NewSimulator([]PropagationRule{}, logger.NewNop())
	baseline := map[string]float64{"demand": 0.2, "revenue": 0.9}

	result, err := sim.RunSimulation(baseline, Scenario{
		Name: "extremes",
		AffectedIndicators: map[string]float64{
			"demand":  -0.8,
			"revenue": 0.5,
		},
		DurationDays: 3,
	})
	require.NoError(t, err)

	for _, day := range result.Days {
		assert.Equal(t, 0.0, day.Indicators["demand"])
		assert.Equal(t, 1.0, day.Indicators["revenue"])
	}
}

func TestMonteCarlo_DeterministicForSeed(t *testing.T) {
	sim := NewSimulator(nil, logger.NewNop())
	baseline := map[string]float64{"supply_chain": 0.8, "production": 0.7}
	scenario := Scenario{
		Name:               "port closure",
		AffectedIndicators: map[string]float64{"supply_chain": -0.3},
		DurationDays:       14,
	}

	first, err := sim.MonteCarlo(baseline, scenario, 200, 0.2, 7)
	require.NoError(t, err)
	second, err := sim.MonteCarlo(baseline, scenario, 200, 0.2, 7)
	require.NoError(t, err)

	assert.Equal(t, first.MeanImpact, second.MeanImpact)
	assert.Equal(t, first.P5, second.P5)
	assert.Equal(t, first.P95, second.P95)

	assert.Equal(t, 200, first.Runs)
	total := 0
	for _, n := range first.SeverityDistribution {
		total += n
	}
	assert.Equal(t, 200, total)
	assert.LessOrEqual(t, first.P5, first.P95)

	_, err = sim.MonteCarlo(baseline, scenario, 0, 0.2, 7)
	assert.ErrorIs(t, err, models.ErrMalformedInput)
}

func TestSensitivityAnalysis_LinearScenarioHasUnitElasticity(t *testing.T) {
	sim := NewSimulator([]PropagationRule{}, logger.NewNop())
	baseline := map[string]float64{"workforce": 0.5}

	entries, err := sim.SensitivityAnalysis(baseline, Scenario{
		Name:               "strike",
		AffectedIndicators: map[string]float64{"workforce": -0.2},
		DurationDays:       5,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "workforce", entries[0].Indicator)
	assert.InDelta(t, 1.0, entries[0].Elasticity, 1e-9)
	assert.InDelta(t, 0.03, entries[0].CriticalThreshold, 1e-9)
}
