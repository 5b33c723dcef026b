package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

func snapshotWith(indicators map[string]models.IndicatorValue, trends map[string]models.IndicatorTrend) *models.Layer2Output {
	return &models.Layer2Output{
		Timestamp:  time.Now(),
		Indicators: indicators,
		Trends:     trends,
	}
}

func TestProject_RetailInflationOnly(t *testing.T) {
	// S4: ECON_INFLATION at 80, confidence 1.0, retail sensitivity
	// cost_pressure 1.1. Expect burden 88, stored health 12, financial 80,
	// five neutral categories, overall 56.
	e := NewEngine(logger.NewNop())
	profile := &models.CompanyProfile{ID: "c1", Industry: models.IndustryRetail}
	snap := snapshotWith(map[string]models.IndicatorValue{
		"ECON_INFLATION": {IndicatorID: "ECON_INFLATION", Category: models.PESTELEconomic, Value: 80, Confidence: 1.0},
	}, nil)

	out := e.Project(profile, snap)

	assert.InDelta(t, 12.0, out.CategoryHealth[models.OpCostPressure], 1e-9)
	assert.InDelta(t, 80.0, out.CategoryHealth[models.OpFinancial], 1e-9)
	for _, cat := range []models.OperationalCategory{
		models.OpSupplyChain, models.OpWorkforce, models.OpInfrastructure,
		models.OpMarketConditions, models.OpRegulatory,
	} {
		assert.InDelta(t, 50.0, out.CategoryHealth[cat], 1e-9, "category %s", cat)
	}
	assert.InDelta(t, 56.0, out.OverallHealth, 1e-9)
	assert.Equal(t, "configured", out.SensitivityProfile)

	// Burden 88 crosses the critical cutoff.
	require.Len(t, out.CriticalIssues, 1)
	assert.Contains(t, out.CriticalIssues[0], "cost_pressure")

	ops := out.Indicators["OPS_COST_PRESSURE"]
	assert.InDelta(t, 88.0, ops.Value, 1e-9)
	assert.Equal(t, models.OpCostPressure, ops.Category)
	assert.Equal(t, []string{"ECON_INFLATION"}, ops.Contributors)
	assert.Equal(t, opsConfidence, ops.Confidence)
}

func TestProject_AllSevenCategoriesAlwaysPresent(t *testing.T) {
	e := NewEngine(logger.NewNop())
	out := e.Project(&models.CompanyProfile{ID: "c1", Industry: models.IndustryRetail},
		snapshotWith(nil, nil))

	assert.Len(t, out.CategoryHealth, 7)
	assert.Len(t, out.Indicators, 7)
	for _, cat := range models.AllOperationalCategories {
		h, ok := out.CategoryHealth[cat]
		require.True(t, ok)
		assert.InDelta(t, 50.0, h, 1e-9)
	}
	assert.Empty(t, out.CriticalIssues)
	assert.InDelta(t, 50.0, out.OverallHealth, 1e-9)
}

func TestProject_InversionLaw(t *testing.T) {
	// For inverted categories stored health plus raw impact equals 100.
	e := NewEngine(logger.NewNop())
	snap := snapshotWith(map[string]models.IndicatorValue{
		"ECON_INFLATION":          {IndicatorID: "ECON_INFLATION", Category: models.PESTELEconomic, Value: 65, Confidence: 0.9},
		"LEG_IMPORT_EXPORT_RULES": {IndicatorID: "LEG_IMPORT_EXPORT_RULES", Category: models.PESTELLegal, Value: 70, Confidence: 0.8},
	}, nil)
	out := e.Project(&models.CompanyProfile{ID: "c1", Industry: models.IndustryManufacturing}, snap)

	for cat := range models.InvertedCategories {
		code := opsCodes[cat]
		assert.InDelta(t, 100.0, out.CategoryHealth[cat]+out.Indicators[code].Value, 1e-9,
			"category %s", cat)
	}
}

func TestProject_UnknownIndustryUsesDefaultSensitivity(t *testing.T) {
	e := NewEngine(logger.NewNop())
	snap := snapshotWith(map[string]models.IndicatorValue{
		"ECON_INFLATION": {IndicatorID: "ECON_INFLATION", Category: models.PESTELEconomic, Value: 80, Confidence: 1.0},
	}, nil)
	out := e.Project(&models.CompanyProfile{ID: "c1", Industry: "mining"}, snap)

	assert.Equal(t, "default", out.SensitivityProfile)
	// Sensitivity 1.0: burden 80, health 20.
	assert.InDelta(t, 20.0, out.CategoryHealth[models.OpCostPressure], 1e-9)
}

func TestProject_TrendInheritedFromDominantContributor(t *testing.T) {
	e := NewEngine(logger.NewNop())
	snap := snapshotWith(map[string]models.IndicatorValue{
		"ECON_INFLATION":  {IndicatorID: "ECON_INFLATION", Category: models.PESTELEconomic, Value: 90, Confidence: 1.0},
		"ECON_FUEL_PRICE": {IndicatorID: "ECON_FUEL_PRICE", Category: models.PESTELEconomic, Value: 40, Confidence: 0.5},
	}, map[string]models.IndicatorTrend{
		"ECON_INFLATION":  {IndicatorID: "ECON_INFLATION", Direction: models.TrendRising},
		"ECON_FUEL_PRICE": {IndicatorID: "ECON_FUEL_PRICE", Direction: models.TrendFalling},
	})
	out := e.Project(&models.CompanyProfile{ID: "c1", Industry: models.IndustryRetail}, snap)

	assert.Equal(t, models.TrendRising, out.Trends["OPS_COST_PRESSURE"])
}

func TestProject_ValueClampedAtHundred(t *testing.T) {
	e := NewEngine(logger.NewNop())
	snap := snapshotWith(map[string]models.IndicatorValue{
		"ECON_INFLATION": {IndicatorID: "ECON_INFLATION", Category: models.PESTELEconomic, Value: 100, Confidence: 1.0},
	}, nil)
	// Retail sensitivity 1.1 would push impact to 110 without the clamp.
	out := e.Project(&models.CompanyProfile{ID: "c1", Industry: models.IndustryRetail}, snap)
	assert.InDelta(t, 100.0, out.Indicators["OPS_COST_PRESSURE"].Value, 1e-9)
	assert.InDelta(t, 0.0, out.CategoryHealth[models.OpCostPressure], 1e-9)
}

func TestCatalogue_IDsUniqueAndComplete(t *testing.T) {
	seen := make(map[string]bool)
	perCategory := make(map[models.PESTELCategory]int)
	for _, d := range Catalogue {
		require.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
		require.NotEmpty(t, d.Name)
		require.NotZero(t, d.BaseWeight)
		perCategory[d.Category]++
	}
	for _, cat := range models.AllPESTELCategories {
		assert.Greater(t, perCategory[cat], 10, "category %s", cat)
	}
}

func TestMatrix_WeightsWithinUnitInterval(t *testing.T) {
	for pestel, row := range pestelMatrix {
		for cat, w := range row {
			assert.GreaterOrEqual(t, w, 0.0, "%s/%s", pestel, cat)
			assert.LessOrEqual(t, w, 1.0, "%s/%s", pestel, cat)
		}
	}
}

func TestCategoriesFor_LegacyOverrideWins(t *testing.T) {
	sens, _ := sensitivityFor(models.IndustryRetail)
	cats := categoriesFor("ECON_INFLATION", models.PESTELEconomic, sens)
	assert.Equal(t, []models.OperationalCategory{models.OpCostPressure, models.OpFinancial}, cats)
}

func TestCategoriesFor_MatrixRespectsRelevanceCutoff(t *testing.T) {
	// Sensitivity below 0.5 drops an otherwise mapped category.
	sens := map[models.OperationalCategory]float64{
		models.OpCostPressure:     0.4,
		models.OpFinancial:        1.0,
		models.OpMarketConditions: 1.0,
		models.OpSupplyChain:      1.0,
	}
	cats := categoriesFor("ECON_BUSINESS_CONFIDENCE", models.PESTELEconomic, sens)
	assert.NotContains(t, cats, models.OpCostPressure)
	assert.Contains(t, cats, models.OpFinancial)
}
