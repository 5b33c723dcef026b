package projection

import "github.com/veritasworks/veritas-core/internal/models"

// bucketWeightCutoff gates which matrix entries turn into contribution
// buckets.
const bucketWeightCutoff = 0.2

// relevanceCutoff gates matrix-mapped categories by industry sensitivity.
const relevanceCutoff = 0.5

// pestelMatrix holds the fixed PESTEL-to-operational impact weights in
// [0,1]. Entries below bucketWeightCutoff never produce a contribution.
var pestelMatrix = map[models.PESTELCategory]map[models.OperationalCategory]float64{
	models.PESTELPolitical: {
		models.OpRegulatory:       0.5,
		models.OpSupplyChain:      0.3,
		models.OpWorkforce:        0.2,
		models.OpMarketConditions: 0.2,
		models.OpFinancial:        0.15,
		models.OpCostPressure:     0.1,
		models.OpInfrastructure:   0.1,
	},
	models.PESTELEconomic: {
		models.OpCostPressure:     0.8,
		models.OpFinancial:        0.8,
		models.OpMarketConditions: 0.6,
		models.OpSupplyChain:      0.4,
		models.OpWorkforce:        0.2,
		models.OpInfrastructure:   0.1,
		models.OpRegulatory:       0.1,
	},
	models.PESTELSocial: {
		models.OpWorkforce:        0.7,
		models.OpMarketConditions: 0.5,
		models.OpFinancial:        0.2,
		models.OpSupplyChain:      0.1,
		models.OpInfrastructure:   0.1,
		models.OpCostPressure:     0.1,
		models.OpRegulatory:       0.1,
	},
	models.PESTELTechnological: {
		models.OpInfrastructure:   0.6,
		models.OpSupplyChain:      0.3,
		models.OpMarketConditions: 0.3,
		models.OpWorkforce:        0.2,
		models.OpCostPressure:     0.2,
		models.OpFinancial:        0.2,
		models.OpRegulatory:       0.1,
	},
	models.PESTELEnvironmental: {
		models.OpSupplyChain:      0.7,
		models.OpInfrastructure:   0.6,
		models.OpCostPressure:     0.3,
		models.OpWorkforce:        0.2,
		models.OpMarketConditions: 0.2,
		models.OpRegulatory:       0.2,
		models.OpFinancial:        0.1,
	},
	models.PESTELLegal: {
		models.OpRegulatory:       0.9,
		models.OpCostPressure:     0.4,
		models.OpWorkforce:        0.3,
		models.OpMarketConditions: 0.2,
		models.OpFinancial:        0.2,
		models.OpSupplyChain:      0.2,
		models.OpInfrastructure:   0.1,
	},
}

// legacyCategoryMap overrides the matrix mapping for a small set of codes
// whose operational reach is narrower or wider than their PESTEL category
// implies. When an id is present here the matrix is not consulted.
var legacyCategoryMap = map[string][]models.OperationalCategory{
	"ECON_INFLATION":             {models.OpCostPressure, models.OpFinancial},
	"ECON_FUEL_PRICE":            {models.OpCostPressure, models.OpSupplyChain, models.OpInfrastructure},
	"ECON_CURRENCY_DEPRECIATION": {models.OpCostPressure, models.OpFinancial},
	"ECON_INTEREST_RATES":        {models.OpFinancial, models.OpCostPressure},
	"ENV_DISASTER_IMPACT":        {models.OpSupplyChain, models.OpInfrastructure, models.OpWorkforce},
	"POL_UNREST":                 {models.OpWorkforce, models.OpSupplyChain, models.OpMarketConditions},
	"TECH_POWER_GRID":            {models.OpInfrastructure, models.OpSupplyChain, models.OpCostPressure},
	"SOC_MIGRATION_OUTFLOW":      {models.OpWorkforce},
	"LEG_IMPORT_EXPORT_RULES":    {models.OpRegulatory, models.OpSupplyChain, models.OpCostPressure},
}

// industrySensitivity holds the per-industry 7-vectors. Industries absent
// from this table fall back to all 1.0.
var industrySensitivity = map[models.Industry]map[models.OperationalCategory]float64{
	models.IndustryRetail: {
		models.OpSupplyChain:      1.0,
		models.OpWorkforce:        0.9,
		models.OpInfrastructure:   0.8,
		models.OpCostPressure:     1.1,
		models.OpMarketConditions: 1.2,
		models.OpFinancial:        1.0,
		models.OpRegulatory:       0.7,
	},
	models.IndustryManufacturing: {
		models.OpSupplyChain:      1.3,
		models.OpWorkforce:        1.1,
		models.OpInfrastructure:   1.0,
		models.OpCostPressure:     1.2,
		models.OpMarketConditions: 0.9,
		models.OpFinancial:        1.0,
		models.OpRegulatory:       0.9,
	},
	models.IndustryLogistics: {
		models.OpSupplyChain:      1.2,
		models.OpWorkforce:        1.0,
		models.OpInfrastructure:   1.3,
		models.OpCostPressure:     1.1,
		models.OpMarketConditions: 0.8,
		models.OpFinancial:        0.9,
		models.OpRegulatory:       0.8,
	},
	models.IndustryHospitality: {
		models.OpSupplyChain:      0.8,
		models.OpWorkforce:        1.2,
		models.OpInfrastructure:   0.9,
		models.OpCostPressure:     1.0,
		models.OpMarketConditions: 1.3,
		models.OpFinancial:        0.9,
		models.OpRegulatory:       0.8,
	},
	models.IndustryTechnology: {
		models.OpSupplyChain:      0.7,
		models.OpWorkforce:        1.3,
		models.OpInfrastructure:   1.1,
		models.OpCostPressure:     0.8,
		models.OpMarketConditions: 1.0,
		models.OpFinancial:        1.0,
		models.OpRegulatory:       0.9,
	},
	models.IndustryHealthcare: {
		models.OpSupplyChain:      1.1,
		models.OpWorkforce:        1.3,
		models.OpInfrastructure:   1.0,
		models.OpCostPressure:     0.9,
		models.OpMarketConditions: 0.7,
		models.OpFinancial:        0.9,
		models.OpRegulatory:       1.2,
	},
	models.IndustryFinance: {
		models.OpSupplyChain:      0.4,
		models.OpWorkforce:        0.9,
		models.OpInfrastructure:   1.0,
		models.OpCostPressure:     0.8,
		models.OpMarketConditions: 1.1,
		models.OpFinancial:        1.3,
		models.OpRegulatory:       1.3,
	},
}

// sensitivityFor returns the sensitivity vector for an industry and whether
// it was explicitly configured. Unknown industries get the all-1.0 default.
func sensitivityFor(industry models.Industry) (map[models.OperationalCategory]float64, bool) {
	if vec, ok := industrySensitivity[industry]; ok {
		return vec, true
	}
	vec := make(map[models.OperationalCategory]float64, len(models.AllOperationalCategories))
	for _, cat := range models.AllOperationalCategories {
		vec[cat] = 1.0
	}
	return vec, false
}

// categoriesFor buckets one national indicator into operational categories:
// the legacy override wins outright, otherwise matrix entries at or above
// the weight cutoff whose industry sensitivity clears the relevance cutoff.
func categoriesFor(indicatorID string, pestel models.PESTELCategory, sensitivity map[models.OperationalCategory]float64) []models.OperationalCategory {
	if cats, ok := legacyCategoryMap[indicatorID]; ok {
		return cats
	}

	row, ok := pestelMatrix[pestel]
	if !ok {
		return nil
	}
	var out []models.OperationalCategory
	for _, cat := range models.AllOperationalCategories {
		if row[cat] >= bucketWeightCutoff && sensitivity[cat] >= relevanceCutoff {
			out = append(out, cat)
		}
	}
	return out
}
