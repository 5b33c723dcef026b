package models

import "time"

// Industry enumerates the industries with configured sensitivity vectors.
type Industry string

const (
	IndustryRetail        Industry = "retail"
	IndustryManufacturing Industry = "manufacturing"
	IndustryLogistics     Industry = "logistics"
	IndustryHospitality   Industry = "hospitality"
	IndustryTechnology    Industry = "technology"
	IndustryHealthcare    Industry = "healthcare"
	IndustryFinance       Industry = "finance"
)

// OperationalCategory is one of the seven company-level concerns synthesized
// from PESTEL indicators.
type OperationalCategory string

const (
	OpSupplyChain      OperationalCategory = "supply_chain"
	OpWorkforce        OperationalCategory = "workforce"
	OpInfrastructure   OperationalCategory = "infrastructure"
	OpCostPressure     OperationalCategory = "cost_pressure"
	OpMarketConditions OperationalCategory = "market_conditions"
	OpFinancial        OperationalCategory = "financial"
	OpRegulatory       OperationalCategory = "regulatory"
)

// AllOperationalCategories in canonical order.
var AllOperationalCategories = []OperationalCategory{
	OpSupplyChain, OpWorkforce, OpInfrastructure, OpCostPressure,
	OpMarketConditions, OpFinancial, OpRegulatory,
}

// InvertedCategories hold burden semantics: a high weighted input impact
// means a high burden, so stored health = 100 - impact.
var InvertedCategories = map[OperationalCategory]bool{
	OpCostPressure: true,
	OpRegulatory:   true,
}

// CompanyProfile describes the company whose operational indicators are
// being derived.
type CompanyProfile struct {
	ID          string   `json:"company_id"`
	Name        string   `json:"name,omitempty"`
	Industry    Industry `json:"industry"`
	SubIndustry string   `json:"sub_industry,omitempty"`
	Scale       string   `json:"scale,omitempty"`  // micro | small | medium | large
	Region      string   `json:"region,omitempty"`

	SupplyChainProfile   string   `json:"supply_chain_profile,omitempty"`
	Dependencies         []string `json:"dependencies,omitempty"`
	VulnerabilityFactors []string `json:"vulnerability_factors,omitempty"`
	Priorities           []string `json:"priorities,omitempty"`
}

// OperationalIndicators is the projection engine's per-company output: the
// seven category health values plus the named OPS_* indicators consumed by
// the risk and opportunity detectors.
type OperationalIndicators struct {
	CompanyID      string                          `json:"company_id"`
	ComputedAt     time.Time                       `json:"computed_at"`
	CategoryHealth map[OperationalCategory]float64 `json:"category_health"`
	OverallHealth  float64                         `json:"overall_health"`
	CriticalIssues []string                        `json:"critical_issues"`

	// Named operational indicators, keyed by OPS_* code.
	Indicators map[string]OperationalIndicator `json:"indicators"`
	Trends     map[string]TrendDirection       `json:"trends"`

	// "configured" when the industry had an explicit sensitivity vector,
	// "default" when the all-1.0 fallback was used.
	SensitivityProfile string `json:"sensitivity_profile"`
}

// OperationalIndicator is one named OPS_* value derived by projection.
type OperationalIndicator struct {
	Code         string              `json:"code"`
	Category     OperationalCategory `json:"category"`
	Value        float64             `json:"value"`
	Trend        TrendDirection      `json:"trend"`
	Contributors []string            `json:"contributors"` // Layer-2 indicator ids
	Confidence   float64             `json:"confidence"`
}
