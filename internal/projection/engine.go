package projection

import (
	"fmt"
	"sort"
	"time"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// neutralImpact is assigned to categories with no contributing indicators.
const neutralImpact = 50.0

// opsConfidence is the fixed confidence attached to derived indicators.
const opsConfidence = 0.85

// Critical-issue cutoffs: health metrics below healthCritical, inverted
// burdens above burdenCritical.
const (
	healthCritical = 30.0
	burdenCritical = 80.0
)

// opsCodes names the derived operational indicator per category.
var opsCodes = map[models.OperationalCategory]string{
	models.OpSupplyChain:      "OPS_SUPPLY_CHAIN",
	models.OpWorkforce:        "OPS_WORKFORCE_AVAILABILITY",
	models.OpInfrastructure:   "OPS_INFRASTRUCTURE",
	models.OpCostPressure:     "OPS_COST_PRESSURE",
	models.OpMarketConditions: "OPS_DEMAND_LEVEL",
	models.OpFinancial:        "OPS_FINANCIAL_HEALTH",
	models.OpRegulatory:       "OPS_REGULATORY_BURDEN",
}

// overallCategories are averaged into the overall health figure. The two
// inverted burden categories are excluded.
var overallCategories = []models.OperationalCategory{
	models.OpSupplyChain, models.OpWorkforce, models.OpInfrastructure,
	models.OpFinancial, models.OpMarketConditions,
}

type contribution struct {
	indicatorID string
	value       float64
	confidence  float64
}

// Engine projects national Layer-2 indicators onto company-level
// operational categories. It is stateless; all inputs arrive per call.
type Engine struct {
	log logger.Logger
}

// NewEngine creates a projection engine.
func NewEngine(log logger.Logger) *Engine {
	return &Engine{log: log}
}

// Project derives the seven operational category health values and the
// named derived indicators for one company from a national snapshot.
func (e *Engine) Project(profile *models.CompanyProfile, snapshot *models.Layer2Output) *models.OperationalIndicators {
	sensitivity, configured := sensitivityFor(profile.Industry)

	buckets := make(map[models.OperationalCategory][]contribution)
	for id, iv := range snapshot.Indicators {
		pestel := iv.Category
		if pestel == "" {
			if d, ok := Definition(id); ok {
				pestel = d.Category
			}
		}
		for _, cat := range categoriesFor(id, pestel, sensitivity) {
			buckets[cat] = append(buckets[cat], contribution{
				indicatorID: id,
				value:       iv.Value,
				confidence:  iv.Confidence,
			})
		}
	}

	out := &models.OperationalIndicators{
		CompanyID:      profile.ID,
		ComputedAt:     time.Now(),
		CategoryHealth: make(map[models.OperationalCategory]float64, len(models.AllOperationalCategories)),
		Indicators:     make(map[string]models.OperationalIndicator, len(models.AllOperationalCategories)),
		Trends:         make(map[string]models.TrendDirection, len(models.AllOperationalCategories)),
	}
	if configured {
		out.SensitivityProfile = "configured"
	} else {
		out.SensitivityProfile = "default"
	}

	for _, cat := range models.AllOperationalCategories {
		contribs := buckets[cat]
		impact := categoryImpact(contribs, sensitivity[cat])

		health := impact
		if models.InvertedCategories[cat] {
			health = 100 - impact
		}
		out.CategoryHealth[cat] = health

		if models.InvertedCategories[cat] {
			if impact > burdenCritical {
				out.CriticalIssues = append(out.CriticalIssues,
					fmt.Sprintf("%s: burden %.0f above critical %.0f", cat, impact, burdenCritical))
			}
		} else if len(contribs) > 0 && health < healthCritical {
			out.CriticalIssues = append(out.CriticalIssues,
				fmt.Sprintf("%s: health %.0f below critical %.0f", cat, health, healthCritical))
		}

		code := opsCodes[cat]
		trend := inheritedTrend(contribs, snapshot.Trends)
		out.Indicators[code] = models.OperationalIndicator{
			Code:         code,
			Category:     cat,
			Value:        impact,
			Trend:        trend,
			Contributors: contributorIDs(contribs),
			Confidence:   opsConfidence,
		}
		out.Trends[code] = trend
	}

	var sum float64
	for _, cat := range overallCategories {
		sum += out.CategoryHealth[cat]
	}
	out.OverallHealth = sum / float64(len(overallCategories))

	e.log.Debug("projected operational indicators",
		"company_id", profile.ID,
		"industry", profile.Industry,
		"overall_health", out.OverallHealth,
		"critical_issues", len(out.CriticalIssues))
	return out
}

// categoryImpact is the confidence-weighted mean of contributing values
// scaled by the industry sensitivity, clamped to [0,100]. Empty buckets are
// neutral.
func categoryImpact(contribs []contribution, sensitivity float64) float64 {
	if len(contribs) == 0 {
		return neutralImpact
	}
	var weighted, confSum float64
	for _, c := range contribs {
		weighted += c.value * c.confidence * sensitivity
		confSum += c.confidence
	}
	if confSum == 0 {
		return neutralImpact
	}
	impact := weighted / confSum
	if impact < 0 {
		return 0
	}
	if impact > 100 {
		return 100
	}
	return impact
}

// inheritedTrend copies the trend of the dominant contributor, where
// dominance is value times confidence. Categories with no trending
// contributor read stable.
func inheritedTrend(contribs []contribution, trends map[string]models.IndicatorTrend) models.TrendDirection {
	best := models.TrendStable
	bestWeight := -1.0
	for _, c := range contribs {
		t, ok := trends[c.indicatorID]
		if !ok {
			continue
		}
		if w := c.value * c.confidence; w > bestWeight {
			bestWeight = w
			best = t.Direction
		}
	}
	return best
}

func contributorIDs(contribs []contribution) []string {
	if len(contribs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(contribs))
	for _, c := range contribs {
		ids = append(ids, c.indicatorID)
	}
	sort.Strings(ids)
	return ids
}
