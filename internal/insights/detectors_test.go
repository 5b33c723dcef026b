package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

func opsWith(values map[string]float64, trends map[string]models.TrendDirection) *models.OperationalIndicators {
	ops := &models.OperationalIndicators{
		CompanyID:  "c1",
		ComputedAt: time.Now(),
		Indicators: make(map[string]models.OperationalIndicator, len(values)),
		Trends:     make(map[string]models.TrendDirection, len(values)),
	}
	for code, v := range values {
		trend := models.TrendStable
		if t, ok := trends[code]; ok {
			trend = t
		}
		ops.Indicators[code] = models.OperationalIndicator{Code: code, Value: v, Trend: trend, Confidence: 0.85}
		ops.Trends[code] = trend
	}
	return ops
}

func retailProfile() *models.CompanyProfile {
	return &models.CompanyProfile{ID: "c1", Industry: models.IndustryRetail}
}

func TestDefaultRulesAllValid(t *testing.T) {
	for _, r := range DefaultRules {
		assert.NoError(t, r.validate(), "rule %s", r.Code)
	}
}

func TestDetect_CostEscalation(t *testing.T) {
	// S5: cost pressure burden 88 exceeds the 75 trigger; severity high.
	d := NewDetector(logger.NewNop())
	ops := opsWith(map[string]float64{"OPS_COST_PRESSURE": 88}, nil)

	out := d.Detect(retailProfile(), ops)

	require.Len(t, out, 1)
	in := out[0]
	assert.Equal(t, "RISK_COST_ESCALATION", in.Code)
	assert.Equal(t, models.InsightRisk, in.Type)
	assert.Equal(t, models.SeverityHigh, in.Severity)
	assert.GreaterOrEqual(t, in.FinalScore, 60.0)
	assert.Less(t, in.FinalScore, 80.0)
	assert.Equal(t, models.StatusActive, in.Status)
	assert.Equal(t, 88.0, in.TriggeringIndicators["OPS_COST_PRESSURE"])
	assert.Contains(t, in.Reasoning, "OPS_COST_PRESSURE")
	require.NotNil(t, in.ExpectedImpactTime)
}

func TestDetect_TrendConditionMustMatch(t *testing.T) {
	d := NewDetector(logger.NewNop())

	// Low supply chain health but stable trend: rule must not fire.
	stable := opsWith(map[string]float64{"OPS_SUPPLY_CHAIN": 40}, nil)
	assert.Empty(t, d.Detect(retailProfile(), stable))

	falling := opsWith(map[string]float64{"OPS_SUPPLY_CHAIN": 40},
		map[string]models.TrendDirection{"OPS_SUPPLY_CHAIN": models.TrendFalling})
	out := d.Detect(retailProfile(), falling)
	require.Len(t, out, 1)
	assert.Equal(t, "RISK_SUPPLY_CHAIN", out[0].Code)
}

func TestDetect_MultiConditionRule(t *testing.T) {
	d := NewDetector(logger.NewNop())

	// OPP_EXPANSION_WINDOW needs both demand and financial health.
	partial := opsWith(map[string]float64{"OPS_DEMAND_LEVEL": 70, "OPS_FINANCIAL_HEALTH": 60}, nil)
	for _, in := range d.Detect(retailProfile(), partial) {
		assert.NotEqual(t, "OPP_EXPANSION_WINDOW", in.Code)
	}

	both := opsWith(map[string]float64{"OPS_DEMAND_LEVEL": 70, "OPS_FINANCIAL_HEALTH": 75}, nil)
	var found bool
	for _, in := range d.Detect(retailProfile(), both) {
		if in.Code == "OPP_EXPANSION_WINDOW" {
			found = true
			assert.Equal(t, models.InsightOpportunity, in.Type)
		}
	}
	assert.True(t, found)
}

func TestDetect_OrderedByScoreDescending(t *testing.T) {
	d := NewDetector(logger.NewNop())
	ops := opsWith(map[string]float64{
		"OPS_COST_PRESSURE":  88,
		"OPS_INFRASTRUCTURE": 30,
		"OPS_DEMAND_LEVEL":   85,
	}, nil)

	out := d.Detect(retailProfile(), ops)
	require.GreaterOrEqual(t, len(out), 3)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].FinalScore, out[i].FinalScore)
	}
}

func TestRegisterRule_RejectsMisconfigured(t *testing.T) {
	d := NewDetector(logger.NewNop())
	err := d.RegisterRule(Rule{
		Code:       "RISK_BAD",
		Conditions: []ruleCondition{{Code: "OPS_DEMAND_LEVEL", Threshold: 50}},
		Urgency:    9, Probability: 0.5, Impact: 50, Confidence: 0.5,
	})
	assert.ErrorIs(t, err, models.ErrRuleMisconfigured)

	err = d.RegisterRule(Rule{Code: "RISK_EMPTY"})
	assert.ErrorIs(t, err, models.ErrRuleMisconfigured)
}

func TestFinalScore_Clamped(t *testing.T) {
	r := Rule{Probability: 1, Impact: 100, Urgency: 5, Confidence: 1}
	assert.Equal(t, 100.0, r.finalScore())
}

func TestGenerateRecommendations_CostEscalationTemplate(t *testing.T) {
	// S5: one immediate, three short-term, two medium-term actions.
	in := &models.Insight{ID: "i1", Code: "RISK_COST_ESCALATION", Type: models.InsightRisk}
	recs := GenerateRecommendations(in, retailProfile())

	require.Len(t, recs, 6)
	counts := map[models.RecommendationCategory]int{}
	for i, r := range recs {
		counts[r.Category]++
		assert.Equal(t, i+1, r.Priority)
		assert.Equal(t, "i1", r.InsightID)
		assert.NotEmpty(t, r.Action)
		assert.NotEmpty(t, r.SuccessMetrics)
	}
	assert.Equal(t, 1, counts[models.RecImmediate])
	assert.Equal(t, 3, counts[models.RecShortTerm])
	assert.Equal(t, 2, counts[models.RecMediumTerm])
}

func TestGenerateRecommendations_GenericFallback(t *testing.T) {
	risk := &models.Insight{ID: "i1", Code: "RISK_UNKNOWN_CODE", Type: models.InsightRisk}
	recs := GenerateRecommendations(risk, retailProfile())
	require.NotEmpty(t, recs)
	assert.Equal(t, models.RecImmediate, recs[0].Category)

	opp := &models.Insight{ID: "i2", Code: "OPP_UNKNOWN_CODE", Type: models.InsightOpportunity}
	assert.NotEmpty(t, GenerateRecommendations(opp, retailProfile()))
}

func TestCreateActionPlan_DependencyChaining(t *testing.T) {
	in := &models.Insight{ID: "i1", Code: "RISK_COST_ESCALATION", Type: models.InsightRisk}
	plan := CreateActionPlan(GenerateRecommendations(in, retailProfile()))

	require.Len(t, plan, 6)
	assert.Equal(t, 1, plan[0].Step)
	assert.Empty(t, plan[0].DependsOn)
	for i := 1; i < len(plan); i++ {
		assert.Equal(t, []int{i}, plan[i].DependsOn, "step %d", i+1)
	}
}

func TestGenerateNarrative_UrgencyBySeverity(t *testing.T) {
	cases := map[models.InsightSeverity]string{
		models.SeverityCritical: "NOW",
		models.SeverityHigh:     "TODAY",
		models.SeverityMedium:   "THIS WEEK",
		models.SeverityLow:      "THIS MONTH",
	}
	for sev, tag := range cases {
		n := GenerateNarrative(&models.Insight{
			ID: "i1", Type: models.InsightRisk, Severity: sev,
			Title: "Input cost escalation", Description: "Costs are up.",
			FinalScore: 72, Confidence: 0.9,
		})
		assert.Equal(t, tag, n.UrgencyTag, "severity %s", sev)
		assert.NotEmpty(t, n.Emoji)
		assert.Contains(t, n.Headline, "Input cost escalation")
	}
}
