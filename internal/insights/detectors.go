package insights

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/internal/monitoring"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// ruleCondition is one threshold test over a derived operational indicator.
// When Trend is set the indicator's trend must match too.
type ruleCondition struct {
	Code      string
	Below     bool
	Threshold float64
	Trend     models.TrendDirection
}

// Rule is a fixed risk or opportunity detector. Probability, impact,
// urgency and confidence are rule constants; the final score is computed
// per firing.
type Rule struct {
	Code        string
	Type        models.InsightType
	Category    models.OperationalCategory
	Title       string
	Description string
	Conditions  []ruleCondition

	Probability float64 // [0,1]
	Impact      float64 // [0,100]
	Urgency     int     // 1-5
	Confidence  float64 // [0,1]
}

func (r Rule) validate() error {
	switch {
	case r.Code == "" || len(r.Conditions) == 0:
		return fmt.Errorf("rule %q: %w: empty code or conditions", r.Code, models.ErrRuleMisconfigured)
	case r.Probability < 0 || r.Probability > 1:
		return fmt.Errorf("rule %q: %w: probability %v", r.Code, models.ErrRuleMisconfigured, r.Probability)
	case r.Impact < 0 || r.Impact > 100:
		return fmt.Errorf("rule %q: %w: impact %v", r.Code, models.ErrRuleMisconfigured, r.Impact)
	case r.Urgency < 1 || r.Urgency > 5:
		return fmt.Errorf("rule %q: %w: urgency %d", r.Code, models.ErrRuleMisconfigured, r.Urgency)
	case r.Confidence < 0 || r.Confidence > 1:
		return fmt.Errorf("rule %q: %w: confidence %v", r.Code, models.ErrRuleMisconfigured, r.Confidence)
	}
	return nil
}

// finalScore combines the rule constants: probability times impact, scaled
// by an urgency factor centered on 3 and by confidence, clamped to [0,100].
func (r Rule) finalScore() float64 {
	score := r.Probability * r.Impact * (1 + 0.05*float64(r.Urgency-3)) * r.Confidence
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// DefaultRules is the shipped detector registry.
var DefaultRules = []Rule{
	{
		Code: "RISK_SUPPLY_CHAIN", Type: models.InsightRisk, Category: models.OpSupplyChain,
		Title:       "Supply chain disruption likely",
		Description: "Supply chain conditions are deteriorating and already below safe levels.",
		Conditions: []ruleCondition{
			{Code: "OPS_SUPPLY_CHAIN", Below: true, Threshold: 45, Trend: models.TrendFalling},
		},
		Probability: 0.80, Impact: 90, Urgency: 4, Confidence: 0.85,
	},
	{
		Code: "RISK_COST_ESCALATION", Type: models.InsightRisk, Category: models.OpCostPressure,
		Title:       "Input cost escalation",
		Description: "Cost pressure on inputs, energy and logistics is well above tolerance.",
		Conditions: []ruleCondition{
			{Code: "OPS_COST_PRESSURE", Below: false, Threshold: 75},
		},
		Probability: 0.85, Impact: 90, Urgency: 4, Confidence: 0.90,
	},
	{
		Code: "RISK_WORKFORCE_SHORTAGE", Type: models.InsightRisk, Category: models.OpWorkforce,
		Title:       "Workforce shortage developing",
		Description: "Labour availability is low and still falling.",
		Conditions: []ruleCondition{
			{Code: "OPS_WORKFORCE_AVAILABILITY", Below: true, Threshold: 40, Trend: models.TrendFalling},
		},
		Probability: 0.70, Impact: 75, Urgency: 3, Confidence: 0.80,
	},
	{
		Code: "RISK_INFRA_DISRUPTION", Type: models.InsightRisk, Category: models.OpInfrastructure,
		Title:       "Infrastructure disruption",
		Description: "Power, transport or connectivity conditions are critically degraded.",
		Conditions: []ruleCondition{
			{Code: "OPS_INFRASTRUCTURE", Below: true, Threshold: 35},
		},
		Probability: 0.80, Impact: 85, Urgency: 5, Confidence: 0.85,
	},
	{
		Code: "RISK_REGULATORY_PRESSURE", Type: models.InsightRisk, Category: models.OpRegulatory,
		Title:       "Regulatory pressure rising",
		Description: "Compliance burden is elevated across the operating environment.",
		Conditions: []ruleCondition{
			{Code: "OPS_REGULATORY_BURDEN", Below: false, Threshold: 70},
		},
		Probability: 0.70, Impact: 75, Urgency: 3, Confidence: 0.85,
	},
	{
		Code: "RISK_FINANCIAL_STRESS", Type: models.InsightRisk, Category: models.OpFinancial,
		Title:       "Financial stress conditions",
		Description: "Credit, currency and liquidity conditions are weak and worsening.",
		Conditions: []ruleCondition{
			{Code: "OPS_FINANCIAL_HEALTH", Below: true, Threshold: 35, Trend: models.TrendFalling},
		},
		Probability: 0.75, Impact: 90, Urgency: 4, Confidence: 0.80,
	},
	{
		Code: "RISK_DEMAND_COLLAPSE", Type: models.InsightRisk, Category: models.OpMarketConditions,
		Title:       "Demand collapse",
		Description: "Market demand has fallen to critical levels and continues to drop.",
		Conditions: []ruleCondition{
			{Code: "OPS_DEMAND_LEVEL", Below: true, Threshold: 30, Trend: models.TrendFalling},
		},
		Probability: 0.80, Impact: 95, Urgency: 5, Confidence: 0.85,
	},
	{
		Code: "OPP_DEMAND_SURGE", Type: models.InsightOpportunity, Category: models.OpMarketConditions,
		Title:       "Demand surge",
		Description: "Market demand is running well above normal levels.",
		Conditions: []ruleCondition{
			{Code: "OPS_DEMAND_LEVEL", Below: false, Threshold: 80},
		},
		Probability: 0.70, Impact: 80, Urgency: 3, Confidence: 0.80,
	},
	{
		Code: "OPP_COST_RELIEF", Type: models.InsightOpportunity, Category: models.OpCostPressure,
		Title:       "Input cost relief",
		Description: "Cost pressure is low and easing further.",
		Conditions: []ruleCondition{
			{Code: "OPS_COST_PRESSURE", Below: true, Threshold: 30, Trend: models.TrendFalling},
		},
		Probability: 0.65, Impact: 60, Urgency: 2, Confidence: 0.75,
	},
	{
		Code: "OPP_EXPANSION_WINDOW", Type: models.InsightOpportunity, Category: models.OpFinancial,
		Title:       "Expansion window open",
		Description: "Healthy demand and financial conditions favour expansion moves.",
		Conditions: []ruleCondition{
			{Code: "OPS_DEMAND_LEVEL", Below: false, Threshold: 65},
			{Code: "OPS_FINANCIAL_HEALTH", Below: false, Threshold: 70},
		},
		Probability: 0.60, Impact: 75, Urgency: 2, Confidence: 0.70,
	},
	{
		Code: "OPP_LABOR_AVAILABILITY", Type: models.InsightOpportunity, Category: models.OpWorkforce,
		Title:       "Labour availability improving",
		Description: "Hiring conditions are favourable and improving.",
		Conditions: []ruleCondition{
			{Code: "OPS_WORKFORCE_AVAILABILITY", Below: false, Threshold: 75, Trend: models.TrendRising},
		},
		Probability: 0.60, Impact: 55, Urgency: 2, Confidence: 0.75,
	},
}

// Detector evaluates the rule registry against a company's derived
// operational indicators.
type Detector struct {
	rules []Rule
	log   logger.Logger
}

// NewDetector creates a detector over the shipped rule set.
func NewDetector(log logger.Logger) *Detector {
	d := &Detector{log: log}
	for _, r := range DefaultRules {
		// Shipped rules are validated in tests; a bad one is a programming
		// error worth failing loudly over.
		if err := r.validate(); err != nil {
			panic(err)
		}
		d.rules = append(d.rules, r)
	}
	return d
}

// RegisterRule adds a custom rule after validation.
func (d *Detector) RegisterRule(r Rule) error {
	if err := r.validate(); err != nil {
		return err
	}
	d.rules = append(d.rules, r)
	return nil
}

// Detect runs every rule against the indicator record and returns the
// insights for rules whose conditions all hold, ordered by final score
// descending.
func (d *Detector) Detect(profile *models.CompanyProfile, ops *models.OperationalIndicators) []*models.Insight {
	now := time.Now()
	var out []*models.Insight

	for _, rule := range d.rules {
		triggered, reasoning, snapshot := rule.evaluate(ops)
		if !triggered {
			continue
		}

		score := rule.finalScore()
		expected := now.Add(time.Duration(6-rule.Urgency) * 24 * time.Hour)
		insight := &models.Insight{
			ID:                   uuid.New().String(),
			CompanyID:            profile.ID,
			Code:                 rule.Code,
			Type:                 rule.Type,
			Category:             rule.Category,
			Title:                rule.Title,
			Description:          rule.Description,
			Reasoning:            reasoning,
			Probability:          rule.Probability,
			Impact:               rule.Impact,
			Urgency:              rule.Urgency,
			Confidence:           rule.Confidence,
			FinalScore:           score,
			Severity:             models.ClassifySeverity(score),
			Status:               models.StatusActive,
			TriggeringIndicators: snapshot,
			DetectedAt:           now,
			UpdatedAt:            now,
			ExpectedImpactTime:   &expected,
		}
		out = append(out, insight)
		monitoring.RecordInsightEmitted(string(rule.Type), string(insight.Severity))

		d.log.Info("insight detected",
			"company_id", profile.ID,
			"code", rule.Code,
			"severity", insight.Severity,
			"final_score", score)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].FinalScore > out[j].FinalScore })
	return out
}

// evaluate tests every condition; all must hold. It returns a reasoning
// string and a snapshot of the triggering indicator values.
func (r Rule) evaluate(ops *models.OperationalIndicators) (bool, string, map[string]float64) {
	snapshot := make(map[string]float64, len(r.Conditions))
	var reasons []string

	for _, cond := range r.Conditions {
		ind, ok := ops.Indicators[cond.Code]
		if !ok {
			return false, "", nil
		}
		if cond.Below {
			if ind.Value >= cond.Threshold {
				return false, "", nil
			}
			reasons = append(reasons, fmt.Sprintf("%s at %.0f, below %.0f", cond.Code, ind.Value, cond.Threshold))
		} else {
			if ind.Value <= cond.Threshold {
				return false, "", nil
			}
			reasons = append(reasons, fmt.Sprintf("%s at %.0f, above %.0f", cond.Code, ind.Value, cond.Threshold))
		}
		if cond.Trend != "" {
			if ops.Trends[cond.Code] != cond.Trend {
				return false, "", nil
			}
			reasons = append(reasons, fmt.Sprintf("%s trend is %s", cond.Code, cond.Trend))
		}
		snapshot[cond.Code] = ind.Value
	}

	return true, strings.Join(reasons, "; "), snapshot
}
