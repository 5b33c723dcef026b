package insights

import (
	"github.com/google/uuid"

	"github.com/veritasworks/veritas-core/internal/models"
)

// actionTemplate is one templated action before it is bound to an insight.
type actionTemplate struct {
	Action         string
	Responsible    string
	Effort         models.EffortLevel
	Timeframe      string
	SuccessMetrics []string
}

// recommendationTemplate groups templated actions by horizon for one
// insight code.
type recommendationTemplate struct {
	Immediate  []actionTemplate
	ShortTerm  []actionTemplate
	MediumTerm []actionTemplate
}

// templateRegistry maps insight codes to their recommendation templates.
// Codes without an entry fall back to the generic template for their type.
var templateRegistry = map[string]recommendationTemplate{
	"RISK_COST_ESCALATION": {
		Immediate: []actionTemplate{
			{"Freeze non-essential spend and review all open purchase orders", "finance lead", models.EffortLow, "24 hours", []string{"open PO value reviewed", "discretionary spend frozen"}},
		},
		ShortTerm: []actionTemplate{
			{"Renegotiate top five supplier contracts with indexed pricing caps", "procurement lead", models.EffortMedium, "2 weeks", []string{"contracts renegotiated", "cap clauses signed"}},
			{"Identify substitute inputs or local suppliers for the costliest imports", "procurement lead", models.EffortMedium, "2 weeks", []string{"substitutes qualified for top 3 inputs"}},
			{"Model selective price pass-through against demand elasticity", "commercial lead", models.EffortMedium, "1 week", []string{"pass-through plan approved"}},
		},
		MediumTerm: []actionTemplate{
			{"Hedge recurring currency and fuel exposure where instruments exist", "finance lead", models.EffortHigh, "1 month", []string{"hedge ratio target met"}},
			{"Invest in energy efficiency for the highest-draw operations", "operations lead", models.EffortHigh, "1 month", []string{"unit energy cost reduced 10%"}},
		},
	},
	"RISK_SUPPLY_CHAIN": {
		Immediate: []actionTemplate{
			{"Confirm stock cover and inbound shipments with critical suppliers", "operations lead", models.EffortLow, "24 hours", []string{"stock cover days confirmed"}},
		},
		ShortTerm: []actionTemplate{
			{"Activate secondary suppliers for at-risk inputs", "procurement lead", models.EffortMedium, "1 week", []string{"secondary supply flowing"}},
			{"Raise safety stock on the top revenue lines", "operations lead", models.EffortMedium, "2 weeks", []string{"safety stock at target"}},
		},
		MediumTerm: []actionTemplate{
			{"Qualify alternative routings and ports for inbound freight", "logistics lead", models.EffortHigh, "1 month", []string{"alternate route tested"}},
		},
	},
	"RISK_WORKFORCE_SHORTAGE": {
		Immediate: []actionTemplate{
			{"Map single-person dependencies in critical roles", "hr lead", models.EffortLow, "48 hours", []string{"dependency map complete"}},
		},
		ShortTerm: []actionTemplate{
			{"Open retention conversations with flight-risk staff", "hr lead", models.EffortMedium, "2 weeks", []string{"retention offers made"}},
			{"Cross-train backups for critical functions", "operations lead", models.EffortMedium, "2 weeks", []string{"backup coverage for critical roles"}},
		},
		MediumTerm: []actionTemplate{
			{"Stand up a continuous hiring pipeline with trade schools", "hr lead", models.EffortHigh, "1 month", []string{"pipeline candidates per month"}},
		},
	},
	"RISK_INFRA_DISRUPTION": {
		Immediate: []actionTemplate{
			{"Verify generator fuel, UPS capacity and failover connectivity", "operations lead", models.EffortLow, "24 hours", []string{"failover tested"}},
		},
		ShortTerm: []actionTemplate{
			{"Reschedule power-hungry operations around outage windows", "operations lead", models.EffortMedium, "1 week", []string{"production rescheduled"}},
		},
		MediumTerm: []actionTemplate{
			{"Invest in backup power sized for full critical load", "operations lead", models.EffortHigh, "1 month", []string{"critical load covered"}},
		},
	},
	"RISK_FINANCIAL_STRESS": {
		Immediate: []actionTemplate{
			{"Build a 13-week cash flow forecast and review daily", "finance lead", models.EffortMedium, "48 hours", []string{"forecast live"}},
		},
		ShortTerm: []actionTemplate{
			{"Accelerate receivables and renegotiate payment terms", "finance lead", models.EffortMedium, "2 weeks", []string{"DSO reduced"}},
		},
		MediumTerm: []actionTemplate{
			{"Arrange standby credit lines before they are needed", "finance lead", models.EffortHigh, "1 month", []string{"facility committed"}},
		},
	},
	"OPP_DEMAND_SURGE": {
		Immediate: []actionTemplate{
			{"Check capacity headroom and stock against the surge", "operations lead", models.EffortLow, "24 hours", []string{"headroom quantified"}},
		},
		ShortTerm: []actionTemplate{
			{"Shift marketing spend toward the surging segments", "commercial lead", models.EffortMedium, "1 week", []string{"campaign live"}},
			{"Add temporary capacity through extended shifts", "operations lead", models.EffortMedium, "2 weeks", []string{"capacity up 15%"}},
		},
		MediumTerm: []actionTemplate{
			{"Evaluate a durable capacity expansion against surge persistence", "management", models.EffortHigh, "1 month", []string{"expansion case decided"}},
		},
	},
}

// Generic fallbacks for codes without a registered template.
var genericRiskTemplate = recommendationTemplate{
	Immediate: []actionTemplate{
		{"Review exposure to the flagged condition and brief the leadership team", "management", models.EffortLow, "24 hours", []string{"exposure reviewed"}},
	},
	ShortTerm: []actionTemplate{
		{"Prepare a mitigation plan with owners and dates", "management", models.EffortMedium, "1 week", []string{"plan approved"}},
	},
	MediumTerm: []actionTemplate{
		{"Track the triggering indicators weekly until the risk clears", "management", models.EffortLow, "1 month", []string{"indicator back in range"}},
	},
}

var genericOpportunityTemplate = recommendationTemplate{
	Immediate: []actionTemplate{
		{"Size the opportunity and confirm the triggering conditions hold", "management", models.EffortLow, "48 hours", []string{"opportunity sized"}},
	},
	ShortTerm: []actionTemplate{
		{"Pilot a low-cost move to capture early value", "management", models.EffortMedium, "2 weeks", []string{"pilot results in"}},
	},
	MediumTerm: []actionTemplate{
		{"Commit resources if the pilot confirms the window", "management", models.EffortHigh, "1 month", []string{"go/no-go decided"}},
	},
}

// GenerateRecommendations expands the template for an insight into an
// ordered list: immediate first, then short-term, then medium-term, with
// strictly increasing priority.
func GenerateRecommendations(insight *models.Insight, profile *models.CompanyProfile) []models.Recommendation {
	tmpl, ok := templateRegistry[insight.Code]
	if !ok {
		if insight.Type == models.InsightOpportunity {
			tmpl = genericOpportunityTemplate
		} else {
			tmpl = genericRiskTemplate
		}
	}

	var out []models.Recommendation
	priority := 0
	appendGroup := func(cat models.RecommendationCategory, actions []actionTemplate) {
		for _, a := range actions {
			priority++
			out = append(out, models.Recommendation{
				ID:             uuid.New().String(),
				InsightID:      insight.ID,
				Category:       cat,
				Priority:       priority,
				Action:         a.Action,
				Responsible:    a.Responsible,
				Effort:         a.Effort,
				Timeframe:      a.Timeframe,
				SuccessMetrics: append([]string(nil), a.SuccessMetrics...),
			})
		}
	}
	appendGroup(models.RecImmediate, tmpl.Immediate)
	appendGroup(models.RecShortTerm, tmpl.ShortTerm)
	appendGroup(models.RecMediumTerm, tmpl.MediumTerm)
	return out
}

// CreateActionPlan numbers the recommendations into steps. Every step after
// the first that is not immediate depends on the step before it, so the
// plan executes immediates in parallel and the rest in sequence.
func CreateActionPlan(recs []models.Recommendation) []models.ActionPlanStep {
	steps := make([]models.ActionPlanStep, 0, len(recs))
	for i, r := range recs {
		step := models.ActionPlanStep{
			Step:     i + 1,
			Action:   r.Action,
			Category: r.Category,
		}
		if i > 0 && r.Category != models.RecImmediate {
			step.DependsOn = []int{i}
		}
		steps = append(steps, step)
	}
	return steps
}
