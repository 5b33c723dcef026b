package models

import "time"

// InsightType separates risks from opportunities.
type InsightType string

const (
	InsightRisk        InsightType = "risk"
	InsightOpportunity InsightType = "opportunity"
)

// InsightSeverity buckets the final score: critical >=80, high >=60,
// medium >=40, low below.
type InsightSeverity string

const (
	SeverityCritical InsightSeverity = "critical"
	SeverityHigh     InsightSeverity = "high"
	SeverityMedium   InsightSeverity = "medium"
	SeverityLow      InsightSeverity = "low"
)

// ClassifySeverity maps a final score to its severity bucket.
func ClassifySeverity(score float64) InsightSeverity {
	switch {
	case score >= 80:
		return SeverityCritical
	case score >= 60:
		return SeverityHigh
	case score >= 40:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// InsightStatus is the lifecycle state of an insight. Resolved, expired and
// cancelled are terminal.
type InsightStatus string

const (
	StatusActive       InsightStatus = "active"
	StatusAcknowledged InsightStatus = "acknowledged"
	StatusResolved     InsightStatus = "resolved"
	StatusExpired      InsightStatus = "expired"
	StatusCancelled    InsightStatus = "cancelled"
)

// IsTerminal reports whether the status admits no further transitions.
func (s InsightStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusExpired || s == StatusCancelled
}

// CanTransition enforces the insight state machine:
// active -> acknowledged -> resolved, active -> resolved, and any
// non-terminal state -> expired | cancelled.
func (s InsightStatus) CanTransition(to InsightStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch to {
	case StatusAcknowledged:
		return s == StatusActive
	case StatusResolved:
		return s == StatusActive || s == StatusAcknowledged
	case StatusExpired, StatusCancelled:
		return true
	default:
		return false
	}
}

// Insight is a detected risk or opportunity for a company.
type Insight struct {
	ID          string          `json:"insight_id"`
	CompanyID   string          `json:"company_id"`
	Code        string          `json:"code"` // e.g. RISK_COST_ESCALATION
	Type        InsightType     `json:"type"`
	Category    OperationalCategory `json:"category"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Reasoning   string          `json:"reasoning,omitempty"`

	Probability float64         `json:"probability"` // [0,1]
	Impact      float64         `json:"impact"`      // [0,100]
	Urgency     int             `json:"urgency"`     // 1-5
	Confidence  float64         `json:"confidence"`  // [0,1]
	FinalScore  float64         `json:"final_score"` // [0,100]
	Severity    InsightSeverity `json:"severity"`

	Status InsightStatus `json:"status"`

	// Snapshot of the indicator values that triggered the rule.
	TriggeringIndicators map[string]float64 `json:"triggering_indicators"`

	DetectedAt            time.Time  `json:"detected_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	AcknowledgedAt        *time.Time `json:"acknowledged_at,omitempty"`
	AcknowledgedBy        string     `json:"acknowledged_by,omitempty"`
	ResolvedAt            *time.Time `json:"resolved_at,omitempty"`
	ResolutionNotes       string     `json:"resolution_notes,omitempty"`
	ActualImpact          string     `json:"actual_impact,omitempty"`
	ExpectedImpactTime    *time.Time `json:"expected_impact_time,omitempty"`
	ExpectedDurationHours int        `json:"expected_duration_hours,omitempty"`

	// Set when any input to the detection pass was degraded, so consumers
	// can filter.
	DegradedInputs bool `json:"degraded_inputs,omitempty"`
}

// RecommendationCategory orders recommended actions by horizon.
type RecommendationCategory string

const (
	RecImmediate  RecommendationCategory = "immediate"
	RecShortTerm  RecommendationCategory = "short_term"
	RecMediumTerm RecommendationCategory = "medium_term"
)

// EffortLevel sizes a recommended action.
type EffortLevel string

const (
	EffortLow    EffortLevel = "low"
	EffortMedium EffortLevel = "medium"
	EffortHigh   EffortLevel = "high"
)

// Recommendation is one templated action attached to an insight.
type Recommendation struct {
	ID             string                 `json:"recommendation_id"`
	InsightID      string                 `json:"insight_id"`
	Category       RecommendationCategory `json:"category"`
	Priority       int                    `json:"priority"`
	Action         string                 `json:"action"`
	Responsible    string                 `json:"responsible"`
	Effort         EffortLevel            `json:"effort"`
	Timeframe      string                 `json:"timeframe"`
	SuccessMetrics []string               `json:"success_metrics"`
}

// ActionPlanStep is a numbered step in a generated action plan.
type ActionPlanStep struct {
	Step      int      `json:"step"`
	Action    string   `json:"action"`
	Category  RecommendationCategory `json:"category"`
	DependsOn []int    `json:"depends_on,omitempty"`
}

// Narrative is the template-generated human summary for an insight.
type Narrative struct {
	InsightID  string `json:"insight_id"`
	Emoji      string `json:"emoji"`
	Headline   string `json:"headline"`
	Summary    string `json:"summary"`
	UrgencyTag string `json:"urgency_tag"` // NOW | TODAY | THIS WEEK | THIS MONTH
}
