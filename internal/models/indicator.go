package models

import "time"

// PESTELCategory labels national (Layer-2) indicators.
type PESTELCategory string

const (
	PESTELPolitical     PESTELCategory = "political"
	PESTELEconomic      PESTELCategory = "economic"
	PESTELSocial        PESTELCategory = "social"
	PESTELTechnological PESTELCategory = "technological"
	PESTELEnvironmental PESTELCategory = "environmental"
	PESTELLegal         PESTELCategory = "legal"
)

// AllPESTELCategories in canonical order.
var AllPESTELCategories = []PESTELCategory{
	PESTELPolitical, PESTELEconomic, PESTELSocial,
	PESTELTechnological, PESTELEnvironmental, PESTELLegal,
}

// IndicatorDefinition describes one Layer-2 national indicator in the catalogue.
// The catalogue is read-only after startup.
type IndicatorDefinition struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Category    PESTELCategory `json:"pestel_category"`
	Subcategory string         `json:"subcategory"`
	Description string         `json:"description,omitempty"`
	Calculation string         `json:"calculation"` // e.g. "sentiment_volume", "event_count"
	BaseWeight  float64        `json:"base_weight"`
	Thresholds  IndicatorThresholds `json:"thresholds"`
	Active      bool           `json:"active"`
	Keywords    []string       `json:"keywords,omitempty"`
	WindowHours int            `json:"aggregation_window_hours,omitempty"`
}

// IndicatorThresholds mark the warning and critical cutoffs for an indicator.
type IndicatorThresholds struct {
	Warning  float64 `json:"warning"`
	Critical float64 `json:"critical"`
}

// IndicatorValue is one observation of a Layer-2 indicator.
type IndicatorValue struct {
	IndicatorID string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Category    PESTELCategory `json:"pestel_category,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Value       float64   `json:"value"`          // [0,100]
	Sentiment   float64   `json:"sentiment_score"` // [-1,1]
	Confidence  float64   `json:"confidence"`
	SourceCount int       `json:"source_count"`
	RawCount    int       `json:"raw_count,omitempty"`
}

// TrendDirection for indicator trends supplied by the Layer-2 feed.
type TrendDirection string

const (
	TrendRising  TrendDirection = "rising"
	TrendFalling TrendDirection = "falling"
	TrendStable  TrendDirection = "stable"
)

// IndicatorTrend is a Layer-2 supplied trend summary for one indicator.
type IndicatorTrend struct {
	IndicatorID   string         `json:"id"`
	Direction     TrendDirection `json:"direction"`
	ChangePercent float64        `json:"change_percent"`
	PeriodDays    int            `json:"period_days"`
}

// Layer2Output is the complete national-indicator feed snapshot consumed by
// the projection engine.
type Layer2Output struct {
	Timestamp              time.Time                  `json:"timestamp"`
	CalculationWindowHours int                        `json:"calculation_window_hours"`
	Indicators             map[string]IndicatorValue  `json:"indicators"`
	Trends                 map[string]IndicatorTrend  `json:"trends"`
	Events                 []string                   `json:"events,omitempty"`
	OverallSentiment       float64                    `json:"overall_sentiment"`
	ActivityLevel          string                     `json:"activity_level"`
	ArticleCount           int                        `json:"article_count"`
	SourceDiversity        int                        `json:"source_diversity"`
	DataQualityScore       float64                    `json:"data_quality_score"`
}
