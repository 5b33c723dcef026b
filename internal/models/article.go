package models

import "time"

// Article is the canonical cleaned-article record the pipeline operates on.
// The ingestion adapter normalizes upstream field variants at the edge so
// everything downstream sees this single shape.
type Article struct {
	ID          string    `json:"article_id"`
	SourceName  string    `json:"source_name"`
	SourceURL   string    `json:"source_url"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	PublishedAt time.Time `json:"published_at"`
	Language    string    `json:"language"`

	CredibilityScore float64  `json:"credibility_score,omitempty"`
	WordCount        int      `json:"word_count,omitempty"`
	Categories       []string `json:"categories,omitempty"`
}

// SourceCategory classifies where a source sits in the media landscape.
type SourceCategory string

const (
	SourceCategoryGovernment SourceCategory = "government"
	SourceCategoryRegulatory SourceCategory = "regulatory"
	SourceCategoryMainstream SourceCategory = "mainstream_news"
	SourceCategoryRegional   SourceCategory = "regional_news"
	SourceCategoryWire       SourceCategory = "wire_service"
	SourceCategorySocial     SourceCategory = "social_media"
	SourceCategoryBlog       SourceCategory = "blog"
	SourceCategoryUnknown    SourceCategory = "unknown"
)

// SourceTier is the reliability class a source belongs to. Tier determines
// the base reputation before any event history is applied.
type SourceTier string

const (
	TierOfficial SourceTier = "official"
	Tier1        SourceTier = "tier_1"
	Tier2        SourceTier = "tier_2"
	Tier3        SourceTier = "tier_3"
	TierUnknown  SourceTier = "unknown"
)

// ReputationEventType tags entries in a source's event log.
type ReputationEventType string

const (
	EventConfirmation  ReputationEventType = "confirmation"
	EventContradiction ReputationEventType = "contradiction"
	EventCorrection    ReputationEventType = "correction"
)

// ReputationEvent is one signed adjustment in a source's bounded event log.
type ReputationEvent struct {
	Type      ReputationEventType `json:"type"`
	Delta     float64             `json:"delta"`
	Timestamp time.Time           `json:"timestamp"`
	Detail    string              `json:"detail,omitempty"`
}

// Reputation is the point-in-time reputation state for a single source.
type Reputation struct {
	SourceID       string         `json:"source_id"`
	Category       SourceCategory `json:"category"`
	Tier           SourceTier     `json:"tier"`
	Base           float64        `json:"base"`
	Current        float64        `json:"current"`
	ArticleCount   int            `json:"article_count"`
	Confirmations  int            `json:"confirmations"`
	Contradictions int            `json:"contradictions"`
	Corrections    int            `json:"corrections"`
	Events         []ReputationEvent `json:"events,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
