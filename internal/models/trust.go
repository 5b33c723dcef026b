package models

import "time"

// CorroborationLevel is the ordinal classification of cross-source agreement.
type CorroborationLevel string

const (
	CorroborationStrong      CorroborationLevel = "strong"
	CorroborationModerate    CorroborationLevel = "moderate"
	CorroborationWeak        CorroborationLevel = "weak"
	CorroborationNone        CorroborationLevel = "none"
	CorroborationConflicting CorroborationLevel = "conflicting"
)

// RelatedArticle is a corroborating or conflicting article reference.
type RelatedArticle struct {
	ArticleID   string     `json:"article_id"`
	SourceName  string     `json:"source_name"`
	Tier        SourceTier `json:"tier"`
	Similarity  float64    `json:"similarity"`
	PublishedAt time.Time  `json:"published_at"`
	// Conflicting articles carry the kind of disagreement detected.
	ConflictType string `json:"conflict_type,omitempty"`
}

// CorroborationResult summarizes how well an article is supported across
// independent sources inside the corroboration window.
type CorroborationResult struct {
	ArticleID       string               `json:"article_id"`
	Level           CorroborationLevel   `json:"level"`
	Score           float64              `json:"score"`
	Corroborating   []RelatedArticle     `json:"corroborating"`
	Conflicting     []RelatedArticle     `json:"conflicting"`
	UniqueSources   int                  `json:"unique_sources"`
	TiersRepresented []SourceTier        `json:"tiers_represented"`
	EarliestReport  time.Time            `json:"earliest_report"`
	IsFirstToReport bool                 `json:"is_first_to_report"`
	ComputedAt      time.Time            `json:"computed_at"`
}

// CorroboratorSources returns the distinct source names of corroborating articles.
func (cr *CorroborationResult) CorroboratorSources() []string {
	return distinctSources(cr.Corroborating)
}

// ConflictSources returns the distinct source names of conflicting articles.
func (cr *CorroborationResult) ConflictSources() []string {
	return distinctSources(cr.Conflicting)
}

func distinctSources(arts []RelatedArticle) []string {
	seen := make(map[string]bool, len(arts))
	out := make([]string, 0, len(arts))
	for _, a := range arts {
		if !seen[a.SourceName] {
			seen[a.SourceName] = true
			out = append(out, a.SourceName)
		}
	}
	return out
}

// HasTier reports whether any corroborator comes from the given tier.
func (cr *CorroborationResult) HasTier(tier SourceTier) bool {
	for _, t := range cr.TiersRepresented {
		if t == tier {
			return true
		}
	}
	return false
}

// TrustLevel buckets a total trust score.
type TrustLevel string

const (
	TrustVerified   TrustLevel = "verified"
	TrustHigh       TrustLevel = "high_trust"
	TrustModerate   TrustLevel = "moderate"
	TrustLow        TrustLevel = "low_trust"
	TrustUnverified TrustLevel = "unverified"
)

// ClassifyTrust maps a total score to its trust level bucket.
func ClassifyTrust(total float64) TrustLevel {
	switch {
	case total >= 85:
		return TrustVerified
	case total >= 70:
		return TrustHigh
	case total >= 50:
		return TrustModerate
	case total >= 30:
		return TrustLow
	default:
		return TrustUnverified
	}
}

// TrustFactor is one weighted component of a trust score.
type TrustFactor struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
	Detail   string  `json:"detail,omitempty"`
}

// TrustScore is the weighted composition of the four trust factors.
type TrustScore struct {
	ArticleID              string        `json:"article_id"`
	Total                  float64       `json:"total"`
	Level                  TrustLevel    `json:"level"`
	Factors                []TrustFactor `json:"factors"`
	ConflictPenalty        float64       `json:"conflict_penalty"`
	Confidence             float64       `json:"confidence"`
	HasOfficialConfirmation bool         `json:"has_official_confirmation"`
	Degraded               bool          `json:"degraded,omitempty"`
	CalculatedAt           time.Time     `json:"calculated_at"`
}

// ValidationResult is the orchestrator's complete output for one article.
type ValidationResult struct {
	ArticleID     string               `json:"article_id"`
	Trust         *TrustScore          `json:"trust"`
	Claims        []*ExtractedClaim    `json:"claims"`
	Corroboration *CorroborationResult `json:"corroboration"`
	Reputation    *Reputation          `json:"reputation"`
	ValidatedAt   time.Time            `json:"validated_at"`
}
