package trust

import (
	"fmt"
	"math"
	"time"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// Factor weights. They must sum to exactly 1.00.
const (
	WeightSourceReputation = 0.30
	WeightCorroboration    = 0.35
	WeightSourceDiversity  = 0.20
	WeightRecency          = 0.15
)

// defaultCorroborationScore is imputed when no corroboration result is
// available.
const defaultCorroborationScore = 30.0

// ReputationLookup resolves a source's current reputation.
type ReputationLookup interface {
	GetReputation(source string) float64
}

// Calculator composes the four trust factors into a TrustScore.
type Calculator struct {
	reputations ReputationLookup
	log         logger.Logger
}

// NewCalculator creates a Calculator.
func NewCalculator(reputations ReputationLookup, log logger.Logger) *Calculator {
	return &Calculator{reputations: reputations, log: log}
}

// Calculate builds the weighted trust score for an article given its
// corroboration result. cr may be nil, in which case the corroboration
// factor is imputed at the default and diversity reflects the article's own
// source only.
func (c *Calculator) Calculate(article *models.Article, cr *models.CorroborationResult, now time.Time) *models.TrustScore {
	repScore := c.reputations.GetReputation(article.SourceName)

	corrScore := defaultCorroborationScore
	corrDetail := "no corroboration result; default imputed"
	if cr != nil {
		corrScore = cr.Score
		corrDetail = fmt.Sprintf("level=%s corroborators=%d conflicts=%d",
			cr.Level, len(cr.Corroborating), len(cr.Conflicting))
	}

	divScore := diversityScore(cr)
	recScore := recencyScore(article.PublishedAt, cr, now)

	factors := []models.TrustFactor{
		{Name: "source_reputation", Score: repScore, Weight: WeightSourceReputation, Weighted: repScore * WeightSourceReputation},
		{Name: "corroboration", Score: corrScore, Weight: WeightCorroboration, Weighted: corrScore * WeightCorroboration, Detail: corrDetail},
		{Name: "source_diversity", Score: divScore, Weight: WeightSourceDiversity, Weighted: divScore * WeightSourceDiversity},
		{Name: "recency", Score: recScore, Weight: WeightRecency, Weighted: recScore * WeightRecency},
	}

	penalty := conflictPenalty(cr)

	total := -penalty
	for _, f := range factors {
		total += f.Weighted
	}
	total = clamp(total, 0, 100)

	return &models.TrustScore{
		ArticleID:               article.ID,
		Total:                   total,
		Level:                   models.ClassifyTrust(total),
		Factors:                 factors,
		ConflictPenalty:         penalty,
		Confidence:              confidence(cr),
		HasOfficialConfirmation: cr != nil && cr.HasTier(models.TierOfficial),
		CalculatedAt:            now,
	}
}

// diversityScore rewards breadth of independent sources:
// min(100, unique/5*100) + min(30, 10*tiers) + 10 for an official tier,
// clamped to 100. With no corroboration result the score is 0.
func diversityScore(cr *models.CorroborationResult) float64 {
	if cr == nil || len(cr.Corroborating) == 0 {
		return 0
	}
	score := math.Min(100, float64(cr.UniqueSources)/5*100)
	score += math.Min(30, 10*float64(len(cr.TiersRepresented)))
	if cr.HasTier(models.TierOfficial) {
		score += 10
	}
	return clamp(score, 0, 100)
}

// recencyScore is 100 within 24h, decays linearly to 50 at 72h, then loses
// 5 points per further day with a floor of 20. A corroborator arriving
// within 24h of publication adds 10. Clamped to 100.
func recencyScore(publishedAt time.Time, cr *models.CorroborationResult, now time.Time) float64 {
	ageHours := now.Sub(publishedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}

	var score float64
	switch {
	case ageHours <= 24:
		score = 100
	case ageHours <= 72:
		score = 100 - (ageHours-24)/48*50
	default:
		score = math.Max(20, 50-(ageHours-72)/24*5)
	}

	if cr != nil && len(cr.Corroborating) > 0 {
		earliest := cr.Corroborating[0].PublishedAt
		for _, c := range cr.Corroborating[1:] {
			if c.PublishedAt.Before(earliest) {
				earliest = c.PublishedAt
			}
		}
		if d := earliest.Sub(publishedAt); d >= -24*time.Hour && d <= 24*time.Hour {
			score += 10
		}
	}

	return clamp(score, 0, 100)
}

// conflictPenalty charges 25 per official conflict and 15 otherwise,
// capped at 50.
func conflictPenalty(cr *models.CorroborationResult) float64 {
	if cr == nil {
		return 0
	}
	penalty := 0.0
	for _, conflict := range cr.Conflicting {
		if conflict.Tier == models.TierOfficial {
			penalty += 25
		} else {
			penalty += 15
		}
	}
	return math.Min(50, penalty)
}

// confidence grows with unique sources and shrinks with conflicts:
// round(min(1, 0.6 + 0.1*unique) * max(0.5, 1 - 0.1*conflicts), 2).
func confidence(cr *models.CorroborationResult) float64 {
	unique, conflicts := 0, 0
	if cr != nil {
		unique = cr.UniqueSources
		conflicts = len(cr.Conflicting)
	}
	v := math.Min(1, 0.6+0.1*float64(unique)) * math.Max(0.5, 1-0.1*float64(conflicts))
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
