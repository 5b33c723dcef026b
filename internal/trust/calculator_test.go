package trust

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

type stubReputations map[string]float64

func (s stubReputations) GetReputation(source string) float64 { return s[source] }

func TestWeightsSumToOne(t *testing.T) {
	sum := WeightSourceReputation + WeightCorroboration + WeightSourceDiversity + WeightRecency
	assert.Equal(t, 1.0, sum)
}

func TestCalculate_SingleUncorroboratedArticle(t *testing.T) {
	// S1: reputation 40, corroboration 30, diversity 0, recency 100.
	c := NewCalculator(stubReputations{"blog_xyz": 40}, logger.NewNop())
	now := time.Now()
	a := &models.Article{ID: "a1", SourceName: "blog_xyz", PublishedAt: now}
	cr := &models.CorroborationResult{
		ArticleID: "a1", Level: models.CorroborationNone,
		Score: 30, UniqueSources: 1, IsFirstToReport: true,
	}

	ts := c.Calculate(a, cr, now)

	require.Len(t, ts.Factors, 4)
	assert.InDelta(t, 12.0, ts.Factors[0].Weighted, 1e-9)  // 40 * .30
	assert.InDelta(t, 10.5, ts.Factors[1].Weighted, 1e-9)  // 30 * .35
	assert.InDelta(t, 0.0, ts.Factors[2].Weighted, 1e-9)   // 0 * .20
	assert.InDelta(t, 15.0, ts.Factors[3].Weighted, 1e-9)  // 100 * .15
	assert.InDelta(t, 37.5, ts.Total, 1e-9)
	assert.Equal(t, models.TrustLow, ts.Level)
	assert.InDelta(t, 0.7, ts.Confidence, 1e-9)
}

func TestCalculate_TotalEqualsWeightedSumMinusPenalty(t *testing.T) {
	c := NewCalculator(stubReputations{"daily_mirror": 80}, logger.NewNop())
	now := time.Now()
	a := &models.Article{ID: "a1", SourceName: "daily_mirror", PublishedAt: now.Add(-2 * time.Hour)}
	cr := &models.CorroborationResult{
		ArticleID: "a1", Level: models.CorroborationConflicting, Score: 5,
		UniqueSources: 2,
		Conflicting: []models.RelatedArticle{
			{SourceName: "government", Tier: models.TierOfficial, PublishedAt: now},
		},
	}

	ts := c.Calculate(a, cr, now)

	var weighted float64
	for _, f := range ts.Factors {
		weighted += f.Weighted
	}
	assert.InDelta(t, weighted-ts.ConflictPenalty, ts.Total, 1e-9)
	assert.Equal(t, 25.0, ts.ConflictPenalty)
	assert.GreaterOrEqual(t, ts.Total, 0.0)
	assert.LessOrEqual(t, ts.Total, 100.0)
}

func TestCalculate_NilCorroborationImputesDefault(t *testing.T) {
	c := NewCalculator(stubReputations{"reuters": 80}, logger.NewNop())
	now := time.Now()
	a := &models.Article{ID: "a1", SourceName: "reuters", PublishedAt: now}

	ts := c.Calculate(a, nil, now)
	assert.Equal(t, 30.0, ts.Factors[1].Score)
	assert.Contains(t, ts.Factors[1].Detail, "default imputed")
	assert.Equal(t, 0.0, ts.ConflictPenalty)
	assert.False(t, ts.HasOfficialConfirmation)
}

func TestConflictPenaltyCappedAtFifty(t *testing.T) {
	cr := &models.CorroborationResult{
		Conflicting: []models.RelatedArticle{
			{Tier: models.TierOfficial}, {Tier: models.TierOfficial}, {Tier: models.Tier2},
		},
	}
	assert.Equal(t, 50.0, conflictPenalty(cr))
}

func TestRecencyScore_Bands(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 100.0, recencyScore(now.Add(-12*time.Hour), nil, now))
	assert.InDelta(t, 75.0, recencyScore(now.Add(-48*time.Hour), nil, now), 1e-9)
	assert.InDelta(t, 50.0, recencyScore(now.Add(-72*time.Hour), nil, now), 1e-9)
	// 96h: max(20, 50 - 24/24*5) = 45
	assert.InDelta(t, 45.0, recencyScore(now.Add(-96*time.Hour), nil, now), 1e-9)
	// Very old floors at 20.
	assert.Equal(t, 20.0, recencyScore(now.Add(-300*24*time.Hour), nil, now))
}

func TestRecencyScore_EarlyCorroboratorBonus(t *testing.T) {
	now := time.Now()
	published := now.Add(-2 * time.Hour)
	cr := &models.CorroborationResult{
		Corroborating: []models.RelatedArticle{
			{PublishedAt: published.Add(time.Hour)},
		},
	}
	// 100 + 10 clamps to 100.
	assert.Equal(t, 100.0, recencyScore(published, cr, now))

	old := now.Add(-96 * time.Hour)
	crOld := &models.CorroborationResult{
		Corroborating: []models.RelatedArticle{{PublishedAt: old.Add(2 * time.Hour)}},
	}
	assert.InDelta(t, 55.0, recencyScore(old, crOld, now), 1e-9)
}

func TestDiversityScore(t *testing.T) {
	cr := &models.CorroborationResult{
		UniqueSources: 3,
		Corroborating: []models.RelatedArticle{{SourceName: "a"}, {SourceName: "b"}},
		TiersRepresented: []models.SourceTier{models.TierOfficial, models.Tier1},
	}
	// 3/5*100 + 2*10 + 10 = 90
	assert.InDelta(t, 90.0, diversityScore(cr), 1e-9)
	assert.Equal(t, 0.0, diversityScore(nil))
}

func TestConfidence_ShrinksWithConflicts(t *testing.T) {
	cr := &models.CorroborationResult{
		UniqueSources: 2,
		Conflicting:   []models.RelatedArticle{{}, {}},
	}
	// min(1, 0.8) * max(0.5, 0.8) = 0.64
	assert.InDelta(t, 0.64, confidence(cr), 1e-9)
}
