package claims

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritasworks/veritas-core/internal/models"
)

func numClaim(article string, value float64) *models.ExtractedClaim {
	v := value
	norm := Normalize("deaths reached some number")
	return &models.ExtractedClaim{
		ID: article + "-c", Kind: models.ClaimNumeric,
		NormalizedText: norm, Fingerprint: Fingerprint(norm + article),
		NumericValue: &v, Unit: "count", ArticleID: article,
	}
}

func TestFindMatchingClaims_SkipsSameArticle(t *testing.T) {
	c := numClaim("a1", 100)
	same := numClaim("a1", 100)
	matches := FindMatchingClaims(c, []*models.ExtractedClaim{same}, 0.8)
	assert.Empty(t, matches)
}

func TestFindMatchingClaims_FingerprintShortCircuit(t *testing.T) {
	c := numClaim("a1", 100)
	other := numClaim("b1", 5) // very different value
	other.Fingerprint = c.Fingerprint
	matches := FindMatchingClaims(c, []*models.ExtractedClaim{other}, 0.8)
	require.Len(t, matches, 1)
	assert.Equal(t, 1.0, matches[0].Similarity)
}

func TestFindMatchingClaims_NumericRelativeDistance(t *testing.T) {
	c := numClaim("a1", 100)
	near := numClaim("b1", 90)  // sim 0.9
	far := numClaim("c1", 50)   // sim 0.5
	matches := FindMatchingClaims(c, []*models.ExtractedClaim{far, near}, 0.8)
	require.Len(t, matches, 1)
	assert.Equal(t, "b1", matches[0].Claim.ArticleID)
	assert.InDelta(t, 0.9, matches[0].Similarity, 1e-9)
}

func TestFindMatchingClaims_KindMismatchSkipped(t *testing.T) {
	c := numClaim("a1", 100)
	other := &models.ExtractedClaim{
		ID: "x", Kind: models.ClaimEvent, ArticleID: "b1",
		NormalizedText: c.NormalizedText, Fingerprint: "different",
	}
	matches := FindMatchingClaims(c, []*models.ExtractedClaim{other}, 0.8)
	assert.Empty(t, matches)
}

func TestFindMatchingClaims_SortedDescending(t *testing.T) {
	c := numClaim("a1", 100)
	m1 := numClaim("b1", 85)
	m2 := numClaim("c1", 95)
	matches := FindMatchingClaims(c, []*models.ExtractedClaim{m1, m2}, 0.8)
	require.Len(t, matches, 2)
	assert.True(t, matches[0].Similarity >= matches[1].Similarity)
	assert.Equal(t, "c1", matches[0].Claim.ArticleID)
}

func TestNumericSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, NumericSimilarity(0, 0))
	assert.InDelta(t, 0.25, NumericSimilarity(200, 50), 1e-9)
	assert.InDelta(t, 1.0, NumericSimilarity(10, 10), 1e-9)
}
