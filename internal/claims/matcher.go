package claims

import (
	"math"
	"sort"

	"github.com/veritasworks/veritas-core/internal/models"
)

// DefaultMatchThreshold is the minimum similarity for a claim match.
const DefaultMatchThreshold = 0.8

// FindMatchingClaims compares one claim against candidates from other
// articles and returns matches at or above the threshold, sorted by
// descending similarity. Equal fingerprints short-circuit to similarity 1.0;
// otherwise candidates must share the claim kind, with numeric claims
// compared by relative value distance and all others by Jaccard overlap of
// their normalized token sets.
func FindMatchingClaims(claim *models.ExtractedClaim, others []*models.ExtractedClaim, threshold float64) []models.ClaimMatch {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}

	var matches []models.ClaimMatch
	claimTokens := TokenSet(claim.NormalizedText)

	for _, other := range others {
		if other.ArticleID == claim.ArticleID {
			continue
		}

		if other.Fingerprint == claim.Fingerprint {
			matches = append(matches, models.ClaimMatch{Claim: other, Similarity: 1.0})
			continue
		}

		if other.Kind != claim.Kind {
			continue
		}

		var sim float64
		if claim.Kind == models.ClaimNumeric && claim.NumericValue != nil && other.NumericValue != nil {
			sim = NumericSimilarity(*claim.NumericValue, *other.NumericValue)
		} else {
			sim = Jaccard(claimTokens, TokenSet(other.NormalizedText))
		}

		if sim >= threshold {
			matches = append(matches, models.ClaimMatch{Claim: other, Similarity: sim})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

// NumericSimilarity is 1 - |v1-v2| / max(|v1|,|v2|), floored at 0. Two
// zeros compare as identical.
func NumericSimilarity(v1, v2 float64) float64 {
	a, b := math.Abs(v1), math.Abs(v2)
	max := math.Max(a, b)
	if max == 0 {
		return 1.0
	}
	sim := 1 - math.Abs(v1-v2)/max
	if sim < 0 {
		return 0
	}
	return sim
}
