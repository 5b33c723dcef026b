package similarity

import "context"

// Duplicate is one similar-article hit from a provider.
type Duplicate struct {
	DuplicateID     string  `json:"duplicate_id"`
	SimilarityScore float64 `json:"similarity_score"`
}

// Provider locates articles similar to the given content. The corroboration
// engine treats providers as optional: on absence or failure it falls back
// to its internal Jaccard scan.
type Provider interface {
	FindDuplicates(ctx context.Context, articleID, content, title string, threshold float64) ([]Duplicate, error)
}
