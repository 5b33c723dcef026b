package similarity

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/veritasworks/veritas-core/pkg/logger"
)

// indexedArticle is the document shape stored in the bleve index.
type indexedArticle struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// BleveProvider ranks similar articles with an in-memory bleve full-text
// index over the cached article window. It serves as the local similarity
// engine when no external deduplicator is configured.
type BleveProvider struct {
	mu    sync.Mutex
	index bleve.Index
	log   logger.Logger
}

// NewBleveProvider creates an in-memory index.
func NewBleveProvider(log logger.Logger) (*BleveProvider, error) {
	indexMapping := bleve.NewIndexMapping()
	index, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("create similarity index: %w", err)
	}
	return &BleveProvider{index: index, log: log}, nil
}

// IndexArticle adds or replaces an article in the index.
func (p *BleveProvider) IndexArticle(articleID, title, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index.Index(articleID, indexedArticle{Title: title, Body: body})
}

// RemoveArticle drops a pruned article from the index.
func (p *BleveProvider) RemoveArticle(articleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index.Delete(articleID)
}

// FindDuplicates runs a match query over title and body and returns hits
// above the threshold, normalized by the top score.
func (p *BleveProvider) FindDuplicates(ctx context.Context, articleID, content, title string, threshold float64) ([]Duplicate, error) {
	queryText := title + " " + content
	if len(queryText) > 2000 {
		queryText = queryText[:2000]
	}
	query := bleve.NewMatchQuery(queryText)
	searchRequest := bleve.NewSearchRequestOptions(query, 11, 0, false)

	p.mu.Lock()
	result, err := p.index.SearchInContext(ctx, searchRequest)
	p.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if len(result.Hits) == 0 {
		return nil, nil
	}

	// Bleve scores are unbounded; scale against the best hit, which is
	// normally the article itself.
	top := result.Hits[0].Score
	if top <= 0 {
		return nil, nil
	}

	var out []Duplicate
	for _, hit := range result.Hits {
		if hit.ID == articleID {
			continue
		}
		score := hit.Score / top
		if score >= threshold {
			out = append(out, Duplicate{DuplicateID: hit.ID, SimilarityScore: score})
		}
	}
	return out, nil
}
