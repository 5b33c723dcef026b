package ingestion

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/veritasworks/veritas-core/internal/models"
)

// MemorySource is an in-process ArticleSource used in tests and for
// storeless startup. Raw documents go through the same normalization as the
// Mongo adapter.
type MemorySource struct {
	mu        sync.Mutex
	articles  map[string]*models.Article
	processed map[string]*models.ValidationResult
	skipped   int
}

// NewMemorySource creates an empty source.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		articles:  make(map[string]*models.Article),
		processed: make(map[string]*models.ValidationResult),
	}
}

// AddDocument admits one raw document through normalization. Malformed
// documents are counted and dropped, mirroring the Mongo adapter.
func (m *MemorySource) AddDocument(doc *articleDocument) error {
	article, err := normalizeDocument(doc)
	if err != nil {
		m.mu.Lock()
		m.skipped++
		m.mu.Unlock()
		return err
	}
	m.AddArticle(article)
	return nil
}

// AddArticle admits an already canonical article.
func (m *MemorySource) AddArticle(article *models.Article) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.articles[article.ID] = article
}

func (m *MemorySource) FetchUnprocessed(ctx context.Context, limit, skip int64, minQuality float64) ([]*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Article
	for id, a := range m.articles {
		if _, done := m.processed[id]; done {
			continue
		}
		if minQuality > 0 && a.CredibilityScore < minQuality {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.Before(out[j].PublishedAt) })

	if skip > 0 {
		if skip >= int64(len(out)) {
			return nil, nil
		}
		out = out[skip:]
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemorySource) FetchSince(ctx context.Context, since time.Time, limit int64) ([]*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Article
	for _, a := range m.articles {
		if !a.PublishedAt.Before(since) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.Before(out[j].PublishedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemorySource) FetchByIDs(ctx context.Context, ids []string) ([]*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Article
	for _, id := range ids {
		if a, ok := m.articles[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemorySource) MarkProcessed(ctx context.Context, articleID string, result *models.ValidationResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[articleID]; !ok {
		return fmt.Errorf("mark processed %s: %w", articleID, models.ErrNotFound)
	}
	m.processed[articleID] = result
	return nil
}

func (m *MemorySource) CountUnprocessed(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.articles) - len(m.processed)), nil
}

// Result returns the stored validation result for a processed article.
func (m *MemorySource) Result(articleID string) (*models.ValidationResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.processed[articleID]
	return r, ok
}

// SkippedCount reports how many raw documents failed normalization.
func (m *MemorySource) SkippedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skipped
}
