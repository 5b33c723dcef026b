package similarity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/veritasworks/veritas-core/pkg/logger"
)

// HTTPProvider calls an external deduplication service. Requests default to
// a 5 second timeout with one retry.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	retries int
	log     logger.Logger
}

// NewHTTPProvider builds a provider for the given endpoint.
func NewHTTPProvider(baseURL string, timeout time.Duration, retries int, log logger.Logger) *HTTPProvider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if retries < 0 {
		retries = 1
	}
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		retries: retries,
		log:     log,
	}
}

type findDuplicatesRequest struct {
	ArticleID string  `json:"article_id"`
	Content   string  `json:"content"`
	Title     string  `json:"title"`
	Threshold float64 `json:"threshold"`
}

type findDuplicatesResponse struct {
	Duplicates []Duplicate `json:"duplicates"`
}

// FindDuplicates posts the article to the deduplicator and returns its hits.
func (p *HTTPProvider) FindDuplicates(ctx context.Context, articleID, content, title string, threshold float64) ([]Duplicate, error) {
	payload, err := json.Marshal(findDuplicatesRequest{
		ArticleID: articleID,
		Content:   content,
		Title:     title,
		Threshold: threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal duplicates request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= p.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/find_duplicates", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("similarity provider returned status %d", resp.StatusCode)
			continue
		}

		var out findDuplicatesResponse
		err = json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("decode duplicates response: %w", err)
			continue
		}
		return out.Duplicates, nil
	}
	return nil, lastErr
}
