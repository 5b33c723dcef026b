package ingestion

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/veritasworks/veritas-core/internal/models"
)

// ArticleSource is the pull boundary against the cleaned-articles store.
// Implementations return canonical models.Article values; all field-name
// normalization happens at this edge so inner code never sees the raw
// document shape.
type ArticleSource interface {
	FetchUnprocessed(ctx context.Context, limit, skip int64, minQuality float64) ([]*models.Article, error)
	FetchSince(ctx context.Context, since time.Time, limit int64) ([]*models.Article, error)
	FetchByIDs(ctx context.Context, ids []string) ([]*models.Article, error)
	MarkProcessed(ctx context.Context, articleID string, result *models.ValidationResult) error
	CountUnprocessed(ctx context.Context) (int64, error)
}

// articleDocument mirrors the upstream cleaned-articles schema.
type articleDocument struct {
	ArticleID  string  `bson:"article_id"`
	SourceName *string `bson:"source_name"`
	SourceURL  *string `bson:"source_url"`

	Content struct {
		TitleOriginal    string `bson:"title_original"`
		TitleTranslated  string `bson:"title_translated"`
		BodyOriginal     string `bson:"body_original"`
		BodyTranslated   string `bson:"body_translated"`
		LanguageDetected string `bson:"language_detected"`
	} `bson:"content"`

	Extraction struct {
		PublishTimestamp interface{} `bson:"publish_timestamp"`
		Categories       []string    `bson:"categories"`
		Entities         []string    `bson:"entities"`
	} `bson:"extraction"`

	Quality struct {
		CredibilityScore float64 `bson:"credibility_score"`
		WordCount        int     `bson:"word_count"`
		IsClean          bool    `bson:"is_clean"`
	} `bson:"quality"`

	ProcessingPipeline struct {
		StagesCompleted []string `bson:"stages_completed"`
	} `bson:"processing_pipeline"`
}

// normalizeDocument converts one raw document to the canonical article,
// enforcing the admission constraints: an article id, a completed cleaning
// stage, a clean flag, a body and a parseable publish timestamp.
func normalizeDocument(doc *articleDocument) (*models.Article, error) {
	if doc.ArticleID == "" {
		return nil, fmt.Errorf("normalize article: %w: missing article_id", models.ErrMalformedInput)
	}
	if !containsString(doc.ProcessingPipeline.StagesCompleted, "cleaning") {
		return nil, fmt.Errorf("normalize article %s: %w: cleaning stage not completed", doc.ArticleID, models.ErrMalformedInput)
	}
	if !doc.Quality.IsClean {
		return nil, fmt.Errorf("normalize article %s: %w: is_clean is false", doc.ArticleID, models.ErrMalformedInput)
	}

	body := doc.Content.BodyOriginal
	if body == "" {
		body = doc.Content.BodyTranslated
	}
	if body == "" {
		return nil, fmt.Errorf("normalize article %s: %w: empty body", doc.ArticleID, models.ErrMalformedInput)
	}

	title := doc.Content.TitleOriginal
	if title == "" {
		title = doc.Content.TitleTranslated
	}

	published, err := parseTimestamp(doc.Extraction.PublishTimestamp)
	if err != nil {
		return nil, fmt.Errorf("normalize article %s: %w: %v", doc.ArticleID, models.ErrMalformedInput, err)
	}

	language := doc.Content.LanguageDetected
	if language == "" {
		language = "en"
	}

	return &models.Article{
		ID:               doc.ArticleID,
		SourceName:       derefString(doc.SourceName),
		SourceURL:        derefString(doc.SourceURL),
		Title:            title,
		Body:             body,
		PublishedAt:      published,
		Language:         language,
		CredibilityScore: doc.Quality.CredibilityScore,
		WordCount:        doc.Quality.WordCount,
		Categories:       doc.Extraction.Categories,
	}, nil
}

// parseTimestamp accepts the representations the upstream store has been
// observed to write: BSON datetimes, native times, and a few string layouts.
func parseTimestamp(raw interface{}) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case primitive.DateTime:
		return v.Time(), nil
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable publish_timestamp %q", v)
	case nil:
		return time.Time{}, fmt.Errorf("missing publish_timestamp")
	default:
		return time.Time{}, fmt.Errorf("unexpected publish_timestamp type %T", raw)
	}
}

func containsString(vals []string, want string) bool {
	for _, v := range vals {
		if v == want {
			return true
		}
	}
	return false
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
