package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/veritasworks/veritas-core/internal/models"
)

func cleanDocument(id string) *articleDocument {
	doc := &articleDocument{ArticleID: id}
	name := "daily_mirror"
	url := "https://example.com/news/1"
	doc.SourceName = &name
	doc.SourceURL = &url
	doc.Content.TitleOriginal = "Fuel prices rise"
	doc.Content.BodyOriginal = "Fuel prices rose by 8% this week, the ministry said."
	doc.Content.LanguageDetected = "en"
	doc.Extraction.PublishTimestamp = time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	doc.Quality.CredibilityScore = 0.8
	doc.Quality.WordCount = 10
	doc.Quality.IsClean = true
	doc.ProcessingPipeline.StagesCompleted = []string{"extraction", "cleaning"}
	return doc
}

func TestNormalizeDocument_CanonicalFields(t *testing.T) {
	a, err := normalizeDocument(cleanDocument("a1"))
	require.NoError(t, err)

	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, "daily_mirror", a.SourceName)
	assert.Equal(t, "https://example.com/news/1", a.SourceURL)
	assert.Equal(t, "Fuel prices rise", a.Title)
	assert.Equal(t, "en", a.Language)
	assert.Equal(t, 0.8, a.CredibilityScore)
	assert.Equal(t, time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC), a.PublishedAt)
}

func TestNormalizeDocument_NullableAndFallbackFields(t *testing.T) {
	doc := cleanDocument("a2")
	doc.SourceName = nil
	doc.SourceURL = nil
	doc.Content.TitleOriginal = ""
	doc.Content.TitleTranslated = "Translated title"
	doc.Content.BodyOriginal = ""
	doc.Content.BodyTranslated = "Translated body text for the article."
	doc.Content.LanguageDetected = ""

	a, err := normalizeDocument(doc)
	require.NoError(t, err)
	assert.Empty(t, a.SourceName)
	assert.Empty(t, a.SourceURL)
	assert.Equal(t, "Translated title", a.Title)
	assert.Equal(t, "Translated body text for the article.", a.Body)
	assert.Equal(t, "en", a.Language)
}

func TestNormalizeDocument_Rejections(t *testing.T) {
	cases := map[string]func(*articleDocument){
		"missing id":      func(d *articleDocument) { d.ArticleID = "" },
		"not cleaned":     func(d *articleDocument) { d.ProcessingPipeline.StagesCompleted = []string{"extraction"} },
		"not clean":       func(d *articleDocument) { d.Quality.IsClean = false },
		"empty body":      func(d *articleDocument) { d.Content.BodyOriginal = ""; d.Content.BodyTranslated = "" },
		"no timestamp":    func(d *articleDocument) { d.Extraction.PublishTimestamp = nil },
		"bad timestamp":   func(d *articleDocument) { d.Extraction.PublishTimestamp = "soon" },
		"wrong type":      func(d *articleDocument) { d.Extraction.PublishTimestamp = 42 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			doc := cleanDocument("a3")
			mutate(doc)
			_, err := normalizeDocument(doc)
			assert.ErrorIs(t, err, models.ErrMalformedInput)
		})
	}
}

func TestParseTimestamp_Layouts(t *testing.T) {
	want := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)

	got, err := parseTimestamp("2026-08-20T09:30:00Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(want))

	got, err = parseTimestamp("2026-08-20 09:30:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(want))

	got, err = parseTimestamp(primitive.NewDateTimeFromTime(want))
	require.NoError(t, err)
	assert.True(t, got.Equal(want))

	got, err = parseTimestamp("2026-08-20")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)))
}

func TestMemorySource_FetchAndMark(t *testing.T) {
	src := NewMemorySource()
	ctx := context.Background()

	for i, id := range []string{"a1", "a2", "a3"} {
		doc := cleanDocument(id)
		doc.Extraction.PublishTimestamp = time.Date(2026, 8, 20+i, 0, 0, 0, 0, time.UTC)
		doc.Quality.CredibilityScore = 0.5 + float64(i)*0.2
		require.NoError(t, src.AddDocument(doc))
	}
	bad := cleanDocument("a4")
	bad.Quality.IsClean = false
	assert.Error(t, src.AddDocument(bad))
	assert.Equal(t, 1, src.SkippedCount())

	n, err := src.CountUnprocessed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// Oldest first, quality filter applies.
	got, err := src.FetchUnprocessed(ctx, 10, 0, 0.6)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a2", got[0].ID)
	assert.Equal(t, "a3", got[1].ID)

	require.NoError(t, src.MarkProcessed(ctx, "a1", &models.ValidationResult{ArticleID: "a1"}))
	n, err = src.CountUnprocessed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err = src.FetchUnprocessed(ctx, 10, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	since, err := src.FetchSince(ctx, time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC), 10)
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, "a2", since[0].ID)

	byID, err := src.FetchByIDs(ctx, []string{"a3", "missing"})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "a3", byID[0].ID)

	assert.ErrorIs(t, src.MarkProcessed(ctx, "missing", nil), models.ErrNotFound)
}
