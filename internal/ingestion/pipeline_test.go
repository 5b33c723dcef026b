package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritasworks/veritas-core/internal/claims"
	"github.com/veritasworks/veritas-core/internal/corroboration"
	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/internal/reputation"
	"github.com/veritasworks/veritas-core/internal/trust"
	"github.com/veritasworks/veritas-core/internal/validator"
	"github.com/veritasworks/veritas-core/pkg/cache"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

func newTestValidator() *validator.Validator {
	log := logger.NewNop()
	tracker := reputation.NewTracker(reputation.DefaultOptions(), log)
	engine := corroboration.NewEngine(corroboration.DefaultOptions(), nil, nil, tracker, log)
	calc := trust.NewCalculator(tracker, log)
	ex := claims.NewExtractor(log)
	return validator.NewValidator(validator.DefaultOptions(), ex, engine, calc, tracker, cache.NewNoop(), log)
}

func seedSource(t *testing.T, src *MemorySource, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		doc := cleanDocument(fmt.Sprintf("a%d", i))
		doc.Content.BodyOriginal = fmt.Sprintf("Inflation rose to %d%% this month, officials said.", 5+i)
		doc.Extraction.PublishTimestamp = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, src.AddDocument(doc))
	}
}

func TestPipeline_ProcessBacklog(t *testing.T) {
	src := NewMemorySource()
	seedSource(t, src, 7)

	opts := DefaultOptions()
	opts.Workers = 2
	opts.BatchSize = 3
	p := NewPipeline(opts, src, newTestValidator(), logger.NewNop())

	require.NoError(t, p.ProcessBacklog(context.Background()))

	n, err := src.CountUnprocessed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	res, ok := src.Result("a0")
	require.True(t, ok)
	require.NotNil(t, res.Trust)
	assert.Equal(t, "a0", res.ArticleID)
	assert.Greater(t, res.Trust.Total, 0.0)
}

func TestPipeline_CancelledContextStops(t *testing.T) {
	src := NewMemorySource()
	seedSource(t, src, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(DefaultOptions(), src, newTestValidator(), logger.NewNop())
	err := p.ProcessBacklog(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_RunStopsOnCancel(t *testing.T) {
	src := NewMemorySource()
	seedSource(t, src, 2)

	opts := DefaultOptions()
	opts.PollInterval = 10 * time.Millisecond
	p := NewPipeline(opts, src, newTestValidator(), logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for {
		n, err := src.CountUnprocessed(context.Background())
		require.NoError(t, err)
		if n == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("backlog never drained")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not stop")
	}
}

// flakySource fails MarkProcessed transiently before succeeding.
type flakySource struct {
	*MemorySource
	mu       sync.Mutex
	failures int
	attempts int
}

func (f *flakySource) MarkProcessed(ctx context.Context, articleID string, result *models.ValidationResult) error {
	f.mu.Lock()
	f.attempts++
	fail := f.attempts <= f.failures
	f.mu.Unlock()
	if fail {
		return fmt.Errorf("mark processed %s: %w: simulated outage", articleID, models.ErrTransientStore)
	}
	return f.MemorySource.MarkProcessed(ctx, articleID, result)
}

func TestPipeline_RetriesTransientMarkFailures(t *testing.T) {
	src := &flakySource{MemorySource: NewMemorySource(), failures: 2}
	seedSource(t, src.MemorySource, 1)

	opts := DefaultOptions()
	opts.Workers = 1
	opts.StoreRetryBase = time.Millisecond
	p := NewPipeline(opts, src, newTestValidator(), logger.NewNop())

	require.NoError(t, p.ProcessBacklog(context.Background()))

	n, err := src.CountUnprocessed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Equal(t, 3, src.attempts)
}

// permanentSource always rejects MarkProcessed with a non-transient error.
type permanentSource struct {
	*MemorySource
	mu       sync.Mutex
	attempts int
}

func (f *permanentSource) MarkProcessed(ctx context.Context, articleID string, result *models.ValidationResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	return fmt.Errorf("mark processed %s: %w: schema drift", articleID, models.ErrPermanentStore)
}

func TestPipeline_DoesNotRetryPermanentFailures(t *testing.T) {
	src := &permanentSource{MemorySource: NewMemorySource()}
	seedSource(t, src.MemorySource, 1)

	opts := DefaultOptions()
	opts.Workers = 1
	opts.StoreRetryBase = time.Millisecond
	p := NewPipeline(opts, src, newTestValidator(), logger.NewNop())

	require.NoError(t, p.ProcessBacklog(context.Background()))
	assert.Equal(t, 1, src.attempts)
}

func TestPipeline_ErrorsSurfaceFromFetch(t *testing.T) {
	src := &fetchErrSource{MemorySource: NewMemorySource()}
	p := NewPipeline(DefaultOptions(), src, newTestValidator(), logger.NewNop())
	err := p.ProcessBacklog(context.Background())
	assert.ErrorIs(t, err, models.ErrTransientStore)
}

type fetchErrSource struct {
	*MemorySource
}

func (f *fetchErrSource) FetchUnprocessed(ctx context.Context, limit, skip int64, minQuality float64) ([]*models.Article, error) {
	return nil, fmt.Errorf("fetch unprocessed: %w: %v", models.ErrTransientStore, errors.New("connection reset"))
}
