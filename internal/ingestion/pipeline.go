package ingestion

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/internal/monitoring"
	"github.com/veritasworks/veritas-core/internal/validator"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// Options tunes the pipeline worker pool.
type Options struct {
	// Workers is the validation worker count. Default: number of CPUs.
	Workers int
	// QueueFactor sets the batch queue capacity as a multiple of Workers.
	// Default 2.
	QueueFactor int
	// BatchSize is how many articles one fetch pulls. Default 50.
	BatchSize int64
	// MinQuality filters fetched articles by credibility score.
	MinQuality float64
	// PollInterval is the idle wait between backlog polls. Default 30s.
	PollInterval time.Duration
	// StoreRetryBase and StoreRetryMax govern MarkProcessed retries on
	// transient store errors.
	StoreRetryBase time.Duration
	StoreRetryMax  int
}

// DefaultOptions returns the pipeline defaults.
func DefaultOptions() Options {
	return Options{
		Workers:        runtime.NumCPU(),
		QueueFactor:    2,
		BatchSize:      50,
		PollInterval:   30 * time.Second,
		StoreRetryBase: 500 * time.Millisecond,
		StoreRetryMax:  5,
	}
}

// Pipeline pulls cleaned articles from the source and pushes batches through
// the validator on a bounded worker pool. A full queue blocks the fetch loop,
// so ingestion never outruns validation.
type Pipeline struct {
	opts      Options
	source    ArticleSource
	validator *validator.Validator
	log       logger.Logger

	queue chan []*models.Article
	wg    sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewPipeline wires the pipeline. Zero option fields take defaults.
func NewPipeline(opts Options, source ArticleSource, v *validator.Validator, log logger.Logger) *Pipeline {
	def := DefaultOptions()
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.QueueFactor <= 0 {
		opts.QueueFactor = def.QueueFactor
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = def.PollInterval
	}
	if opts.StoreRetryBase <= 0 {
		opts.StoreRetryBase = def.StoreRetryBase
	}
	if opts.StoreRetryMax <= 0 {
		opts.StoreRetryMax = def.StoreRetryMax
	}
	return &Pipeline{
		opts:      opts,
		source:    source,
		validator: v,
		log:       log,
		queue:     make(chan []*models.Article, opts.Workers*opts.QueueFactor),
		inflight:  make(map[string]struct{}),
	}
}

// Run polls the backlog until the context is cancelled, then drains the
// queue and waits for the workers. It blocks for the pipeline's lifetime.
func (p *Pipeline) Run(ctx context.Context) error {
	p.startWorkers(ctx)

	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	p.log.Info("ingestion pipeline started",
		"workers", p.opts.Workers, "queue_capacity", cap(p.queue), "batch_size", p.opts.BatchSize)

	for {
		if err := p.drainBacklog(ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.log.Error("backlog drain failed", "error", err)
			monitoring.RecordError("backlog_drain", "pipeline")
		}
		select {
		case <-ctx.Done():
			close(p.queue)
			p.wg.Wait()
			p.log.Info("ingestion pipeline stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ProcessBacklog drains whatever is currently unprocessed and returns. It is
// the single-shot variant of Run, used at startup and in tests.
func (p *Pipeline) ProcessBacklog(ctx context.Context) error {
	p.startWorkers(ctx)
	err := p.drainBacklog(ctx)
	close(p.queue)
	p.wg.Wait()
	return err
}

func (p *Pipeline) startWorkers(ctx context.Context) {
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// drainBacklog fetches batches until the source reports nothing new. The
// send blocks when every worker is busy and the queue is full. Articles
// already dispatched but not yet marked processed are filtered out, since
// the source still reports them as unprocessed; when a whole page is in
// flight the loop waits for the workers instead of paging past it.
func (p *Pipeline) drainBacklog(ctx context.Context) error {
	const inflightWait = 50 * time.Millisecond

	seen := make(map[string]struct{})
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fetched, err := p.source.FetchUnprocessed(ctx, p.opts.BatchSize, 0, p.opts.MinQuality)
		if err != nil {
			return err
		}
		if len(fetched) == 0 {
			return nil
		}

		batch := p.claim(fetched, seen)
		if len(batch) == 0 {
			if p.inflightCount() == 0 {
				// Everything fetchable was dispatched and settled;
				// whatever remains could not be marked and waits for
				// the next poll.
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(inflightWait):
			}
			continue
		}

		select {
		case p.queue <- batch:
			monitoring.SetPipelineQueueDepth("validate", len(p.queue))
		case <-ctx.Done():
			p.release(batch)
			return ctx.Err()
		}
	}
}

func (p *Pipeline) inflightCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inflight)
}

// claim filters out articles already in flight or already dispatched during
// this drain pass, and marks the rest.
func (p *Pipeline) claim(fetched []*models.Article, seen map[string]struct{}) []*models.Article {
	p.mu.Lock()
	defer p.mu.Unlock()
	var batch []*models.Article
	for _, a := range fetched {
		if a == nil || a.ID == "" {
			continue
		}
		if _, done := seen[a.ID]; done {
			continue
		}
		if _, busy := p.inflight[a.ID]; busy {
			seen[a.ID] = struct{}{}
			continue
		}
		seen[a.ID] = struct{}{}
		p.inflight[a.ID] = struct{}{}
		batch = append(batch, a)
	}
	return batch
}

func (p *Pipeline) release(batch []*models.Article) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range batch {
		if a != nil {
			delete(p.inflight, a.ID)
		}
	}
}

// worker validates queued batches and marks each article processed. Batch
// validation runs in two passes inside the validator, so ordering within a
// batch does not affect corroboration.
func (p *Pipeline) worker(ctx context.Context) {
	defer p.wg.Done()
	for batch := range p.queue {
		monitoring.SetPipelineQueueDepth("validate", len(p.queue))

		results := p.validator.ValidateBatch(ctx, batch)
		byID := make(map[string]*models.ValidationResult, len(results))
		for _, r := range results {
			byID[r.ArticleID] = r
		}

		for _, a := range batch {
			if a == nil || a.ID == "" {
				continue
			}
			result, ok := byID[a.ID]
			if !ok {
				// Validation already counted the skip; leave the
				// document unmarked so a later run retries it.
				continue
			}
			if err := p.markProcessed(ctx, a.ID, result); err != nil {
				p.log.Error("mark processed failed", "article_id", a.ID, "error", err)
				monitoring.RecordError("mark_processed", "pipeline")
			}
		}
		p.release(batch)
	}
}

// markProcessed writes the result back with exponential backoff on
// transient store errors.
func (p *Pipeline) markProcessed(ctx context.Context, articleID string, result *models.ValidationResult) error {
	var err error
	for attempt := 0; attempt < p.opts.StoreRetryMax; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.opts.StoreRetryBase << (attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err = p.source.MarkProcessed(ctx, articleID, result)
		if err == nil || !errors.Is(err, models.ErrTransientStore) {
			return err
		}
		p.log.Warn("mark processed retrying", "article_id", articleID, "attempt", attempt+1, "error", err)
	}
	return err
}
