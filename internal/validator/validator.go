package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/veritasworks/veritas-core/internal/claims"
	"github.com/veritasworks/veritas-core/internal/corroboration"
	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/internal/monitoring"
	"github.com/veritasworks/veritas-core/internal/reputation"
	"github.com/veritasworks/veritas-core/internal/trust"
	"github.com/veritasworks/veritas-core/pkg/cache"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// degradedConfidence is reported when validation could not complete and the
// score falls back to the reputation factor alone.
const degradedConfidence = 0.3

// Options configures the validator.
type Options struct {
	// Deadline bounds a single article validation. Default 30s.
	Deadline time.Duration
}

// DefaultOptions returns the validator defaults.
func DefaultOptions() Options {
	return Options{Deadline: 30 * time.Second}
}

// Validator orchestrates the per-article validation sequence: claim
// extraction, corroboration, trust scoring and reputation feedback. It is
// the only component that mutates reputation from validation outcomes.
type Validator struct {
	opts       Options
	extractor  *claims.Extractor
	engine     *corroboration.Engine
	calculator *trust.Calculator
	tracker    *reputation.Tracker
	results    cache.ResultsCache
	log        logger.Logger
}

// NewValidator wires the validation pipeline together. results may be a noop
// cache; every cache interaction is best-effort.
func NewValidator(opts Options, extractor *claims.Extractor, engine *corroboration.Engine,
	calculator *trust.Calculator, tracker *reputation.Tracker,
	results cache.ResultsCache, log logger.Logger) *Validator {
	if opts.Deadline <= 0 {
		opts.Deadline = DefaultOptions().Deadline
	}
	return &Validator{
		opts:       opts,
		extractor:  extractor,
		engine:     engine,
		calculator: calculator,
		tracker:    tracker,
		results:    results,
		log:        log,
	}
}

// Validate runs the full sequence for one article, unless a cached result
// short-circuits it. The article itself is always admitted to the
// corroboration window and counted against its source, even when later
// steps fail; failures yield a degraded result rather than an error so
// batch processing never stalls on one article.
func (v *Validator) Validate(ctx context.Context, article *models.Article) (*models.ValidationResult, error) {
	if article == nil || article.ID == "" {
		return nil, fmt.Errorf("validate: %w: missing article id", models.ErrMalformedInput)
	}

	// A result cached within the TTL is returned as-is: re-validation must
	// not append reputation events or move the score.
	if cached, err := v.results.GetCachedValidationResult(ctx, article.ID); err == nil && cached != nil {
		monitoring.RecordArticleProcessed("cached")
		return cached, nil
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, v.opts.Deadline)
	defer cancel()

	v.tracker.RecordArticle(article.SourceName)

	extracted := v.extractor.Extract(article.Body, article.Title, article.ID, article.SourceName)
	for _, c := range extracted {
		monitoring.RecordClaimExtracted(string(c.Kind))
	}
	v.engine.AddToCache(article, extracted)

	if err := ctx.Err(); err != nil {
		return v.degraded(ctx, article, extracted, start, err), nil
	}

	cr := v.engine.FindCorroboration(ctx, article, extracted)
	if err := ctx.Err(); err != nil {
		return v.degraded(ctx, article, extracted, start, err), nil
	}

	score := v.calculator.Calculate(article, cr, time.Now())

	v.applyReputationFeedback(article, cr)

	result := &models.ValidationResult{
		ArticleID:     article.ID,
		Trust:         score,
		Claims:        extracted,
		Corroboration: cr,
		Reputation:    v.tracker.Snapshot(article.SourceName),
		ValidatedAt:   time.Now(),
	}

	if err := v.results.CacheValidationResult(ctx, article.ID, result); err != nil {
		v.log.Debug("validation result cache write failed", "article_id", article.ID, "error", err)
	}
	if err := v.results.CacheTrustScore(ctx, article.ID, score); err != nil {
		v.log.Debug("trust score cache write failed", "article_id", article.ID, "error", err)
	}

	monitoring.RecordArticleProcessed("validated")
	monitoring.RecordValidationDuration(time.Since(start))
	return result, nil
}

// ValidateBatch validates a set of articles in two passes: first every
// article is admitted to the corroboration window, then each is validated
// against the fully populated window. Order within the batch therefore does
// not affect corroboration outcomes.
func (v *Validator) ValidateBatch(ctx context.Context, articles []*models.Article) []*models.ValidationResult {
	extracted := make([][]*models.ExtractedClaim, len(articles))
	for i, a := range articles {
		if a == nil || a.ID == "" {
			continue
		}
		extracted[i] = v.extractor.Extract(a.Body, a.Title, a.ID, a.SourceName)
		v.engine.AddToCache(a, extracted[i])
	}

	results := make([]*models.ValidationResult, 0, len(articles))
	for _, a := range articles {
		if a == nil || a.ID == "" {
			continue
		}
		res, err := v.Validate(ctx, a)
		if err != nil {
			v.log.Warn("batch validation skipped article", "article_id", a.ID, "error", err)
			monitoring.RecordArticleProcessed("skipped")
			continue
		}
		results = append(results, res)
	}
	return results
}

// CachedTrustScore returns a previously computed score, if the cache holds
// one that has not expired.
func (v *Validator) CachedTrustScore(ctx context.Context, articleID string) (*models.TrustScore, error) {
	return v.results.GetCachedTrustScore(ctx, articleID)
}

// applyReputationFeedback converts the corroboration outcome into reputation
// events. Corroborators and conflicts are independent channels: one window
// can yield both a confirmation and a contradiction for the same article.
func (v *Validator) applyReputationFeedback(article *models.Article, cr *models.CorroborationResult) {
	if len(cr.Corroborating) > 0 {
		v.tracker.RecordConfirmation(article.SourceName, cr.CorroboratorSources(), cr.IsFirstToReport)
	}
	if len(cr.Conflicting) > 0 {
		v.tracker.RecordContradiction(article.SourceName, cr.ConflictSources())
	}
}

// degraded builds the fallback result used when corroboration or scoring
// could not complete: the total collapses to the reputation factor alone and
// the score is flagged so downstream consumers can discount it.
func (v *Validator) degraded(ctx context.Context, article *models.Article, extracted []*models.ExtractedClaim, start time.Time, cause error) *models.ValidationResult {
	v.log.Warn("validation degraded", "article_id", article.ID, "error", cause)
	monitoring.RecordError("validation_degraded", "validator")

	rep := v.tracker.GetReputation(article.SourceName)
	total := rep * trust.WeightSourceReputation
	score := &models.TrustScore{
		ArticleID: article.ID,
		Total:     total,
		Level:     models.ClassifyTrust(total),
		Factors: []models.TrustFactor{
			{Name: "source_reputation", Score: rep, Weight: trust.WeightSourceReputation, Weighted: total},
		},
		Confidence:   degradedConfidence,
		Degraded:     true,
		CalculatedAt: time.Now(),
	}

	monitoring.RecordArticleProcessed("degraded")
	monitoring.RecordValidationDuration(time.Since(start))
	return &models.ValidationResult{
		ArticleID:   article.ID,
		Trust:       score,
		Claims:      extracted,
		Reputation:  v.tracker.Snapshot(article.SourceName),
		ValidatedAt: time.Now(),
	}
}
