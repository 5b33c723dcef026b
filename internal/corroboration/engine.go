package corroboration

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/veritasworks/veritas-core/internal/claims"
	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/internal/similarity"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// Similarity thresholds for corroboration levels.
const (
	StrongThreshold   = 0.85
	ModerateThreshold = 0.70
	WeakThreshold     = 0.55
)

// conflictRelDiff is the relative difference beyond which two numeric
// claims with the same unit are treated as a value mismatch.
const conflictRelDiff = 0.2

// resultTTL memoizes corroboration results per article.
const resultTTL = time.Hour

// maxCandidates caps the similar-article list considered per lookup.
const maxCandidates = 10

// TierLookup resolves a source name to its tier. Satisfied by the
// reputation tracker.
type TierLookup interface {
	GetTier(source string) models.SourceTier
}

// Options configures the engine.
type Options struct {
	// Window is the corroboration window; only articles within ±Window of
	// each other are compared. Cache entries are pruned at twice this age.
	Window time.Duration
}

// DefaultOptions returns the 72 hour window.
func DefaultOptions() Options {
	return Options{Window: 72 * time.Hour}
}

type cachedArticle struct {
	article *models.Article
	claims  []*models.ExtractedClaim
	addedAt time.Time
}

type cachedResult struct {
	result     *models.CorroborationResult
	computedAt time.Time
}

// Engine finds corroborating and conflicting articles across sources. It
// owns the article/claims cache and the result memo; both are bounded by
// window-based pruning at insert time.
type Engine struct {
	opts     Options
	provider similarity.Provider
	local    *similarity.BleveProvider
	tiers    TierLookup
	log      logger.Logger

	mu      sync.RWMutex
	cache   map[string]*cachedArticle
	results map[string]*cachedResult
}

// NewEngine creates an engine. provider may be nil; local may be nil, in
// which case candidate search falls back to a Jaccard scan of the cache.
func NewEngine(opts Options, provider similarity.Provider, local *similarity.BleveProvider, tiers TierLookup, log logger.Logger) *Engine {
	if opts.Window <= 0 {
		opts.Window = DefaultOptions().Window
	}
	return &Engine{
		opts:     opts,
		provider: provider,
		local:    local,
		tiers:    tiers,
		log:      log,
		cache:    make(map[string]*cachedArticle),
		results:  make(map[string]*cachedResult),
	}
}

// AddToCache admits an article and its claims to the corroboration window
// and prunes entries older than twice the window.
func (e *Engine) AddToCache(article *models.Article, articleClaims []*models.ExtractedClaim) {
	now := time.Now()

	e.mu.Lock()
	e.cache[article.ID] = &cachedArticle{article: article, claims: articleClaims, addedAt: now}

	cutoff := now.Add(-2 * e.opts.Window)
	for id, entry := range e.cache {
		if entry.addedAt.Before(cutoff) {
			delete(e.cache, id)
			delete(e.results, id)
			if e.local != nil {
				_ = e.local.RemoveArticle(id)
			}
		}
	}
	e.mu.Unlock()

	if e.local != nil {
		if err := e.local.IndexArticle(article.ID, article.Title, article.Body); err != nil {
			e.log.Warn("failed to index article for similarity", "article_id", article.ID, "error", err)
		}
	}
}

// CachedClaims returns the cached claims for an article, if present.
func (e *Engine) CachedClaims(articleID string) []*models.ExtractedClaim {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if entry, ok := e.cache[articleID]; ok {
		return entry.claims
	}
	return nil
}

// FindCorroboration computes the corroboration result for an article,
// returning a memoized result when one is younger than an hour.
func (e *Engine) FindCorroboration(ctx context.Context, article *models.Article, articleClaims []*models.ExtractedClaim) *models.CorroborationResult {
	e.mu.RLock()
	if cached, ok := e.results[article.ID]; ok && time.Since(cached.computedAt) < resultTTL {
		res := cached.result
		e.mu.RUnlock()
		return res
	}
	_, inCache := e.cache[article.ID]
	e.mu.RUnlock()

	if !inCache {
		e.AddToCache(article, articleClaims)
	}

	similars := e.findSimilar(ctx, article)

	result := &models.CorroborationResult{
		ArticleID:      article.ID,
		EarliestReport: article.PublishedAt,
		ComputedAt:     time.Now(),
	}

	tierSet := make(map[models.SourceTier]bool)
	sourceSet := map[string]bool{article.SourceName: true}

	for _, cand := range similars {
		if sameSource(cand.article.SourceName, article.SourceName) {
			continue
		}
		if !e.withinWindow(article, cand.article) {
			continue
		}

		tier := e.tiers.GetTier(cand.article.SourceName)
		related := models.RelatedArticle{
			ArticleID:   cand.article.ID,
			SourceName:  cand.article.SourceName,
			Tier:        tier,
			Similarity:  cand.similarity,
			PublishedAt: cand.article.PublishedAt,
		}

		if conflictType := detectConflict(articleClaims, cand.claims); conflictType != "" {
			related.ConflictType = conflictType
			result.Conflicting = append(result.Conflicting, related)
			continue
		}

		result.Corroborating = append(result.Corroborating, related)
		tierSet[tier] = true
		sourceSet[cand.article.SourceName] = true
		if cand.article.PublishedAt.Before(result.EarliestReport) {
			result.EarliestReport = cand.article.PublishedAt
		}
	}

	result.UniqueSources = len(sourceSet)
	for tier := range tierSet {
		result.TiersRepresented = append(result.TiersRepresented, tier)
	}
	sort.Slice(result.TiersRepresented, func(i, j int) bool {
		return result.TiersRepresented[i] < result.TiersRepresented[j]
	})

	result.IsFirstToReport = firstToReport(article, result.Corroborating)
	result.Level = classifyLevel(result)
	result.Score = corroborationScore(result)

	e.mu.Lock()
	e.results[article.ID] = &cachedResult{result: result, computedAt: time.Now()}
	e.mu.Unlock()

	return result
}

type candidate struct {
	article    *models.Article
	claims     []*models.ExtractedClaim
	similarity float64
}

// findSimilar asks the external provider first, the bleve index second, and
// falls back to a Jaccard scan of the local cache.
func (e *Engine) findSimilar(ctx context.Context, article *models.Article) []candidate {
	if e.provider != nil {
		dups, err := e.provider.FindDuplicates(ctx, article.ID, article.Body, article.Title, WeakThreshold)
		if err == nil {
			return e.resolveDuplicates(dups)
		}
		e.log.Warn("similarity provider failed, falling back to local scan",
			"article_id", article.ID, "error", err)
	}

	if e.local != nil {
		dups, err := e.local.FindDuplicates(ctx, article.ID, article.Body, article.Title, WeakThreshold)
		if err == nil && len(dups) > 0 {
			return e.resolveDuplicates(dups)
		}
	}

	return e.scanCache(article)
}

func (e *Engine) resolveDuplicates(dups []similarity.Duplicate) []candidate {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []candidate
	for _, d := range dups {
		if entry, ok := e.cache[d.DuplicateID]; ok {
			out = append(out, candidate{article: entry.article, claims: entry.claims, similarity: d.SimilarityScore})
		}
	}
	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}
	return out
}

// scanCache computes 0.4*titleJaccard + 0.6*bodyJaccard over the first 100
// body tokens and keeps the top candidates at or above the weak threshold.
func (e *Engine) scanCache(article *models.Article) []candidate {
	titleSet := claims.TokenSet(claims.Normalize(article.Title))
	bodySet := truncatedTokenSet(article.Body, 100)

	e.mu.RLock()
	var out []candidate
	for id, entry := range e.cache {
		if id == article.ID {
			continue
		}
		sim := 0.4*claims.Jaccard(titleSet, claims.TokenSet(claims.Normalize(entry.article.Title))) +
			0.6*claims.Jaccard(bodySet, truncatedTokenSet(entry.article.Body, 100))
		if sim >= WeakThreshold {
			out = append(out, candidate{article: entry.article, claims: entry.claims, similarity: sim})
		}
	}
	e.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].similarity > out[j].similarity })
	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}
	return out
}

func truncatedTokenSet(body string, maxTokens int) map[string]bool {
	normalized := claims.Normalize(body)
	fields := strings.Fields(normalized)
	if len(fields) > maxTokens {
		fields = fields[:maxTokens]
	}
	return claims.TokenSet(strings.Join(fields, " "))
}

func (e *Engine) withinWindow(a, b *models.Article) bool {
	diff := a.PublishedAt.Sub(b.PublishedAt)
	if diff < 0 {
		diff = -diff
	}
	return diff <= e.opts.Window
}

// detectConflict compares numeric claims with matching units; a relative
// difference above conflictRelDiff marks a value mismatch. Qualitative
// contradictions are out of scope.
func detectConflict(a, b []*models.ExtractedClaim) string {
	for _, ca := range a {
		if ca.Kind != models.ClaimNumeric || ca.NumericValue == nil {
			continue
		}
		for _, cb := range b {
			if cb.Kind != models.ClaimNumeric || cb.NumericValue == nil || cb.Unit != ca.Unit {
				continue
			}
			v1, v2 := *ca.NumericValue, *cb.NumericValue
			max := math.Max(math.Abs(v1), math.Abs(v2))
			if max == 0 {
				continue
			}
			if math.Abs(v1-v2)/max > conflictRelDiff {
				return "value_mismatch"
			}
		}
	}
	return ""
}

func sameSource(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func firstToReport(article *models.Article, corroborating []models.RelatedArticle) bool {
	for _, c := range corroborating {
		if c.PublishedAt.Before(article.PublishedAt) {
			return false
		}
	}
	return true
}

func classifyLevel(r *models.CorroborationResult) models.CorroborationLevel {
	corr, conf := len(r.Corroborating), len(r.Conflicting)
	if conf > corr {
		return models.CorroborationConflicting
	}
	switch {
	case corr >= 3 || r.HasTier(models.TierOfficial):
		return models.CorroborationStrong
	case corr >= 2 || (corr >= 1 && r.HasTier(models.Tier1)):
		return models.CorroborationModerate
	case corr >= 1:
		return models.CorroborationWeak
	default:
		return models.CorroborationNone
	}
}

// corroborationScore is 30 base + 15 per corroborator + 20 per official +
// 10 per tier_1 + 5 first-to-report bonus - 25 per conflict, clamped to
// [0,100].
func corroborationScore(r *models.CorroborationResult) float64 {
	score := 30.0
	score += 15 * float64(len(r.Corroborating))
	for _, c := range r.Corroborating {
		switch c.Tier {
		case models.TierOfficial:
			score += 20
		case models.Tier1:
			score += 10
		}
	}
	if r.IsFirstToReport && len(r.Corroborating) > 0 {
		score += 5
	}
	score -= 25 * float64(len(r.Conflicting))

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
