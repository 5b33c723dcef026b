package insights

import (
	"context"
	"errors"
	"time"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/internal/monitoring"
	"github.com/veritasworks/veritas-core/internal/projection"
	"github.com/veritasworks/veritas-core/pkg/cache"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// Store write retry policy for transient failures.
const (
	storeRetryBase = 500 * time.Millisecond
	storeRetryMax  = 5
)

// DetectedInsight bundles one persisted insight with its generated
// recommendations, action plan and narrative.
type DetectedInsight struct {
	Insight         *models.Insight         `json:"insight"`
	Recommendations []models.Recommendation `json:"recommendations"`
	ActionPlan      []models.ActionPlanStep `json:"action_plan"`
	Narrative       *models.Narrative       `json:"narrative"`
}

// AnalysisResult is the full output of one company analysis pass.
type AnalysisResult struct {
	CompanyID   string                        `json:"company_id"`
	Operational *models.OperationalIndicators `json:"operational"`
	Insights    []DetectedInsight             `json:"insights"`
	AnalyzedAt  time.Time                     `json:"analyzed_at"`
}

// Service runs the company analysis pass: projection, detection,
// recommendation generation, persistence and lifecycle management.
type Service struct {
	projector *projection.Engine
	detector  *Detector
	lifecycle *Lifecycle
	store     Store
	results   cache.ResultsCache
	log       logger.Logger
}

// NewService wires the analysis pass together.
func NewService(projector *projection.Engine, detector *Detector, lifecycle *Lifecycle,
	store Store, results cache.ResultsCache, log logger.Logger) *Service {
	return &Service{
		projector: projector,
		detector:  detector,
		lifecycle: lifecycle,
		store:     store,
		results:   results,
		log:       log,
	}
}

// Analyze projects the national snapshot onto the company, detects risks and
// opportunities, persists them and returns the enriched result. Transient
// store failures are retried; permanent ones abort the pass.
func (s *Service) Analyze(ctx context.Context, profile *models.CompanyProfile, snapshot *models.Layer2Output) (*AnalysisResult, error) {
	ops := s.projector.Project(profile, snapshot)
	detected := s.detector.Detect(profile, ops)

	result := &AnalysisResult{
		CompanyID:   profile.ID,
		Operational: ops,
		AnalyzedAt:  time.Now(),
	}

	created := 0
	for _, in := range detected {
		if err := s.retryStore(ctx, func() error {
			isNew, saveErr := s.store.SaveInsight(ctx, in)
			if saveErr == nil && isNew {
				created++
			}
			return saveErr
		}); err != nil {
			return nil, err
		}

		recs := GenerateRecommendations(in, profile)
		if err := s.retryStore(ctx, func() error {
			return s.store.SaveRecommendations(ctx, recs)
		}); err != nil {
			return nil, err
		}

		narrative := GenerateNarrative(in)
		if err := s.results.CacheNarrative(ctx, in.ID, narrative); err != nil {
			s.log.Debug("narrative cache write failed", "insight_id", in.ID, "error", err)
		}

		result.Insights = append(result.Insights, DetectedInsight{
			Insight:         in,
			Recommendations: recs,
			ActionPlan:      CreateActionPlan(recs),
			Narrative:       narrative,
		})
	}

	if err := s.store.RecordScoreHistory(ctx, ops); err != nil {
		s.log.Warn("score history write failed", "company_id", profile.ID, "error", err)
	}
	if created > 0 {
		if err := s.store.RecordDailyTracking(ctx, profile.ID, result.AnalyzedAt, created, 0); err != nil {
			s.log.Warn("daily tracking write failed", "company_id", profile.ID, "error", err)
		}
	}

	s.refreshInsightsCache(ctx, profile.ID)
	return result, nil
}

// ListInsights returns the company's open insights, preferring the cache.
func (s *Service) ListInsights(ctx context.Context, companyID string) ([]*models.Insight, error) {
	if cached, err := s.results.GetCachedInsights(ctx, companyID); err == nil && cached != nil {
		monitoring.RecordCacheOperation("get_insights", "hit")
		return cached, nil
	}
	monitoring.RecordCacheOperation("get_insights", "miss")

	list, err := s.store.ListActive(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if err := s.results.CacheInsights(ctx, companyID, list); err != nil {
		s.log.Debug("insights cache write failed", "company_id", companyID, "error", err)
	}
	return list, nil
}

// Acknowledge transitions an insight to acknowledged and persists it.
func (s *Service) Acknowledge(ctx context.Context, insightID, by string) (*models.Insight, error) {
	in, err := s.store.GetInsight(ctx, insightID)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.Acknowledge(in, by); err != nil {
		return nil, err
	}
	if err := s.store.UpdateStatus(ctx, in); err != nil {
		return nil, err
	}
	s.refreshInsightsCache(ctx, in.CompanyID)
	return in, nil
}

// Resolve closes an insight with the operator's notes and bumps the daily
// resolution counter.
func (s *Service) Resolve(ctx context.Context, insightID, notes, actualImpact string) (*models.Insight, error) {
	in, err := s.store.GetInsight(ctx, insightID)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.Resolve(in, notes, actualImpact); err != nil {
		return nil, err
	}
	if err := s.store.UpdateStatus(ctx, in); err != nil {
		return nil, err
	}
	if err := s.store.RecordDailyTracking(ctx, in.CompanyID, time.Now(), 0, 1); err != nil {
		s.log.Warn("daily tracking write failed", "company_id", in.CompanyID, "error", err)
	}
	s.refreshInsightsCache(ctx, in.CompanyID)
	return in, nil
}

// SweepExpired expires overdue open insights across all companies and
// persists the transitions. Intended to run on a background ticker.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	open, err := s.store.ListOpen(ctx)
	if err != nil {
		return 0, err
	}
	expired := s.lifecycle.SweepExpired(open, now)
	for _, in := range expired {
		if err := s.store.UpdateStatus(ctx, in); err != nil {
			s.log.Warn("expiry persist failed", "insight_id", in.ID, "error", err)
			continue
		}
		s.refreshInsightsCache(ctx, in.CompanyID)
	}
	return len(expired), nil
}

func (s *Service) refreshInsightsCache(ctx context.Context, companyID string) {
	list, err := s.store.ListActive(ctx, companyID)
	if err != nil {
		return
	}
	if err := s.results.CacheInsights(ctx, companyID, list); err != nil {
		s.log.Debug("insights cache refresh failed", "company_id", companyID, "error", err)
	}
}

// retryStore runs op, retrying transient store failures with exponential
// backoff.
func (s *Service) retryStore(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < storeRetryMax; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrTransientStore) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(storeRetryBase << attempt):
		}
	}
	return err
}
