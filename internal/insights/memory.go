package insights

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/veritasworks/veritas-core/internal/models"
)

// MemoryStore is the in-process Store used when no Postgres URL is
// configured, and by tests. Semantics mirror PostgresStore, including the
// (company, code, day) de-dup rule.
type MemoryStore struct {
	mu              sync.RWMutex
	insights        map[string]*models.Insight
	dedup           map[string]string // company|code|day -> insight id
	recommendations map[string][]models.Recommendation
	history         []scoreHistoryRow
	daily           map[string]*dailyRow
}

type scoreHistoryRow struct {
	CompanyID     string
	IndicatorCode string
	Value         float64
	Trend         models.TrendDirection
	RecordedAt    time.Time
}

type dailyRow struct {
	Detected int
	Resolved int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		insights:        make(map[string]*models.Insight),
		dedup:           make(map[string]string),
		recommendations: make(map[string][]models.Recommendation),
		daily:           make(map[string]*dailyRow),
	}
}

func dedupKey(companyID, code string, detectedAt time.Time) string {
	return companyID + "|" + code + "|" + detectedAt.UTC().Format("2006-01-02")
}

func (m *MemoryStore) SaveInsight(_ context.Context, in *models.Insight) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := dedupKey(in.CompanyID, in.Code, in.DetectedAt)
	if existingID, ok := m.dedup[key]; ok {
		existing := m.insights[existingID]
		if in.Confidence <= existing.Confidence {
			return false, nil
		}
		// Higher confidence same-day detection refreshes the existing row.
		existing.Probability = in.Probability
		existing.Impact = in.Impact
		existing.Urgency = in.Urgency
		existing.Confidence = in.Confidence
		existing.FinalScore = in.FinalScore
		existing.Severity = in.Severity
		existing.Reasoning = in.Reasoning
		existing.TriggeringIndicators = in.TriggeringIndicators
		existing.UpdatedAt = in.UpdatedAt
		return false, nil
	}

	cp := *in
	m.insights[in.ID] = &cp
	m.dedup[key] = in.ID
	return true, nil
}

func (m *MemoryStore) SaveRecommendations(_ context.Context, recs []models.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range recs {
		m.recommendations[r.InsightID] = append(m.recommendations[r.InsightID], r)
	}
	return nil
}

func (m *MemoryStore) GetInsight(_ context.Context, id string) (*models.Insight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	in, ok := m.insights[id]
	if !ok {
		return nil, fmt.Errorf("insight %s: %w", id, models.ErrNotFound)
	}
	cp := *in
	return &cp, nil
}

func (m *MemoryStore) ListActive(_ context.Context, companyID string) ([]*models.Insight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Insight
	for _, in := range m.insights {
		if in.CompanyID == companyID && !in.Status.IsTerminal() {
			cp := *in
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FinalScore > out[j].FinalScore })
	return out, nil
}

func (m *MemoryStore) ListOpen(_ context.Context) ([]*models.Insight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Insight
	for _, in := range m.insights {
		if !in.Status.IsTerminal() {
			cp := *in
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryStore) UpdateStatus(_ context.Context, in *models.Insight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.insights[in.ID]
	if !ok {
		return fmt.Errorf("insight %s: %w", in.ID, models.ErrNotFound)
	}
	existing.Status = in.Status
	existing.UpdatedAt = in.UpdatedAt
	existing.AcknowledgedAt = in.AcknowledgedAt
	existing.AcknowledgedBy = in.AcknowledgedBy
	existing.ResolvedAt = in.ResolvedAt
	existing.ResolutionNotes = in.ResolutionNotes
	existing.ActualImpact = in.ActualImpact
	return nil
}

func (m *MemoryStore) RecordScoreHistory(_ context.Context, ops *models.OperationalIndicators) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, ind := range ops.Indicators {
		m.history = append(m.history, scoreHistoryRow{
			CompanyID:     ops.CompanyID,
			IndicatorCode: code,
			Value:         ind.Value,
			Trend:         ind.Trend,
			RecordedAt:    ops.ComputedAt,
		})
	}
	return nil
}

func (m *MemoryStore) RecordDailyTracking(_ context.Context, companyID string, day time.Time, detected, resolved int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := companyID + "|" + day.UTC().Format("2006-01-02")
	row, ok := m.daily[key]
	if !ok {
		row = &dailyRow{}
		m.daily[key] = row
	}
	row.Detected += detected
	row.Resolved += resolved
	return nil
}

// Recommendations returns the stored recommendations for one insight,
// ordered by priority.
func (m *MemoryStore) Recommendations(insightID string) []models.Recommendation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := append([]models.Recommendation(nil), m.recommendations[insightID]...)
	sort.Slice(recs, func(i, j int) bool { return recs[i].Priority < recs[j].Priority })
	return recs
}

func (m *MemoryStore) Close() {}
