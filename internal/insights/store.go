package insights

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/internal/monitoring"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// schemaSQL is compiled into the binary so schema init works in runtime
// images that do not ship the .sql file.
//
//go:embed schema.sql
var schemaSQL string

// Store is the persistence surface for insights, recommendations and the
// per-company tracking tables.
type Store interface {
	// SaveInsight upserts on (company, code, day): a same-day duplicate is
	// replaced only when the new detection carries higher confidence.
	// Returns true when a new row was created.
	SaveInsight(ctx context.Context, in *models.Insight) (bool, error)
	SaveRecommendations(ctx context.Context, recs []models.Recommendation) error
	GetInsight(ctx context.Context, id string) (*models.Insight, error)
	ListActive(ctx context.Context, companyID string) ([]*models.Insight, error)
	ListOpen(ctx context.Context) ([]*models.Insight, error)
	UpdateStatus(ctx context.Context, in *models.Insight) error
	RecordScoreHistory(ctx context.Context, ops *models.OperationalIndicators) error
	RecordDailyTracking(ctx context.Context, companyID string, day time.Time, detected, resolved int) error
	Close()
}

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  logger.Logger
}

// ConnectPostgres opens the pool, pings it and applies the embedded schema.
func ConnectPostgres(ctx context.Context, connStr string, log logger.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("insight store connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("insight store ping: %w: %v", models.ErrTransientStore, err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("insight store schema: %w", err)
	}
	log.Info("insight store connected")
	return &PostgresStore{pool: pool, log: log}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const insightColumns = `insight_id, company_id, code, type, category, title, description,
	reasoning, probability, impact, urgency, confidence, final_score, severity,
	status, triggering_indicators, detected_at, updated_at, acknowledged_at,
	acknowledged_by, resolved_at, resolution_notes, actual_impact, expected_impact_time`

func (s *PostgresStore) SaveInsight(ctx context.Context, in *models.Insight) (bool, error) {
	triggering, err := json.Marshal(in.TriggeringIndicators)
	if err != nil {
		return false, fmt.Errorf("marshal triggering indicators: %w", err)
	}

	sql := `
		INSERT INTO insights (` + insightColumns + `, detected_on)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$17::date)
		ON CONFLICT ON CONSTRAINT insights_company_code_day DO UPDATE SET
			probability = EXCLUDED.probability,
			impact = EXCLUDED.impact,
			urgency = EXCLUDED.urgency,
			confidence = EXCLUDED.confidence,
			final_score = EXCLUDED.final_score,
			severity = EXCLUDED.severity,
			reasoning = EXCLUDED.reasoning,
			triggering_indicators = EXCLUDED.triggering_indicators,
			updated_at = EXCLUDED.updated_at
		WHERE EXCLUDED.confidence > insights.confidence
		RETURNING insight_id;
	`
	var id string
	err = s.pool.QueryRow(ctx, sql,
		in.ID, in.CompanyID, in.Code, in.Type, in.Category, in.Title, in.Description,
		in.Reasoning, in.Probability, in.Impact, in.Urgency, in.Confidence,
		in.FinalScore, in.Severity, in.Status, triggering, in.DetectedAt,
		in.UpdatedAt, in.AcknowledgedAt, in.AcknowledgedBy, in.ResolvedAt,
		in.ResolutionNotes, in.ActualImpact, in.ExpectedImpactTime,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// Same-day duplicate with equal or lower confidence; existing row wins.
		return false, nil
	}
	if err != nil {
		monitoring.RecordStoreOperation("save_insight", "postgres", err)
		return false, fmt.Errorf("save insight: %w: %v", models.ErrTransientStore, err)
	}
	monitoring.RecordStoreOperation("save_insight", "postgres", nil)
	return id == in.ID, nil
}

func (s *PostgresStore) SaveRecommendations(ctx context.Context, recs []models.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save recommendations: %w: %v", models.ErrTransientStore, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sql := `
		INSERT INTO insight_recommendations
			(recommendation_id, insight_id, category, priority, action, responsible, effort, timeframe, success_metrics)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (recommendation_id) DO NOTHING;
	`
	for _, r := range recs {
		metrics, err := json.Marshal(r.SuccessMetrics)
		if err != nil {
			return fmt.Errorf("marshal success metrics: %w", err)
		}
		if _, err := tx.Exec(ctx, sql,
			r.ID, r.InsightID, r.Category, r.Priority, r.Action,
			r.Responsible, r.Effort, r.Timeframe, metrics); err != nil {
			return fmt.Errorf("save recommendation: %w: %v", models.ErrTransientStore, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) GetInsight(ctx context.Context, id string) (*models.Insight, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+insightColumns+` FROM insights WHERE insight_id = $1`, id)
	in, err := scanInsight(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("insight %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get insight: %w: %v", models.ErrTransientStore, err)
	}
	return in, nil
}

func (s *PostgresStore) ListActive(ctx context.Context, companyID string) ([]*models.Insight, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+insightColumns+` FROM insights
		WHERE company_id = $1 AND status IN ('active', 'acknowledged')
		ORDER BY final_score DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list active insights: %w: %v", models.ErrTransientStore, err)
	}
	defer rows.Close()
	return scanInsights(rows)
}

func (s *PostgresStore) ListOpen(ctx context.Context) ([]*models.Insight, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+insightColumns+` FROM insights
		WHERE status IN ('active', 'acknowledged')`)
	if err != nil {
		return nil, fmt.Errorf("list open insights: %w: %v", models.ErrTransientStore, err)
	}
	defer rows.Close()
	return scanInsights(rows)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, in *models.Insight) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE insights SET
			status = $2, updated_at = $3, acknowledged_at = $4, acknowledged_by = $5,
			resolved_at = $6, resolution_notes = $7, actual_impact = $8
		WHERE insight_id = $1`,
		in.ID, in.Status, in.UpdatedAt, in.AcknowledgedAt, in.AcknowledgedBy,
		in.ResolvedAt, in.ResolutionNotes, in.ActualImpact)
	if err != nil {
		return fmt.Errorf("update insight status: %w: %v", models.ErrTransientStore, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("insight %s: %w", in.ID, models.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) RecordScoreHistory(ctx context.Context, ops *models.OperationalIndicators) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("record score history: %w: %v", models.ErrTransientStore, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sql := `
		INSERT INTO insight_score_history (company_id, indicator_code, value, trend, recorded_at)
		VALUES ($1,$2,$3,$4,$5);
	`
	for code, ind := range ops.Indicators {
		if _, err := tx.Exec(ctx, sql, ops.CompanyID, code, ind.Value, ind.Trend, ops.ComputedAt); err != nil {
			return fmt.Errorf("record score history: %w: %v", models.ErrTransientStore, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) RecordDailyTracking(ctx context.Context, companyID string, day time.Time, detected, resolved int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO insight_daily_tracking (company_id, day, detected_count, resolved_count)
		VALUES ($1, $2::date, $3, $4)
		ON CONFLICT (company_id, day) DO UPDATE SET
			detected_count = insight_daily_tracking.detected_count + EXCLUDED.detected_count,
			resolved_count = insight_daily_tracking.resolved_count + EXCLUDED.resolved_count`,
		companyID, day, detected, resolved)
	if err != nil {
		return fmt.Errorf("record daily tracking: %w: %v", models.ErrTransientStore, err)
	}
	return nil
}

func scanInsights(rows pgx.Rows) ([]*models.Insight, error) {
	var out []*models.Insight
	for rows.Next() {
		in, err := scanInsight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan insight: %w: %v", models.ErrTransientStore, err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func scanInsight(row pgx.Row) (*models.Insight, error) {
	var in models.Insight
	var triggering []byte
	err := row.Scan(
		&in.ID, &in.CompanyID, &in.Code, &in.Type, &in.Category, &in.Title,
		&in.Description, &in.Reasoning, &in.Probability, &in.Impact, &in.Urgency,
		&in.Confidence, &in.FinalScore, &in.Severity, &in.Status, &triggering,
		&in.DetectedAt, &in.UpdatedAt, &in.AcknowledgedAt, &in.AcknowledgedBy,
		&in.ResolvedAt, &in.ResolutionNotes, &in.ActualImpact, &in.ExpectedImpactTime,
	)
	if err != nil {
		return nil, err
	}
	if len(triggering) > 0 {
		if err := json.Unmarshal(triggering, &in.TriggeringIndicators); err != nil {
			return nil, err
		}
	}
	return &in, nil
}
