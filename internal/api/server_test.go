package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritasworks/veritas-core/internal/claims"
	"github.com/veritasworks/veritas-core/internal/config"
	"github.com/veritasworks/veritas-core/internal/corroboration"
	"github.com/veritasworks/veritas-core/internal/insights"
	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/internal/projection"
	"github.com/veritasworks/veritas-core/internal/reputation"
	"github.com/veritasworks/veritas-core/internal/trust"
	"github.com/veritasworks/veritas-core/internal/validator"
	"github.com/veritasworks/veritas-core/pkg/cache"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

func newTestServer() *Server {
	return buildTestServer(false)
}

func buildTestServer(metrics bool) *Server {
	log := logger.NewNop()
	results := cache.NewNoop()

	tracker := reputation.NewTracker(reputation.DefaultOptions(), log)
	engine := corroboration.NewEngine(corroboration.DefaultOptions(), nil, nil, tracker, log)
	calc := trust.NewCalculator(tracker, log)
	v := validator.NewValidator(validator.DefaultOptions(), claims.NewExtractor(log), engine, calc, tracker, results, log)

	svc := insights.NewService(projection.NewEngine(log), insights.NewDetector(log),
		insights.NewLifecycle(log), insights.NewMemoryStore(), results, log)

	cfg := &config.Config{Port: 8080, Monitoring: config.MonitoringConfig{Enabled: metrics, MetricsPath: "/metrics"}}
	return NewServer(cfg, log, results, v, svc)
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	s := newTestServer()
	w := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_ValidateArticles(t *testing.T) {
	s := newTestServer()

	body := map[string]interface{}{
		"articles": []*models.Article{{
			ID:          "a1",
			SourceName:  "blog_xyz",
			Title:       "Inflation climbs",
			Body:        "Inflation rose to 12% this month, officials said.",
			PublishedAt: time.Now(),
			Language:    "en",
		}},
	}
	w := doJSON(t, s, http.MethodPost, "/api/v1/articles/validate", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results []*models.ValidationResult `json:"results"`
		Skipped int                        `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 0, resp.Skipped)
	assert.InDelta(t, 37.5, resp.Results[0].Trust.Total, 1e-9)
	assert.Equal(t, models.TrustLow, resp.Results[0].Trust.Level)
}

func TestServer_ValidateRejectsEmptyBody(t *testing.T) {
	s := newTestServer()
	w := doJSON(t, s, http.MethodPost, "/api/v1/articles/validate", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_TrustLookupMissIs404(t *testing.T) {
	s := newTestServer()
	w := doJSON(t, s, http.MethodGet, "/api/v1/articles/a1/trust", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// metricValue scrapes /metrics and returns the sample matching the metric
// name and label fragment, 0 when absent.
func metricValue(t *testing.T, s *Server, name, label string) float64 {
	t.Helper()
	w := doJSON(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, line := range strings.Split(w.Body.String(), "\n") {
		if strings.HasPrefix(line, name) && strings.Contains(line, label) {
			fields := strings.Fields(line)
			v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
			require.NoError(t, err)
			return v
		}
	}
	return 0
}

func TestServer_ClaimMetricCountsEachClaimOnce(t *testing.T) {
	s := buildTestServer(true)

	const metric = "veritas_core_claims_extracted_total"
	before := metricValue(t, s, metric, `kind="numeric"`)

	body := map[string]interface{}{
		"articles": []*models.Article{{
			ID:          "m1",
			SourceName:  "blog_xyz",
			Title:       "Inflation climbs",
			Body:        "Inflation rose to 12% this month.",
			PublishedAt: time.Now(),
			Language:    "en",
		}},
	}
	w := doJSON(t, s, http.MethodPost, "/api/v1/articles/validate", body)
	require.Equal(t, http.StatusOK, w.Code)

	// One numeric claim in the article, one increment on the counter.
	after := metricValue(t, s, metric, `kind="numeric"`)
	assert.Equal(t, 1.0, after-before)
}

func analyzeBody() map[string]interface{} {
	return map[string]interface{}{
		"profile": &models.CompanyProfile{ID: "c1", Industry: models.IndustryRetail},
		"snapshot": &models.Layer2Output{
			Timestamp: time.Now(),
			Indicators: map[string]models.IndicatorValue{
				"ECON_INFLATION": {IndicatorID: "ECON_INFLATION", Category: models.PESTELEconomic, Value: 80, Confidence: 1.0},
			},
		},
	}
}

func TestServer_AnalyzeAndLifecycle(t *testing.T) {
	s := newTestServer()

	w := doJSON(t, s, http.MethodPost, "/api/v1/companies/c1/analyze", analyzeBody())
	require.Equal(t, http.StatusOK, w.Code)

	var result insights.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "c1", result.CompanyID)
	require.Len(t, result.Insights, 1)
	insightID := result.Insights[0].Insight.ID
	assert.Equal(t, "RISK_COST_ESCALATION", result.Insights[0].Insight.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/companies/c1/insights", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Insights []*models.Insight `json:"insights"`
		Count    int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	ackPath := fmt.Sprintf("/api/v1/insights/%s/acknowledge", insightID)
	w = doJSON(t, s, http.MethodPost, ackPath, map[string]string{"acknowledged_by": "ops@acme"})
	require.Equal(t, http.StatusOK, w.Code)

	resolvePath := fmt.Sprintf("/api/v1/insights/%s/resolve", insightID)
	w = doJSON(t, s, http.MethodPost, resolvePath, map[string]string{"notes": "hedged", "actual_impact": "contained"})
	require.Equal(t, http.StatusOK, w.Code)

	// Terminal state: a second acknowledge conflicts.
	w = doJSON(t, s, http.MethodPost, ackPath, map[string]string{"acknowledged_by": "again"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestServer_AnalyzeRejectsMissingSnapshot(t *testing.T) {
	s := newTestServer()
	body := map[string]interface{}{
		"profile": &models.CompanyProfile{ID: "c1", Industry: models.IndustryRetail},
	}
	w := doJSON(t, s, http.MethodPost, "/api/v1/companies/c1/analyze", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_AcknowledgeUnknownInsight(t *testing.T) {
	s := newTestServer()
	w := doJSON(t, s, http.MethodPost, "/api/v1/insights/nope/acknowledge",
		map[string]string{"acknowledged_by": "ops"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
