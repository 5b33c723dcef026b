package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritasworks/veritas-core/pkg/logger"
)

func seedSeries(store *SeriesStore, company, indicator string, start time.Time, values []float64) {
	for i, v := range values {
		store.Append(company, indicator, start.AddDate(0, 0, i), v)
	}
}

func TestCalculateMatrix_SymmetricWithUnitDiagonal(t *testing.T) {
	store := NewSeriesStore()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var a, b, c []float64
	for i := 0; i < 30; i++ {
		x := float64(i)
		a = append(a, x)
		b = append(b, 2*x+5)
		c = append(c, 100-x)
	}
	seedSeries(store, "c1", "alpha", start, a)
	seedSeries(store, "c1", "beta", start, b)
	seedSeries(store, "c1", "gamma", start, c)

	corr := NewCorrelator(store, logger.NewNop())
	m, err := corr.CalculateMatrix("c1", nil)
	require.NoError(t, err)

	for _, i := range m.Indicators {
		assert.Equal(t, 1.0, m.Matrix[i][i])
		for _, j := range m.Indicators {
			assert.Equal(t, m.Matrix[i][j], m.Matrix[j][i])
		}
	}

	assert.InDelta(t, 1.0, m.Matrix["alpha"]["beta"], 1e-9)
	assert.InDelta(t, -1.0, m.Matrix["alpha"]["gamma"], 1e-9)
	require.NotNil(t, m.StrongestPositive)
	require.NotNil(t, m.StrongestNegative)
	assert.InDelta(t, 1.0, m.StrongestPositive.Correlation, 1e-9)
	assert.InDelta(t, -1.0, m.StrongestNegative.Correlation, 1e-9)
}

func TestCalculateMatrix_RequiresTwoIndicators(t *testing.T) {
	store := NewSeriesStore()
	seedSeries(store, "c1", "alpha", time.Now(), []float64{1, 2, 3})
	corr := NewCorrelator(store, logger.NewNop())
	_, err := corr.CalculateMatrix("c1", nil)
	assert.Error(t, err)
}

func TestClassifyCorrelation_Bands(t *testing.T) {
	assert.Equal(t, "strong", ClassifyCorrelation(-0.8))
	assert.Equal(t, "moderate", ClassifyCorrelation(0.5))
	assert.Equal(t, "weak", ClassifyCorrelation(-0.25))
	assert.Equal(t, "none", ClassifyCorrelation(0.1))
}

func TestDetectLeadLag_RecoversKnownLag(t *testing.T) {
	store := NewSeriesStore()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	const lag = 3
	n := 60
	a := make([]float64, n)
	b := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = math.Sin(float64(i) / 5)
	}
	for i := 0; i < n; i++ {
		if i >= lag {
			b[i] = a[i-lag]
		}
	}
	seedSeries(store, "c1", "lead", start, a)
	seedSeries(store, "c1", "follow", start, b)

	corr := NewCorrelator(store, logger.NewNop())
	result, err := corr.DetectLeadLag("c1", "lead", "follow", 10)
	require.NoError(t, err)

	assert.Equal(t, "lead", result.Leader)
	assert.Equal(t, "follow", result.Follower)
	assert.Equal(t, lag, result.LagDays)
	assert.Greater(t, result.Correlation, 0.95)
	assert.InDelta(t, result.Correlation*result.Correlation, result.PredictivePower, 1e-12)
}

func TestInferCausality_DirectionalSeries(t *testing.T) {
	store := NewSeriesStore()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	n := 40
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i)
		if i > 0 {
			y[i] = x[i-1]
		}
	}
	seedSeries(store, "c1", "driver", start, x)
	seedSeries(store, "c1", "driven", start, y)

	corr := NewCorrelator(store, logger.NewNop())
	result, err := corr.InferCausality("c1", "driver", "driven", 5)
	require.NoError(t, err)

	assert.Equal(t, "a_causes_b", result.Direction)
	assert.Greater(t, result.ImprovementAB, result.ImprovementBA)
	assert.Contains(t, []string{"high", "medium"}, result.Confidence)
}

func TestClusterIndicators_GroupsCorrelatedSeries(t *testing.T) {
	store := NewSeriesStore()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	up := make([]float64, 30)
	down := make([]float64, 30)
	for i := range up {
		up[i] = float64(i) + math.Sin(float64(i))
		down[i] = 100 - up[i]
	}
	seedSeries(store, "c1", "up_a", start, up)
	seedSeries(store, "c1", "up_b", start, up)
	seedSeries(store, "c1", "down_a", start, down)
	seedSeries(store, "c1", "down_b", start, down)

	corr := NewCorrelator(store, logger.NewNop())
	clusters, err := corr.ClusterIndicators("c1", 2)
	require.NoError(t, err)
	require.Len(t, clusters, 2)

	for _, cl := range clusters {
		require.Len(t, cl.Members, 2)
		assert.InDelta(t, 1.0, cl.AverageCorrelation, 1e-9)
		assert.Contains(t, cl.Members, cl.Centroid)
		// Both members share a prefix: the pair was not split.
		assert.Equal(t, cl.Members[0][:3], cl.Members[1][:3])
	}
}

func TestSeriesStore_RetentionAndOrdering(t *testing.T) {
	store := NewSeriesStore()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 400; i++ {
		store.Append("c1", "alpha", start.AddDate(0, 0, i), float64(i))
	}
	pts := store.Get("c1", "alpha")
	assert.LessOrEqual(t, len(pts), retentionDays+1)
	for i := 1; i < len(pts); i++ {
		assert.True(t, pts[i-1].Timestamp.Before(pts[i].Timestamp))
	}

	// Out-of-order append is re-sorted.
	store.Append("c1", "beta", start.AddDate(0, 0, 5), 5)
	store.Append("c1", "beta", start.AddDate(0, 0, 2), 2)
	beta := store.Get("c1", "beta")
	require.Len(t, beta, 2)
	assert.Equal(t, 2.0, beta[0].Value)
}
