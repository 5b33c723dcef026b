package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// Correlation classification bands.
const (
	strongCorrelation   = 0.7
	moderateCorrelation = 0.4
	weakCorrelation     = 0.2
)

// Causality improvement cutoffs.
const (
	bidirectionalCutoff  = 0.1
	highConfImprovement  = 0.3
	medConfImprovement   = 0.15
)

// minCorrelationPoints is the shortest overlap worth correlating.
const minCorrelationPoints = 3

// CorrelationPair names one correlated indicator pair.
type CorrelationPair struct {
	A           string  `json:"indicator_a"`
	B           string  `json:"indicator_b"`
	Correlation float64 `json:"correlation"`
}

// CorrelationMatrix is the symmetric Pearson matrix over a company's
// tracked indicators.
type CorrelationMatrix struct {
	CompanyID          string                        `json:"company_id"`
	Indicators         []string                      `json:"indicators"`
	Matrix             map[string]map[string]float64 `json:"matrix"`
	StrongestPositive  *CorrelationPair              `json:"strongest_positive,omitempty"`
	StrongestNegative  *CorrelationPair              `json:"strongest_negative,omitempty"`
	AverageCorrelation float64                       `json:"average_correlation"`
}

// LeadLagResult reports the lag at which two indicators correlate best.
type LeadLagResult struct {
	Leader          string  `json:"leader"`
	Follower        string  `json:"follower"`
	LagDays         int     `json:"lag_days"`
	Correlation     float64 `json:"correlation"`
	PredictivePower float64 `json:"predictive_power"`
}

// CausalityResult is the Granger-style inference output.
type CausalityResult struct {
	A             string  `json:"indicator_a"`
	B             string  `json:"indicator_b"`
	Direction     string  `json:"direction"` // a_causes_b | b_causes_a | bidirectional | none
	ImprovementAB float64 `json:"improvement_a_to_b"`
	ImprovementBA float64 `json:"improvement_b_to_a"`
	Confidence    string  `json:"confidence"` // high | medium | low
}

// IndicatorCluster is one group from agglomerative clustering.
type IndicatorCluster struct {
	Members            []string `json:"members"`
	Centroid           string   `json:"centroid"`
	AverageCorrelation float64  `json:"average_correlation"`
}

// Correlator computes cross-indicator relationships over the series store.
type Correlator struct {
	store *SeriesStore
	log   logger.Logger
}

// NewCorrelator creates a correlator over the shared series store.
func NewCorrelator(store *SeriesStore, log logger.Logger) *Correlator {
	return &Correlator{store: store, log: log}
}

// ClassifyCorrelation buckets a coefficient: strong, moderate, weak or none.
func ClassifyCorrelation(r float64) string {
	switch abs := math.Abs(r); {
	case abs >= strongCorrelation:
		return "strong"
	case abs >= moderateCorrelation:
		return "moderate"
	case abs >= weakCorrelation:
		return "weak"
	default:
		return "none"
	}
}

// CalculateMatrix builds the N x N Pearson matrix. Pass nil indicators to
// use every tracked series for the company.
func (c *Correlator) CalculateMatrix(company string, indicators []string) (*CorrelationMatrix, error) {
	if len(indicators) == 0 {
		indicators = c.store.Indicators(company)
	}
	if len(indicators) < 2 {
		return nil, fmt.Errorf("correlation matrix for %s: %w: need at least 2 indicators", company, models.ErrMalformedInput)
	}
	sort.Strings(indicators)

	result := &CorrelationMatrix{
		CompanyID:  company,
		Indicators: indicators,
		Matrix:     make(map[string]map[string]float64, len(indicators)),
	}
	for _, ind := range indicators {
		result.Matrix[ind] = make(map[string]float64, len(indicators))
		result.Matrix[ind][ind] = 1.0
	}

	var offDiagSum float64
	var offDiagN int
	for i := 0; i < len(indicators); i++ {
		for j := i + 1; j < len(indicators); j++ {
			a, b := indicators[i], indicators[j]
			va, vb := c.store.alignedValues(company, a, b)
			r := 0.0
			if len(va) >= minCorrelationPoints {
				r = pearson(va, vb)
			}
			result.Matrix[a][b] = r
			result.Matrix[b][a] = r
			offDiagSum += r
			offDiagN++

			pair := &CorrelationPair{A: a, B: b, Correlation: r}
			if r > 0 && (result.StrongestPositive == nil || r > result.StrongestPositive.Correlation) {
				result.StrongestPositive = pair
			}
			if r < 0 && (result.StrongestNegative == nil || r < result.StrongestNegative.Correlation) {
				result.StrongestNegative = pair
			}
		}
	}
	if offDiagN > 0 {
		result.AverageCorrelation = offDiagSum / float64(offDiagN)
	}
	return result, nil
}

// DetectLeadLag slides b against a over lags in [-maxLag, maxLag] days and
// returns the lag with the highest absolute correlation. A positive lag
// means a leads b.
func (c *Correlator) DetectLeadLag(company, a, b string, maxLag int) (*LeadLagResult, error) {
	va, vb := c.store.alignedValues(company, a, b)
	if len(va) < minCorrelationPoints+maxLag {
		return nil, fmt.Errorf("lead/lag %s vs %s: %w: series too short", a, b, models.ErrMalformedInput)
	}

	bestLag, bestR := 0, 0.0
	for lag := -maxLag; lag <= maxLag; lag++ {
		xa, xb := shiftPair(va, vb, lag)
		if len(xa) < minCorrelationPoints {
			continue
		}
		if r := pearson(xa, xb); math.Abs(r) > math.Abs(bestR) {
			bestR, bestLag = r, lag
		}
	}

	result := &LeadLagResult{
		Correlation:     bestR,
		PredictivePower: bestR * bestR,
	}
	if bestLag >= 0 {
		result.Leader, result.Follower, result.LagDays = a, b, bestLag
	} else {
		result.Leader, result.Follower, result.LagDays = b, a, -bestLag
	}
	return result, nil
}

// InferCausality runs the rolling-mean improvement test in both directions.
func (c *Correlator) InferCausality(company, a, b string, lagOrder int) (*CausalityResult, error) {
	va, vb := c.store.alignedValues(company, a, b)
	if len(va) < lagOrder*2+2 {
		return nil, fmt.Errorf("causality %s vs %s: %w: series too short", a, b, models.ErrMalformedInput)
	}

	impAB := grangerImprovement(va, vb, lagOrder) // a predicting b
	impBA := grangerImprovement(vb, va, lagOrder)

	result := &CausalityResult{A: a, B: b, ImprovementAB: impAB, ImprovementBA: impBA}
	switch {
	case impAB > bidirectionalCutoff && impBA > bidirectionalCutoff:
		result.Direction = "bidirectional"
	case impAB > impBA && impAB > 0:
		result.Direction = "a_causes_b"
	case impBA > impAB && impBA > 0:
		result.Direction = "b_causes_a"
	default:
		result.Direction = "none"
	}

	switch best := math.Max(impAB, impBA); {
	case best >= highConfImprovement:
		result.Confidence = "high"
	case best >= medConfImprovement:
		result.Confidence = "medium"
	default:
		result.Confidence = "low"
	}
	return result, nil
}

// ClusterIndicators merges the two clusters with the highest average
// pairwise correlation until k remain.
func (c *Correlator) ClusterIndicators(company string, k int) ([]IndicatorCluster, error) {
	matrix, err := c.CalculateMatrix(company, nil)
	if err != nil {
		return nil, err
	}
	if k < 1 {
		k = 1
	}

	clusters := make([][]string, 0, len(matrix.Indicators))
	for _, ind := range matrix.Indicators {
		clusters = append(clusters, []string{ind})
	}

	for len(clusters) > k {
		bestI, bestJ, bestAvg := -1, -1, math.Inf(-1)
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				if avg := interClusterCorrelation(matrix.Matrix, clusters[i], clusters[j]); avg > bestAvg {
					bestI, bestJ, bestAvg = i, j, avg
				}
			}
		}
		if bestI < 0 {
			break
		}
		clusters[bestI] = append(clusters[bestI], clusters[bestJ]...)
		clusters = append(clusters[:bestJ], clusters[bestJ+1:]...)
	}

	out := make([]IndicatorCluster, 0, len(clusters))
	for _, members := range clusters {
		sort.Strings(members)
		out = append(out, IndicatorCluster{
			Members:            members,
			Centroid:           mostConnected(matrix.Matrix, members),
			AverageCorrelation: intraClusterCorrelation(matrix.Matrix, members),
		})
	}
	return out, nil
}

// grangerImprovement measures how much the predictor's recent past improves
// a rolling-mean prediction of the target.
func grangerImprovement(predictor, target []float64, lagOrder int) float64 {
	var baselineSE, enhancedSE float64
	n := 0
	for i := lagOrder; i < len(target); i++ {
		baseline := mean(target[i-lagOrder : i])
		enhanced := (baseline + mean(predictor[i-lagOrder:i])) / 2

		baselineSE += (target[i] - baseline) * (target[i] - baseline)
		enhancedSE += (target[i] - enhanced) * (target[i] - enhanced)
		n++
	}
	if n == 0 || baselineSE == 0 {
		return 0
	}
	return math.Max(0, (baselineSE-enhancedSE)/baselineSE)
}

// shiftPair pairs a[i] with b[i+lag]; negative lags shift the other way.
func shiftPair(a, b []float64, lag int) ([]float64, []float64) {
	if lag < 0 {
		lag = -lag
		if lag >= len(a) {
			return nil, nil
		}
		return a[lag:], b[:len(b)-lag]
	}
	if lag >= len(a) {
		return nil, nil
	}
	return a[:len(a)-lag], b[lag:]
}

func interClusterCorrelation(matrix map[string]map[string]float64, a, b []string) float64 {
	var sum float64
	var n int
	for _, x := range a {
		for _, y := range b {
			sum += matrix[x][y]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func intraClusterCorrelation(matrix map[string]map[string]float64, members []string) float64 {
	var sum float64
	var n int
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			sum += matrix[members[i]][members[j]]
			n++
		}
	}
	if n == 0 {
		return 1.0
	}
	return sum / float64(n)
}

// mostConnected picks the member with the highest average correlation to
// the rest of its cluster.
func mostConnected(matrix map[string]map[string]float64, members []string) string {
	if len(members) == 1 {
		return members[0]
	}
	best, bestAvg := members[0], math.Inf(-1)
	for _, m := range members {
		var sum float64
		for _, other := range members {
			if other != m {
				sum += matrix[m][other]
			}
		}
		if avg := sum / float64(len(members)-1); avg > bestAvg {
			best, bestAvg = m, avg
		}
	}
	return best
}

func pearson(a, b []float64) float64 {
	n := float64(len(a))
	if n == 0 {
		return 0
	}
	ma, mb := mean(a), mean(b)
	var cov, va, vb float64
	for i := range a {
		da, db := a[i]-ma, b[i]-mb
		cov += da * db
		va += da * da
		vb += db * db
	}
	if va == 0 || vb == 0 {
		return 0
	}
	return cov / math.Sqrt(va*vb)
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func variance(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := mean(vals)
	var sum float64
	for _, v := range vals {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64) float64 {
	return math.Sqrt(variance(vals))
}
