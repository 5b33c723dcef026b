package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// Direction thresholds on slope / |mean|.
const (
	strongSlopeRatio = 0.02
	mildSlopeRatio   = 0.005
)

// meanRevertingCrossingRatio flags series that cross their mean often.
const meanRevertingCrossingRatio = 0.3

// backtestPoints is how many trailing points the forecast backtest uses.
const backtestPoints = 10

// SeasonPeriod selects the grouping for seasonality detection.
type SeasonPeriod string

const (
	SeasonWeekly  SeasonPeriod = "WEEKLY"
	SeasonMonthly SeasonPeriod = "MONTHLY"
)

// TrendResult summarizes one indicator's trajectory.
type TrendResult struct {
	Indicator    string                `json:"indicator"`
	Direction    models.TrendDirection `json:"direction"`
	Strength     string                `json:"strength"`   // strong | mild | none
	TrendType    string                `json:"trend_type"` // linear | logarithmic | mean_reverting | cyclical
	Slope        float64               `json:"slope"`
	Intercept    float64               `json:"intercept"`
	R2           float64               `json:"r_squared"`
	Acceleration float64               `json:"acceleration"`
	Points       int                   `json:"points"`
}

// SeasonalityResult holds position-in-period factors.
type SeasonalityResult struct {
	Indicator         string          `json:"indicator"`
	Period            SeasonPeriod    `json:"period"`
	Factors           map[int]float64 `json:"factors"`
	Strength          float64         `json:"strength"`
	ExplainedVariance float64         `json:"explained_variance"`
}

// ForecastPoint is one day of the generated forecast.
type ForecastPoint struct {
	Day        int     `json:"day"`
	Predicted  float64 `json:"predicted"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// ForecastResult is the forecast plus its backtest accuracy.
type ForecastResult struct {
	Indicator      string          `json:"indicator"`
	Points         []ForecastPoint `json:"points"`
	ExpectedChange float64         `json:"expected_change"`
	MAPE           float64         `json:"mape"`
	RMSE           float64         `json:"rmse"`
}

// Anomaly is one flagged observation.
type Anomaly struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Deviation float64   `json:"deviation"` // in sigmas
	Kind      string    `json:"kind"`      // outlier | level_shift
}

// TrendChange is one detected slope reversal.
type TrendChange struct {
	Timestamp time.Time             `json:"timestamp"`
	From      models.TrendDirection `json:"from"`
	To        models.TrendDirection `json:"to"`
}

// Forecaster runs trend analytics over the shared series store.
type Forecaster struct {
	store *SeriesStore
	log   logger.Logger
}

// NewForecaster creates a forecaster.
func NewForecaster(store *SeriesStore, log logger.Logger) *Forecaster {
	return &Forecaster{store: store, log: log}
}

// DetectTrend regresses value on days-since-start over the trailing window.
// days <= 0 means the whole retained series.
func (f *Forecaster) DetectTrend(company, indicator string, days int) (*TrendResult, error) {
	pts := f.window(company, indicator, days)
	if len(pts) < 2 {
		return nil, fmt.Errorf("trend for %s/%s: %w: need at least 2 points", company, indicator, models.ErrMalformedInput)
	}

	xs, ys := regressionInputs(pts)
	slope, intercept, r2 := linearRegression(xs, ys)

	result := &TrendResult{
		Indicator: indicator,
		Slope:     slope,
		Intercept: intercept,
		R2:        r2,
		Points:    len(pts),
	}

	m := mean(ys)
	ratio := 0.0
	if m != 0 {
		ratio = slope / math.Abs(m)
	}
	switch {
	case ratio >= mildSlopeRatio:
		result.Direction = models.TrendRising
	case ratio <= -mildSlopeRatio:
		result.Direction = models.TrendFalling
	default:
		result.Direction = models.TrendStable
	}
	switch abs := math.Abs(ratio); {
	case abs >= strongSlopeRatio:
		result.Strength = "strong"
	case abs >= mildSlopeRatio:
		result.Strength = "mild"
	default:
		result.Strength = "none"
	}

	result.TrendType = classifyTrendType(xs, ys, slope, r2, m)

	if len(pts) >= 4 {
		half := len(pts) / 2
		s1, _, _ := linearRegression(xs[:half], ys[:half])
		s2, _, _ := linearRegression(xs[half:], ys[half:])
		result.Acceleration = s2 - s1
	}
	return result, nil
}

// DetectSeasonality groups values by position in the period and reports
// multiplicative factors.
func (f *Forecaster) DetectSeasonality(company, indicator string, period SeasonPeriod) (*SeasonalityResult, error) {
	pts := f.store.Get(company, indicator)
	if len(pts) < 14 {
		return nil, fmt.Errorf("seasonality for %s/%s: %w: need at least 14 points", company, indicator, models.ErrMalformedInput)
	}

	groups := make(map[int][]float64)
	var all []float64
	for _, p := range pts {
		groups[periodPosition(p.Timestamp, period)] = append(groups[periodPosition(p.Timestamp, period)], p.Value)
		all = append(all, p.Value)
	}

	overall := mean(all)
	if overall == 0 {
		return nil, fmt.Errorf("seasonality for %s/%s: %w: zero mean series", company, indicator, models.ErrMalformedInput)
	}

	factors := make(map[int]float64, len(groups))
	var factorVals []float64
	for pos, vals := range groups {
		factor := mean(vals) / overall
		factors[pos] = factor
		factorVals = append(factorVals, factor)
	}

	strength := math.Min(1, 5*math.Sqrt(variance(factorVals)))
	return &SeasonalityResult{
		Indicator:         indicator,
		Period:            period,
		Factors:           factors,
		Strength:          strength,
		ExplainedVariance: strength * strength,
	}, nil
}

// GenerateForecast extrapolates the trend, optionally modulated by weekly
// seasonal factors, with a widening confidence interval. Horizon 0 yields
// an empty forecast.
func (f *Forecaster) GenerateForecast(company, indicator string, horizonDays int, includeSeasonality bool) (*ForecastResult, error) {
	result := &ForecastResult{Indicator: indicator}
	if horizonDays <= 0 {
		return result, nil
	}

	pts := f.store.Get(company, indicator)
	if len(pts) < 2 {
		return nil, fmt.Errorf("forecast for %s/%s: %w: need at least 2 points", company, indicator, models.ErrMalformedInput)
	}

	xs, ys := regressionInputs(pts)
	slope, intercept, _ := linearRegression(xs, ys)

	var seasonal *SeasonalityResult
	if includeSeasonality {
		if s, err := f.DetectSeasonality(company, indicator, SeasonWeekly); err == nil {
			seasonal = s
		}
	}

	recent := ys
	if len(recent) > 14 {
		recent = recent[len(recent)-14:]
	}
	sigma := stddev(recent)
	const z95 = 1.96

	last := pts[len(pts)-1]
	lastX := xs[len(xs)-1]
	for d := 1; d <= horizonDays; d++ {
		predicted := intercept + slope*(lastX+float64(d))
		if seasonal != nil {
			pos := periodPosition(last.Timestamp.AddDate(0, 0, d), SeasonWeekly)
			if factor, ok := seasonal.Factors[pos]; ok {
				predicted *= factor
			}
		}
		ci := z95 * sigma * math.Sqrt(float64(d))
		result.Points = append(result.Points, ForecastPoint{
			Day:        d,
			Predicted:  predicted,
			LowerBound: predicted - ci,
			UpperBound: predicted + ci,
		})
	}
	result.ExpectedChange = result.Points[len(result.Points)-1].Predicted - last.Value

	result.MAPE, result.RMSE = f.backtest(xs, ys)
	return result, nil
}

// DetectAnomalies flags points beyond sensitivity sigmas from the mean. A
// flagged point whose neighbors are also shifted reads as a level shift
// rather than an outlier.
func (f *Forecaster) DetectAnomalies(company, indicator string, sensitivity float64) ([]Anomaly, error) {
	pts := f.store.Get(company, indicator)
	if len(pts) < 4 {
		return nil, fmt.Errorf("anomalies for %s/%s: %w: need at least 4 points", company, indicator, models.ErrMalformedInput)
	}
	if sensitivity <= 0 {
		sensitivity = 2
	}

	vals := make([]float64, len(pts))
	for i, p := range pts {
		vals[i] = p.Value
	}
	m, sd := mean(vals), stddev(vals)
	if sd == 0 {
		return nil, nil
	}

	var out []Anomaly
	for i, p := range pts {
		dev := (p.Value - m) / sd
		if math.Abs(dev) < sensitivity {
			continue
		}
		kind := "outlier"
		if neighborsShifted(vals, i, m, sd, sensitivity) {
			kind = "level_shift"
		}
		out = append(out, Anomaly{Timestamp: p.Timestamp, Value: p.Value, Deviation: dev, Kind: kind})
	}
	return out, nil
}

// DetectTrendChanges recomputes the local slope on a sliding window and
// flags direction reversals.
func (f *Forecaster) DetectTrendChanges(company, indicator string, window int) ([]TrendChange, error) {
	if window <= 0 {
		window = 14
	}
	pts := f.store.Get(company, indicator)
	if len(pts) < window*2 {
		return nil, fmt.Errorf("trend changes for %s/%s: %w: need at least %d points", company, indicator, models.ErrMalformedInput, window*2)
	}

	xs, ys := regressionInputs(pts)
	var out []TrendChange
	prev := models.TrendStable
	for i := window; i <= len(pts); i += window / 2 {
		s, _, _ := linearRegression(xs[i-window:i], ys[i-window:i])
		dir := slopeDirection(s, mean(ys[i-window:i]))
		if prev != models.TrendStable && dir != models.TrendStable && dir != prev {
			out = append(out, TrendChange{Timestamp: pts[i-1].Timestamp, From: prev, To: dir})
		}
		if dir != models.TrendStable {
			prev = dir
		}
	}
	return out, nil
}

// backtest re-predicts the trailing points one step ahead from a regression
// over everything before each, reporting MAPE and RMSE.
func (f *Forecaster) backtest(xs, ys []float64) (mape, rmse float64) {
	n := len(ys)
	start := n - backtestPoints
	if start < 2 {
		start = 2
	}
	if start >= n {
		return 0, 0
	}

	var apeSum, seSum float64
	count := 0
	for i := start; i < n; i++ {
		slope, intercept, _ := linearRegression(xs[:i], ys[:i])
		predicted := intercept + slope*xs[i]
		err := ys[i] - predicted
		seSum += err * err
		if ys[i] != 0 {
			apeSum += math.Abs(err / ys[i])
		}
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return apeSum / float64(count) * 100, math.Sqrt(seSum / float64(count))
}

func (f *Forecaster) window(company, indicator string, days int) []Point {
	pts := f.store.Get(company, indicator)
	if days <= 0 || len(pts) == 0 {
		return pts
	}
	cutoff := pts[len(pts)-1].Timestamp.AddDate(0, 0, -days)
	first := 0
	for first < len(pts) && pts[first].Timestamp.Before(cutoff) {
		first++
	}
	return pts[first:]
}

func regressionInputs(pts []Point) (xs, ys []float64) {
	start := pts[0].Timestamp
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.Timestamp.Sub(start).Hours() / 24
		ys[i] = p.Value
	}
	return xs, ys
}

// linearRegression returns slope, intercept and R². Degenerate inputs
// (no x variance) give slope 0, R² 0.
func linearRegression(xs, ys []float64) (slope, intercept, r2 float64) {
	if len(xs) == 0 {
		return 0, 0, 0
	}
	mx, my := mean(xs), mean(ys)
	var sxx, sxy, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 {
		return 0, my, 0
	}
	slope = sxy / sxx
	intercept = my - slope*mx
	if syy == 0 {
		return slope, intercept, 0
	}
	r2 = (sxy * sxy) / (sxx * syy)
	return slope, intercept, r2
}

func classifyTrendType(xs, ys []float64, slope, linearR2 float64, m float64) string {
	// Frequent mean crossings dominate the other classifications.
	crossings := 0
	for i := 1; i < len(ys); i++ {
		if (ys[i-1]-m)*(ys[i]-m) < 0 {
			crossings++
		}
	}
	if float64(crossings) > meanRevertingCrossingRatio*float64(len(ys)) {
		return "mean_reverting"
	}

	// Log fit on log(x+1) against the linear fit.
	logXs := make([]float64, len(xs))
	for i, x := range xs {
		logXs[i] = math.Log(x + 1)
	}
	_, _, logR2 := linearRegression(logXs, ys)
	if logR2 > linearR2 {
		return "logarithmic"
	}

	ratio := 0.0
	if m != 0 {
		ratio = math.Abs(slope) / math.Abs(m)
	}
	if ratio < mildSlopeRatio && stddev(ys) > 0.1*math.Abs(m) {
		return "cyclical"
	}
	return "linear"
}

func slopeDirection(slope, m float64) models.TrendDirection {
	ratio := 0.0
	if m != 0 {
		ratio = slope / math.Abs(m)
	}
	switch {
	case ratio >= mildSlopeRatio:
		return models.TrendRising
	case ratio <= -mildSlopeRatio:
		return models.TrendFalling
	default:
		return models.TrendStable
	}
}

func neighborsShifted(vals []float64, i int, m, sd, sensitivity float64) bool {
	shifted := 0
	checked := 0
	for _, j := range []int{i - 1, i + 1, i + 2} {
		if j < 0 || j >= len(vals) || j == i {
			continue
		}
		checked++
		if math.Abs((vals[j]-m)/sd) >= sensitivity/2 && sameSign(vals[j]-m, vals[i]-m) {
			shifted++
		}
	}
	return checked > 0 && shifted >= 2
}

func sameSign(a, b float64) bool {
	return (a >= 0) == (b >= 0)
}

func periodPosition(t time.Time, period SeasonPeriod) int {
	if period == SeasonMonthly {
		return t.Day() - 1
	}
	return int(t.Weekday())
}
