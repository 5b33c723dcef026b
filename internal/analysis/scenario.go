package analysis

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// Scenario severity bands on overall impact.
const (
	severityCriticalImpact = 0.3
	severityHighImpact     = 0.2
	severityMediumImpact   = 0.1
)

// recoveryRatePerDay is the assumed natural recovery of 0.1 per week.
const recoveryRatePerDay = 0.1 / 7

// maxRecoveryDays caps the recovery estimate.
const maxRecoveryDays = 365

// Scenario is a shock applied to the [0,1] indicator state.
type Scenario struct {
	Name               string             `json:"name"`
	AffectedIndicators map[string]float64 `json:"affected_indicators"` // indicator -> delta
	DurationDays       int                `json:"duration_days"`
	OnsetDays          int                `json:"onset_days"`
	RecoveryDays       int                `json:"recovery_days"`
	Probability        float64            `json:"probability"`
}

// PropagationRule carries an effect from one indicator to another with a
// delay and a decay over the remaining duration.
type PropagationRule struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Factor     float64 `json:"factor"`
	DelayDays  int     `json:"delay_days"`
	Decay      float64 `json:"decay"`
	MinTrigger float64 `json:"min_trigger"`
	MaxImpact  float64 `json:"max_impact"`
}

// DefaultPropagationRules is the shipped cross-indicator ruleset.
var DefaultPropagationRules = []PropagationRule{
	{Source: "supply_chain", Target: "production", Factor: 0.7, DelayDays: 3, Decay: 0.3, MinTrigger: 0.05, MaxImpact: 0.5},
	{Source: "production", Target: "inventory", Factor: 0.6, DelayDays: 1, Decay: 0.3, MinTrigger: 0.05, MaxImpact: 0.5},
	{Source: "demand", Target: "revenue", Factor: 0.8, DelayDays: 0, Decay: 0.2, MinTrigger: 0.05, MaxImpact: 0.6},
	{Source: "cost", Target: "profit_margin", Factor: -0.5, DelayDays: 0, Decay: 0.2, MinTrigger: 0.05, MaxImpact: 0.5},
	{Source: "revenue", Target: "cash_flow", Factor: 0.6, DelayDays: 7, Decay: 0.3, MinTrigger: 0.05, MaxImpact: 0.5},
}

// DayState is the indicator map after one simulated day.
type DayState struct {
	Day        int                `json:"day"`
	Indicators map[string]float64 `json:"indicators"`
}

// SimulationResult summarizes one scenario run.
type SimulationResult struct {
	Scenario         string     `json:"scenario"`
	Days             []DayState `json:"days"`
	OverallImpact    float64    `json:"overall_impact"`
	PeakImpact       float64    `json:"peak_impact"`
	PeakDay          int        `json:"peak_day"`
	Direction        string     `json:"direction"` // deteriorating | improving | neutral
	Severity         string     `json:"severity"`  // critical | high | medium | low
	RecoveryTimeDays int        `json:"recovery_time_days"`
}

// MonteCarloResult aggregates noisy re-runs of one scenario.
type MonteCarloResult struct {
	Scenario             string         `json:"scenario"`
	Runs                 int            `json:"runs"`
	MeanImpact           float64        `json:"mean_impact"`
	StdDevImpact         float64        `json:"stddev_impact"`
	P5                   float64        `json:"p5"`
	P95                  float64        `json:"p95"`
	SeverityDistribution map[string]int `json:"severity_distribution"`
}

// SensitivityEntry reports the output elasticity of one scenario input.
type SensitivityEntry struct {
	Indicator         string  `json:"indicator"`
	Elasticity        float64 `json:"elasticity"`
	CriticalThreshold float64 `json:"critical_threshold"`
}

// Simulator runs scenario projections against a baseline [0,1] indicator
// state.
type Simulator struct {
	rules []PropagationRule
	log   logger.Logger
}

// NewSimulator creates a simulator. nil rules selects the default set.
func NewSimulator(rules []PropagationRule, log logger.Logger) *Simulator {
	if rules == nil {
		rules = DefaultPropagationRules
	}
	return &Simulator{rules: rules, log: log}
}

// RunSimulation plays the scenario day by day over the baseline and
// summarizes the result.
func (s *Simulator) RunSimulation(baseline map[string]float64, scenario Scenario) (*SimulationResult, error) {
	if scenario.DurationDays <= 0 {
		return nil, fmt.Errorf("scenario %q: %w: non-positive duration", scenario.Name, models.ErrMalformedInput)
	}

	state := make(map[string]float64, len(baseline))
	for k, v := range baseline {
		state[k] = clamp01(v)
	}

	result := &SimulationResult{Scenario: scenario.Name}
	for d := 0; d < scenario.DurationDays; d++ {
		factor := effectFactor(d, scenario)

		// Direct effects.
		deltas := make(map[string]float64, len(scenario.AffectedIndicators))
		for ind, delta := range scenario.AffectedIndicators {
			deltas[ind] += delta * factor
		}

		// Propagation.
		for _, rule := range s.rules {
			srcDelta, ok := deltas[rule.Source]
			if !ok || d < rule.DelayDays || math.Abs(srcDelta) < rule.MinTrigger {
				continue
			}
			lagged := float64(d - rule.DelayDays)
			carried := srcDelta * rule.Factor * effectFactor(d-rule.DelayDays, scenario) *
				(1 - rule.Decay*lagged/float64(scenario.DurationDays))
			if carried > rule.MaxImpact {
				carried = rule.MaxImpact
			}
			if carried < -rule.MaxImpact {
				carried = -rule.MaxImpact
			}
			deltas[rule.Target] += carried
		}

		day := DayState{Day: d, Indicators: make(map[string]float64, len(state))}
		var devSum float64
		var devN int
		for ind, base := range state {
			v := base
			if delta, ok := deltas[ind]; ok {
				v = clamp01(base + delta)
			}
			day.Indicators[ind] = v
			devSum += math.Abs(v - state[ind])
			devN++
		}
		for ind, delta := range deltas {
			if _, ok := state[ind]; !ok {
				day.Indicators[ind] = clamp01(delta)
				devSum += math.Abs(day.Indicators[ind])
				devN++
			}
		}
		result.Days = append(result.Days, day)

		if devN > 0 {
			if avg := devSum / float64(devN); avg > result.PeakImpact {
				result.PeakImpact = avg
				result.PeakDay = d
			}
		}
	}

	final := result.Days[len(result.Days)-1].Indicators
	var absSum, signedSum float64
	var n int
	for ind, base := range state {
		diff := final[ind] - base
		absSum += math.Abs(diff)
		signedSum += diff
		n++
	}
	if n > 0 {
		result.OverallImpact = absSum / float64(n)
	}
	switch {
	case signedSum < -1e-9:
		result.Direction = "deteriorating"
	case signedSum > 1e-9:
		result.Direction = "improving"
	default:
		result.Direction = "neutral"
	}
	result.Severity = classifyImpact(result.OverallImpact)
	result.RecoveryTimeDays = recoveryDays(result.OverallImpact)
	return result, nil
}

// MonteCarlo re-runs the scenario with Gaussian noise on each delta
// (sigma = varianceFactor times the delta magnitude).
func (s *Simulator) MonteCarlo(baseline map[string]float64, scenario Scenario, runs int, varianceFactor float64, seed int64) (*MonteCarloResult, error) {
	if runs <= 0 {
		return nil, fmt.Errorf("scenario %q: %w: non-positive run count", scenario.Name, models.ErrMalformedInput)
	}
	rng := rand.New(rand.NewSource(seed))

	impacts := make([]float64, 0, runs)
	severities := make(map[string]int)
	for i := 0; i < runs; i++ {
		noisy := scenario
		noisy.AffectedIndicators = make(map[string]float64, len(scenario.AffectedIndicators))
		for ind, delta := range scenario.AffectedIndicators {
			noisy.AffectedIndicators[ind] = delta + rng.NormFloat64()*varianceFactor*math.Abs(delta)
		}
		run, err := s.RunSimulation(baseline, noisy)
		if err != nil {
			return nil, err
		}
		impacts = append(impacts, run.OverallImpact)
		severities[run.Severity]++
	}

	sort.Float64s(impacts)
	return &MonteCarloResult{
		Scenario:             scenario.Name,
		Runs:                 runs,
		MeanImpact:           mean(impacts),
		StdDevImpact:         stddev(impacts),
		P5:                   percentile(impacts, 0.05),
		P95:                  percentile(impacts, 0.95),
		SeverityDistribution: severities,
	}, nil
}

// SensitivityAnalysis perturbs each scenario delta by +/-10% and reports
// the elasticity of overall impact to that input.
func (s *Simulator) SensitivityAnalysis(baseline map[string]float64, scenario Scenario) ([]SensitivityEntry, error) {
	const perturbation = 0.10

	base, err := s.RunSimulation(baseline, scenario)
	if err != nil {
		return nil, err
	}

	var out []SensitivityEntry
	for ind, delta := range scenario.AffectedIndicators {
		up := cloneScenario(scenario)
		up.AffectedIndicators[ind] = delta * (1 + perturbation)
		down := cloneScenario(scenario)
		down.AffectedIndicators[ind] = delta * (1 - perturbation)

		upRun, err := s.RunSimulation(baseline, up)
		if err != nil {
			return nil, err
		}
		downRun, err := s.RunSimulation(baseline, down)
		if err != nil {
			return nil, err
		}

		elasticity := 0.0
		if base.OverallImpact != 0 {
			outputChange := (upRun.OverallImpact - downRun.OverallImpact) / (2 * base.OverallImpact)
			elasticity = outputChange / perturbation
		}

		entry := SensitivityEntry{Indicator: ind, Elasticity: elasticity}
		if elasticity != 0 {
			entry.CriticalThreshold = severityCriticalImpact / math.Abs(elasticity) * perturbation
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Indicator < out[j].Indicator })
	return out, nil
}

// effectFactor ramps linearly up over the onset, holds at 1 through the
// plateau, and ramps down over the recovery tail.
func effectFactor(day int, sc Scenario) float64 {
	if day < 0 || day >= sc.DurationDays {
		return 0
	}
	if sc.OnsetDays > 0 && day < sc.OnsetDays {
		return float64(day+1) / float64(sc.OnsetDays)
	}
	recoveryStart := sc.DurationDays - sc.RecoveryDays
	if sc.RecoveryDays > 0 && day >= recoveryStart {
		return float64(sc.DurationDays-day) / float64(sc.RecoveryDays)
	}
	return 1
}

func classifyImpact(impact float64) string {
	switch {
	case impact >= severityCriticalImpact:
		return "critical"
	case impact >= severityHighImpact:
		return "high"
	case impact >= severityMediumImpact:
		return "medium"
	default:
		return "low"
	}
}

func recoveryDays(totalChange float64) int {
	days := int(math.Ceil(totalChange / recoveryRatePerDay))
	if days > maxRecoveryDays {
		return maxRecoveryDays
	}
	if days < 0 {
		return 0
	}
	return days
}

func cloneScenario(sc Scenario) Scenario {
	cp := sc
	cp.AffectedIndicators = make(map[string]float64, len(sc.AffectedIndicators))
	for k, v := range sc.AffectedIndicators {
		cp.AffectedIndicators[k] = v
	}
	return cp
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
