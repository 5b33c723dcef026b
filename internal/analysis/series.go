package analysis

import (
	"sort"
	"sync"
	"time"
)

// retentionDays caps every per-company per-indicator series.
const retentionDays = 365

// Point is one observation in an indicator time series.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

type seriesKey struct {
	company   string
	indicator string
}

type series struct {
	mu     sync.Mutex
	points []Point
}

// SeriesStore holds the per-company per-indicator history consumed by the
// correlation, trend and scenario engines. Appends prune anything older
// than the retention window relative to the newest point.
type SeriesStore struct {
	mu     sync.RWMutex
	series map[seriesKey]*series
}

// NewSeriesStore creates an empty store.
func NewSeriesStore() *SeriesStore {
	return &SeriesStore{series: make(map[seriesKey]*series)}
}

func (s *SeriesStore) get(company, indicator string) *series {
	key := seriesKey{company, indicator}
	s.mu.RLock()
	sr, ok := s.series[key]
	s.mu.RUnlock()
	if ok {
		return sr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sr, ok = s.series[key]; ok {
		return sr
	}
	sr = &series{}
	s.series[key] = sr
	return sr
}

// Append records one observation, keeping the series sorted and pruned.
func (s *SeriesStore) Append(company, indicator string, t time.Time, v float64) {
	sr := s.get(company, indicator)
	sr.mu.Lock()
	defer sr.mu.Unlock()

	sr.points = append(sr.points, Point{Timestamp: t, Value: v})
	if n := len(sr.points); n > 1 && sr.points[n-2].Timestamp.After(t) {
		sort.Slice(sr.points, func(i, j int) bool {
			return sr.points[i].Timestamp.Before(sr.points[j].Timestamp)
		})
	}

	cutoff := sr.points[len(sr.points)-1].Timestamp.AddDate(0, 0, -retentionDays)
	firstKept := 0
	for firstKept < len(sr.points) && sr.points[firstKept].Timestamp.Before(cutoff) {
		firstKept++
	}
	if firstKept > 0 {
		sr.points = append([]Point(nil), sr.points[firstKept:]...)
	}
}

// AppendSnapshot records a whole indicator map at one timestamp.
func (s *SeriesStore) AppendSnapshot(company string, t time.Time, values map[string]float64) {
	for indicator, v := range values {
		s.Append(company, indicator, t, v)
	}
}

// Get returns a copy of the series.
func (s *SeriesStore) Get(company, indicator string) []Point {
	sr := s.get(company, indicator)
	sr.mu.Lock()
	defer sr.mu.Unlock()
	return append([]Point(nil), sr.points...)
}

// Values returns just the ordered values of a series.
func (s *SeriesStore) Values(company, indicator string) []float64 {
	pts := s.Get(company, indicator)
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.Value
	}
	return out
}

// Indicators lists the indicators tracked for a company, sorted.
func (s *SeriesStore) Indicators(company string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for key := range s.series {
		if key.company == company {
			out = append(out, key.indicator)
		}
	}
	sort.Strings(out)
	return out
}

// alignedValues intersects two series on their timestamps and returns the
// paired values in time order.
func (s *SeriesStore) alignedValues(company, a, b string) ([]float64, []float64) {
	pa := s.Get(company, a)
	pb := s.Get(company, b)

	byTime := make(map[int64]float64, len(pb))
	for _, p := range pb {
		byTime[p.Timestamp.Unix()] = p.Value
	}

	var va, vb []float64
	for _, p := range pa {
		if v, ok := byTime[p.Timestamp.Unix()]; ok {
			va = append(va, p.Value)
			vb = append(vb, v)
		}
	}
	return va, vb
}
