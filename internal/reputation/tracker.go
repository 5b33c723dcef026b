package reputation

import (
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/internal/monitoring"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// Event log is append-only per source but truncated to the most recent
// entries so long-lived sources stay bounded.
const maxEventsPerSource = 100

// lockStripes shards the per-source locks by id hash.
const lockStripes = 32

// tierBase maps a source tier to its base reputation.
var tierBase = map[models.SourceTier]float64{
	models.TierOfficial: 95,
	models.Tier1:        80,
	models.Tier2:        65,
	models.Tier3:        40,
	models.TierUnknown:  30,
}

type knownSource struct {
	Category models.SourceCategory
	Tier     models.SourceTier
}

// knownSources maps canonical source ids to their category and tier.
// Lookup tries an exact match first, then substring containment in both
// directions, else the source is treated as unknown.
var knownSources = map[string]knownSource{
	"government":       {models.SourceCategoryGovernment, models.TierOfficial},
	"central_bank":     {models.SourceCategoryGovernment, models.TierOfficial},
	"disaster_management_centre": {models.SourceCategoryGovernment, models.TierOfficial},
	"department_of_census":       {models.SourceCategoryGovernment, models.TierOfficial},
	"regulator":        {models.SourceCategoryRegulatory, models.TierOfficial},
	"reuters":          {models.SourceCategoryWire, models.Tier1},
	"afp":              {models.SourceCategoryWire, models.Tier1},
	"associated_press": {models.SourceCategoryWire, models.Tier1},
	"bloomberg":        {models.SourceCategoryWire, models.Tier1},
	"bbc":              {models.SourceCategoryMainstream, models.Tier1},
	"daily_mirror":     {models.SourceCategoryMainstream, models.Tier1},
	"daily_news":       {models.SourceCategoryMainstream, models.Tier1},
	"sunday_times":     {models.SourceCategoryMainstream, models.Tier1},
	"the_island":       {models.SourceCategoryMainstream, models.Tier2},
	"ada_derana":       {models.SourceCategoryMainstream, models.Tier2},
	"hiru_news":        {models.SourceCategoryMainstream, models.Tier2},
	"news_first":       {models.SourceCategoryMainstream, models.Tier2},
	"lanka_news_web":   {models.SourceCategoryRegional, models.Tier3},
	"twitter":          {models.SourceCategorySocial, models.Tier3},
	"facebook":         {models.SourceCategorySocial, models.Tier3},
	"blog":             {models.SourceCategoryBlog, models.Tier3},
}

// Options configures the tracker.
type Options struct {
	// HalfLifeDays controls the exponential decay of event weight in
	// Recalculate. Default 90.
	HalfLifeDays float64
}

// DefaultOptions returns the tracker defaults.
func DefaultOptions() Options {
	return Options{HalfLifeDays: 90}
}

// Tracker maintains a time-decayed reputation per source. It owns reputation
// state exclusively: all mutation goes through Record* methods, each of which
// clamps the fast-path Current value immediately. Recalculate recomputes the
// authoritative long-run value from the decayed event log.
type Tracker struct {
	opts    Options
	log     logger.Logger
	stripes [lockStripes]sync.Mutex
	sources map[string]*models.Reputation
	mapMu   sync.RWMutex
}

// NewTracker creates a Tracker with the given options.
func NewTracker(opts Options, log logger.Logger) *Tracker {
	if opts.HalfLifeDays <= 0 {
		opts.HalfLifeDays = DefaultOptions().HalfLifeDays
	}
	return &Tracker{
		opts:    opts,
		log:     log,
		sources: make(map[string]*models.Reputation),
	}
}

// NormalizeSourceID canonicalizes a source name: lowercase with spaces and
// hyphens collapsed to underscores.
func NormalizeSourceID(source string) string {
	s := strings.ToLower(strings.TrimSpace(source))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// LookupSource resolves a source id to its known category and tier.
func LookupSource(source string) (models.SourceCategory, models.SourceTier) {
	id := NormalizeSourceID(source)
	if ks, ok := knownSources[id]; ok {
		return ks.Category, ks.Tier
	}
	for canonical, ks := range knownSources {
		if strings.Contains(id, canonical) || strings.Contains(canonical, id) {
			return ks.Category, ks.Tier
		}
	}
	return models.SourceCategoryUnknown, models.TierUnknown
}

func (t *Tracker) lock(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &t.stripes[h.Sum32()%lockStripes]
}

// getOrCreate returns the reputation record for a source, creating it with
// the tier base when unseen. Callers must hold the source's stripe lock.
func (t *Tracker) getOrCreate(id string) *models.Reputation {
	t.mapMu.RLock()
	rep, ok := t.sources[id]
	t.mapMu.RUnlock()
	if ok {
		return rep
	}

	category, tier := LookupSource(id)
	base := tierBase[tier]
	rep = &models.Reputation{
		SourceID:  id,
		Category:  category,
		Tier:      tier,
		Base:      base,
		Current:   base,
		UpdatedAt: time.Now(),
	}

	t.mapMu.Lock()
	if existing, ok := t.sources[id]; ok {
		rep = existing
	} else {
		t.sources[id] = rep
	}
	t.mapMu.Unlock()
	return rep
}

// GetReputation returns the current reputation for a source, lazily creating
// the record at its tier base.
func (t *Tracker) GetReputation(source string) float64 {
	id := NormalizeSourceID(source)
	mu := t.lock(id)
	mu.Lock()
	defer mu.Unlock()
	return t.getOrCreate(id).Current
}

// GetTier returns the tier of a source, unknown when lookup fails.
func (t *Tracker) GetTier(source string) models.SourceTier {
	_, tier := LookupSource(source)
	return tier
}

// Snapshot returns a copy of the reputation record for inclusion in
// validation results. The events slice is copied so readers never observe
// concurrent truncation.
func (t *Tracker) Snapshot(source string) *models.Reputation {
	id := NormalizeSourceID(source)
	mu := t.lock(id)
	mu.Lock()
	defer mu.Unlock()

	rep := t.getOrCreate(id)
	cp := *rep
	cp.Events = append([]models.ReputationEvent(nil), rep.Events...)
	return &cp
}

// RecordArticle increments the article counter for a source.
func (t *Tracker) RecordArticle(source string) {
	id := NormalizeSourceID(source)
	mu := t.lock(id)
	mu.Lock()
	defer mu.Unlock()

	rep := t.getOrCreate(id)
	rep.ArticleCount++
	rep.UpdatedAt = time.Now()
}

// RecordConfirmation rewards a source whose reporting was corroborated:
// +2.0 base, +0.5 per official confirmer, +1.5 when it was first to report.
func (t *Tracker) RecordConfirmation(source string, confirmingSources []string, wasFirstToReport bool) {
	officials := countOfficial(confirmingSources)
	delta := 2.0 + 0.5*float64(officials)
	if wasFirstToReport {
		delta += 1.5
	}

	id := NormalizeSourceID(source)
	mu := t.lock(id)
	mu.Lock()
	defer mu.Unlock()

	rep := t.getOrCreate(id)
	rep.Confirmations++
	t.appendEvent(rep, models.ReputationEvent{
		Type:      models.EventConfirmation,
		Delta:     delta,
		Timestamp: time.Now(),
	})
	monitoring.RecordReputationEvent(string(models.EventConfirmation))
}

// RecordContradiction penalizes a source contradicted by others:
// -5.0 base, -2.0 per official contradictor.
func (t *Tracker) RecordContradiction(source string, contradictingSources []string) {
	officials := countOfficial(contradictingSources)
	delta := -5.0 - 2.0*float64(officials)

	id := NormalizeSourceID(source)
	mu := t.lock(id)
	mu.Lock()
	defer mu.Unlock()

	rep := t.getOrCreate(id)
	rep.Contradictions++
	t.appendEvent(rep, models.ReputationEvent{
		Type:      models.EventContradiction,
		Delta:     delta,
		Timestamp: time.Now(),
	})
	monitoring.RecordReputationEvent(string(models.EventContradiction))
}

// RecordCorrection applies the fixed -1.0 correction penalty.
func (t *Tracker) RecordCorrection(source string) {
	id := NormalizeSourceID(source)
	mu := t.lock(id)
	mu.Lock()
	defer mu.Unlock()

	rep := t.getOrCreate(id)
	rep.Corrections++
	t.appendEvent(rep, models.ReputationEvent{
		Type:      models.EventCorrection,
		Delta:     -1.0,
		Timestamp: time.Now(),
	})
	monitoring.RecordReputationEvent(string(models.EventCorrection))
}

// appendEvent applies the event to the fast-path Current value, clamps, and
// truncates the log to the newest maxEventsPerSource entries. Callers hold
// the stripe lock.
func (t *Tracker) appendEvent(rep *models.Reputation, ev models.ReputationEvent) {
	rep.Events = append(rep.Events, ev)
	if len(rep.Events) > maxEventsPerSource {
		rep.Events = rep.Events[len(rep.Events)-maxEventsPerSource:]
	}
	rep.Current = clamp(rep.Current+ev.Delta, 0, 100)
	rep.UpdatedAt = time.Now()
}

// Recalculate recomputes the authoritative reputation from the event log
// with exponential decay: base + 5 * sum(delta_i * w_i) / sum(w_i) where
// w_i = exp(-ln2 * age_days_i / halfLife). The result overwrites Current.
func (t *Tracker) Recalculate(source string) float64 {
	id := NormalizeSourceID(source)
	mu := t.lock(id)
	mu.Lock()
	defer mu.Unlock()

	rep := t.getOrCreate(id)
	if len(rep.Events) == 0 {
		rep.Current = clamp(rep.Base, 0, 100)
		return rep.Current
	}

	now := time.Now()
	var weightedSum, weightTotal float64
	for _, ev := range rep.Events {
		ageDays := now.Sub(ev.Timestamp).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		w := math.Exp(-math.Ln2 * ageDays / t.opts.HalfLifeDays)
		weightedSum += ev.Delta * w
		weightTotal += w
	}

	score := rep.Base
	if weightTotal > 0 {
		score += 5 * weightedSum / weightTotal
	}
	rep.Current = clamp(score, 0, 100)
	rep.UpdatedAt = now
	return rep.Current
}

func countOfficial(sources []string) int {
	n := 0
	for _, s := range sources {
		if _, tier := LookupSource(s); tier == models.TierOfficial {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
