package claims

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// Extractor pulls verifiable claims out of article text using three regex
// families: numeric, attribution and event. Patterns are compiled once at
// construction; the extractor is safe for concurrent use.
type Extractor struct {
	log logger.Logger

	numericPatterns []numericPattern
	attributionSaid *regexp.Regexp
	accordingTo     *regexp.Regexp
	eventPatterns   []eventPattern

	increaseLexicon []string
	decreaseLexicon []string
	sentenceSplit   *regexp.Regexp
}

type numericPattern struct {
	re   *regexp.Regexp
	unit string
}

type eventPattern struct {
	re        *regexp.Regexp
	eventKind string
}

// NewExtractor compiles all claim patterns.
func NewExtractor(log logger.Logger) *Extractor {
	return &Extractor{
		log: log,
		numericPatterns: []numericPattern{
			// Percentages: "rose to 12%", "12.5 percent"
			{regexp.MustCompile(`(\d+(?:,\d{3})*(?:\.\d+)?)\s*(?:%|percent|per cent)`), "percentage"},
			// Currency with optional scale multiplier: "$4.5 billion", "Rs. 2,000 million", "USD 300"
			{regexp.MustCompile(`(?:Rs\.?|LKR|USD|US\$|\$|EUR|€|GBP|£)\s*(\d+(?:,\d{3})*(?:\.\d+)?)\s*(million|billion|trillion)?`), "currency"},
			// Generic number with unit word: "2,500 people", "300 houses", "45 deaths"
			{regexp.MustCompile(`(\d+(?:,\d{3})*(?:\.\d+)?)\s+(people|persons|deaths|houses|homes|families|hectares|acres|units|jobs|workers|employees|tonnes|tons|megawatts|kilometers|km)`), "count"},
		},
		// "«Proper Name» said|announced|stated [that] «statement»"
		attributionSaid: regexp.MustCompile(`([A-Z][a-zA-Z.]*(?:\s+[A-Z][a-zA-Z.]*){0,4})\s+(said|announced|stated|declared|confirmed)\s+(?:that\s+)?([^.!?]+)`),
		// "according to «Proper Name», «statement»"
		accordingTo: regexp.MustCompile(`(?i)according to\s+([A-Z][a-zA-Z.]*(?:\s+[A-Z][a-zA-Z.]*){0,4})\s*,\s*([^.!?]+)`),
		eventPatterns: []eventPattern{
			{regexp.MustCompile(`(?i)(flood|floods|flooding|earthquake|storm|cyclone|drought|landslide|tsunami)\s+(?:has\s+|have\s+)?(hit|struck|affected|devastated)\s+([A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*){0,3})`), "disaster"},
			{regexp.MustCompile(`(?i)(protest|protests|strike|strikes|demonstration|demonstrations)\s+(?:in|at|across|near)\s+([A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*){0,3})`), "unrest"},
			{regexp.MustCompile(`(?i)(accident|crash|collision|derailment|explosion)\s+(?:in|at|on|near)\s+([A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*){0,3})`), "accident"},
		},
		increaseLexicon: []string{
			"rose", "rise", "rises", "rising", "increase", "increased", "increases",
			"increasing", "grew", "grow", "growing", "surged", "surge", "jumped",
			"jump", "climbed", "climb", "soared", "soar", "gained", "gain",
			"up", "higher", "reached", "hit",
		},
		decreaseLexicon: []string{
			"fell", "fall", "falls", "falling", "decrease", "decreased", "decreases",
			"decreasing", "dropped", "drop", "dropping", "declined", "decline",
			"plunged", "plunge", "shrank", "shrink", "slumped", "slump", "lost",
			"down", "lower", "reduced", "contraction",
		},
		sentenceSplit: regexp.MustCompile(`[.!?]+\s+`),
	}
}

// Extract runs all claim passes over title + ". " + body and returns the
// claims in document order (numeric, then attribution, then event).
func (e *Extractor) Extract(body, title, articleID, sourceName string) []*models.ExtractedClaim {
	text := title + ". " + body

	var out []*models.ExtractedClaim
	out = append(out, e.extractNumeric(text, articleID, sourceName)...)
	out = append(out, e.extractAttributions(text, articleID, sourceName)...)
	out = append(out, e.extractEvents(text, articleID, sourceName)...)
	return out
}

func (e *Extractor) extractNumeric(text, articleID, sourceName string) []*models.ExtractedClaim {
	var out []*models.ExtractedClaim
	for _, np := range e.numericPatterns {
		for _, loc := range np.re.FindAllStringSubmatchIndex(text, -1) {
			match := np.re.FindStringSubmatch(text[loc[0]:loc[1]])
			if match == nil {
				continue
			}
			value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
			if err != nil {
				continue
			}
			unit := np.unit
			if np.unit == "currency" && len(match) > 2 {
				value *= multiplier(match[2])
			}
			if np.unit == "count" && len(match) > 2 {
				unit = strings.ToLower(match[2])
			}

			sentence := e.containingSentence(text, loc[0])
			context := e.classifyContext(sentence)

			raw := strings.TrimSpace(sentence)
			normalized := Normalize(raw)
			v := value
			out = append(out, &models.ExtractedClaim{
				ID:             uuid.NewString(),
				Kind:           models.ClaimNumeric,
				RawText:        raw,
				NormalizedText: normalized,
				Fingerprint:    Fingerprint(normalized),
				NumericValue:   &v,
				Unit:           unit,
				Context:        context,
				ArticleID:      articleID,
				SourceName:     sourceName,
				Confidence:     0.85,
			})
		}
	}
	return out
}

func (e *Extractor) extractAttributions(text, articleID, sourceName string) []*models.ExtractedClaim {
	var out []*models.ExtractedClaim

	for _, m := range e.attributionSaid.FindAllStringSubmatch(text, -1) {
		subject := strings.TrimSpace(m[1])
		statement := strings.TrimSpace(m[3])
		out = append(out, e.attributionClaim(subject, statement, articleID, sourceName))
	}
	for _, m := range e.accordingTo.FindAllStringSubmatch(text, -1) {
		subject := strings.TrimSpace(m[1])
		statement := strings.TrimSpace(m[2])
		out = append(out, e.attributionClaim(subject, statement, articleID, sourceName))
	}
	return out
}

func (e *Extractor) attributionClaim(subject, statement, articleID, sourceName string) *models.ExtractedClaim {
	object := statement
	if len(object) > 100 {
		object = object[:100]
	}
	raw := subject + " said " + statement
	normalized := Normalize(raw)
	return &models.ExtractedClaim{
		ID:             uuid.NewString(),
		Kind:           models.ClaimAttribution,
		RawText:        raw,
		NormalizedText: normalized,
		Fingerprint:    Fingerprint(normalized),
		Subject:        subject,
		Predicate:      "said",
		Object:         object,
		ArticleID:      articleID,
		SourceName:     sourceName,
		Confidence:     0.8,
	}
}

func (e *Extractor) extractEvents(text, articleID, sourceName string) []*models.ExtractedClaim {
	var out []*models.ExtractedClaim
	for _, ep := range e.eventPatterns {
		for _, m := range ep.re.FindAllStringSubmatch(text, -1) {
			raw := strings.TrimSpace(m[0])
			normalized := Normalize(raw)
			subject := strings.ToLower(m[1])
			var predicate, object string
			if len(m) == 4 {
				predicate = strings.ToLower(m[2])
				object = strings.TrimSpace(m[3])
			} else {
				predicate = ep.eventKind
				object = strings.TrimSpace(m[len(m)-1])
			}
			out = append(out, &models.ExtractedClaim{
				ID:             uuid.NewString(),
				Kind:           models.ClaimEvent,
				RawText:        raw,
				NormalizedText: normalized,
				Fingerprint:    Fingerprint(normalized),
				Subject:        subject,
				Predicate:      predicate,
				Object:         object,
				ArticleID:      articleID,
				SourceName:     sourceName,
				Confidence:     0.75,
			})
		}
	}
	return out
}

// containingSentence returns the sentence enclosing the byte offset.
func (e *Extractor) containingSentence(text string, offset int) string {
	start := 0
	for _, loc := range e.sentenceSplit.FindAllStringIndex(text, -1) {
		if loc[0] >= offset {
			return text[start:loc[0]]
		}
		start = loc[1]
	}
	return text[start:]
}

// classifyContext searches the sentence for increase/decrease verbs,
// defaulting to "stated".
func (e *Extractor) classifyContext(sentence string) string {
	lower := " " + strings.ToLower(sentence) + " "
	for _, verb := range e.increaseLexicon {
		if strings.Contains(lower, " "+verb+" ") {
			return "increased"
		}
	}
	for _, verb := range e.decreaseLexicon {
		if strings.Contains(lower, " "+verb+" ") {
			return "decreased"
		}
	}
	return "stated"
}

func multiplier(scale string) float64 {
	switch strings.ToLower(scale) {
	case "million":
		return 1e6
	case "billion":
		return 1e9
	case "trillion":
		return 1e12
	default:
		return 1
	}
}
