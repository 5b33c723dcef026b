package claims

import (
	"regexp"
	"strings"

	"github.com/veritasworks/veritas-core/internal/models"
)

// organizationLexicon lists well-known institution names matched verbatim
// (case-insensitive).
var organizationLexicon = []string{
	"Central Bank", "World Bank", "IMF", "International Monetary Fund",
	"United Nations", "UN", "WHO", "World Health Organization",
	"Asian Development Bank", "ADB", "Ministry of Finance",
	"Ministry of Health", "Department of Census", "Disaster Management Centre",
	"Chamber of Commerce", "Treasury", "Parliament", "Cabinet",
}

// EntityExtractor recognizes typed entities via regex families. Safe for
// concurrent use after construction.
type EntityExtractor struct {
	orgLexiconRe *regexp.Regexp
	acronymRe    *regexp.Regexp
	moneyRe      *regexp.Regexp
	percentageRe *regexp.Regexp
	locationRe   *regexp.Regexp
	dateRe       *regexp.Regexp
}

// NewEntityExtractor compiles the entity patterns.
func NewEntityExtractor() *EntityExtractor {
	escaped := make([]string, len(organizationLexicon))
	for i, org := range organizationLexicon {
		escaped[i] = regexp.QuoteMeta(org)
	}
	return &EntityExtractor{
		orgLexiconRe: regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`),
		// Standalone acronyms of 2-6 capitals, optionally with an & (e.g. R&D).
		acronymRe:    regexp.MustCompile(`\b([A-Z][A-Z&]{1,5})\b`),
		moneyRe:      regexp.MustCompile(`(?:Rs\.?|LKR|USD|US\$|\$|EUR|€|GBP|£)\s*\d+(?:,\d{3})*(?:\.\d+)?(?:\s*(?:million|billion|trillion))?`),
		percentageRe: regexp.MustCompile(`\d+(?:\.\d+)?\s*(?:%|percent|per cent)`),
		locationRe:   regexp.MustCompile(`\b(?:in|at|near|from)\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+){0,2})`),
		dateRe:       regexp.MustCompile(`\b(?:\d{1,2}\s+)?(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}?,?\s*\d{4}\b|\b\d{4}-\d{2}-\d{2}\b`),
	}
}

// Extract returns the entities found in text. Overlapping matches from
// different families are all reported; each family carries its own
// confidence.
func (x *EntityExtractor) Extract(text string) []models.Entity {
	var out []models.Entity

	for _, loc := range x.orgLexiconRe.FindAllStringIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		out = append(out, models.Entity{
			Text:       match,
			Kind:       models.EntityOrganization,
			Normalized: strings.ToLower(match),
			Start:      loc[0],
			End:        loc[1],
			Confidence: 0.95,
		})
	}

	for _, loc := range x.acronymRe.FindAllStringIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		// Short common words in caps (headlines) are not organizations.
		if len(match) < 2 || isCommonCapsWord(match) {
			continue
		}
		out = append(out, models.Entity{
			Text:       match,
			Kind:       models.EntityOrganization,
			Normalized: match,
			Start:      loc[0],
			End:        loc[1],
			Confidence: 0.7,
		})
	}

	for _, loc := range x.moneyRe.FindAllStringIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		out = append(out, models.Entity{
			Text:       match,
			Kind:       models.EntityMoney,
			Normalized: Normalize(match),
			Start:      loc[0],
			End:        loc[1],
			Confidence: 0.9,
		})
	}

	for _, loc := range x.percentageRe.FindAllStringIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		out = append(out, models.Entity{
			Text:       match,
			Kind:       models.EntityPercentage,
			Normalized: Normalize(match),
			Start:      loc[0],
			End:        loc[1],
			Confidence: 0.95,
		})
	}

	for _, m := range x.locationRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		match := text[start:end]
		out = append(out, models.Entity{
			Text:       match,
			Kind:       models.EntityLocation,
			Normalized: strings.ToLower(match),
			Start:      start,
			End:        end,
			Confidence: 0.75,
		})
	}

	for _, loc := range x.dateRe.FindAllStringIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		out = append(out, models.Entity{
			Text:       match,
			Kind:       models.EntityDate,
			Normalized: strings.ToLower(match),
			Start:      loc[0],
			End:        loc[1],
			Confidence: 0.85,
		})
	}

	return out
}

var commonCapsWords = map[string]bool{
	"A": true, "I": true, "IT": true, "IS": true, "AT": true, "TO": true,
	"IN": true, "ON": true, "OF": true, "NO": true, "US": false, // US stays an org/geo acronym
}

func isCommonCapsWord(w string) bool {
	return commonCapsWords[w]
}
