package claims

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"
)

// stopwords excluded from fingerprints. Fingerprint identity depends on this
// exact list: changing it silently breaks cross-source claim matching.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "have": true,
	"has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "may": true,
	"might": true, "shall": true, "can": true, "to": true, "of": true,
	"in": true, "on": true, "at": true, "by": true, "for": true, "with": true,
	"about": true, "from": true, "up": true, "down": true, "into": true,
	"over": true, "under": true, "and": true, "or": true, "but": true,
	"not": true, "no": true, "that": true, "this": true, "these": true,
	"those": true, "it": true, "its": true, "as": true, "than": true,
	"then": true, "so": true, "if": true, "there": true, "their": true,
	"they": true, "he": true, "she": true, "we": true, "you": true,
}

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	punctuationRe   = regexp.MustCompile(`[^\w\s%.]`)
	groupingCommaRe = regexp.MustCompile(`(\d),(\d)`)
)

// Normalize canonicalizes claim text: lowercase, digit-grouping commas
// removed, punctuation stripped (keeping % and .), whitespace collapsed.
func Normalize(text string) string {
	s := strings.ToLower(text)
	for groupingCommaRe.MatchString(s) {
		s = groupingCommaRe.ReplaceAllString(s, "$1$2")
	}
	s = punctuationRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ContentTokens returns the non-stopword tokens of normalized text.
func ContentTokens(normalized string) []string {
	fields := strings.Fields(normalized)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if f == "" || stopwords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// Fingerprint is the canonical claim identity: the MD5 hex digest of the
// lex-sorted non-stopword tokens of the normalized text.
func Fingerprint(normalized string) string {
	tokens := ContentTokens(normalized)
	sort.Strings(tokens)
	sum := md5.Sum([]byte(strings.Join(tokens, " ")))
	return hex.EncodeToString(sum[:])
}

// TokenSet returns the content tokens as a set, for Jaccard similarity.
func TokenSet(normalized string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range ContentTokens(normalized) {
		set[tok] = true
	}
	return set
}

// Jaccard computes |A∩B| / |A∪B| over two token sets.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
