package claims

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

func newTestExtractor() *Extractor {
	return NewExtractor(logger.NewNop())
}

func TestExtract_PercentageClaim(t *testing.T) {
	// S1: "Inflation rose to 12%" yields one numeric percentage claim,
	// context "increased".
	e := newTestExtractor()
	out := e.Extract("Inflation rose to 12% according to the latest figures.", "Economy update", "a1", "blog_xyz")

	var numeric *models.ExtractedClaim
	for _, c := range out {
		if c.Kind == models.ClaimNumeric {
			numeric = c
			break
		}
	}
	require.NotNil(t, numeric, "expected a numeric claim")
	require.NotNil(t, numeric.NumericValue)
	assert.Equal(t, 12.0, *numeric.NumericValue)
	assert.Equal(t, "percentage", numeric.Unit)
	assert.Equal(t, "increased", numeric.Context)
	assert.Equal(t, "a1", numeric.ArticleID)
	assert.Equal(t, "blog_xyz", numeric.SourceName)
}

func TestExtract_CurrencyMultiplier(t *testing.T) {
	e := newTestExtractor()
	out := e.Extract("The government allocated $4.5 billion for reconstruction.", "Budget", "a1", "daily_news")

	var numeric *models.ExtractedClaim
	for _, c := range out {
		if c.Kind == models.ClaimNumeric && c.Unit == "currency" {
			numeric = c
			break
		}
	}
	require.NotNil(t, numeric)
	assert.Equal(t, 4.5e9, *numeric.NumericValue)
}

func TestExtract_DecreaseContext(t *testing.T) {
	e := newTestExtractor()
	out := e.Extract("Exports fell by 8% in the third quarter.", "Trade", "a1", "reuters")

	require.NotEmpty(t, out)
	found := false
	for _, c := range out {
		if c.Kind == models.ClaimNumeric && c.Context == "decreased" {
			found = true
		}
	}
	assert.True(t, found, "expected a decreased-context numeric claim")
}

func TestExtract_Attribution(t *testing.T) {
	e := newTestExtractor()
	out := e.Extract("The Finance Minister said that the deficit will narrow next year.", "Fiscal outlook", "a1", "daily_news")

	var attr *models.ExtractedClaim
	for _, c := range out {
		if c.Kind == models.ClaimAttribution {
			attr = c
			break
		}
	}
	require.NotNil(t, attr)
	assert.Equal(t, "said", attr.Predicate)
	assert.Contains(t, attr.Subject, "Minister")
	assert.NotEmpty(t, attr.Object)
	assert.LessOrEqual(t, len(attr.Object), 100)
}

func TestExtract_AccordingTo(t *testing.T) {
	e := newTestExtractor()
	out := e.Extract("According to Central Bank, reserves remain adequate.", "Reserves", "a1", "daily_news")

	found := false
	for _, c := range out {
		if c.Kind == models.ClaimAttribution && c.Subject == "Central Bank" {
			found = true
		}
	}
	assert.True(t, found, "expected attribution from 'according to'")
}

func TestExtract_EventClaim(t *testing.T) {
	// S2: "Floods hit Colombo" from two sources must fingerprint equal.
	e := newTestExtractor()
	a := e.Extract("Floods hit Colombo after heavy rain.", "Weather", "a1", "daily_mirror")
	b := e.Extract("Floods hit Colombo after heavy rain.", "Weather", "b1", "reuters")

	var ea, eb *models.ExtractedClaim
	for _, c := range a {
		if c.Kind == models.ClaimEvent {
			ea = c
		}
	}
	for _, c := range b {
		if c.Kind == models.ClaimEvent {
			eb = c
		}
	}
	require.NotNil(t, ea)
	require.NotNil(t, eb)
	assert.Equal(t, ea.Fingerprint, eb.Fingerprint)
	assert.Equal(t, "hit", ea.Predicate)
	assert.Contains(t, ea.Object, "Colombo")
}

func TestFingerprint_TokenOrderInvariant(t *testing.T) {
	// Equal non-stopword token sets produce equal fingerprints regardless
	// of ordering and stopword differences.
	f1 := Fingerprint(Normalize("The floods hit Colombo"))
	f2 := Fingerprint(Normalize("colombo hit floods"))
	assert.Equal(t, f1, f2)

	f3 := Fingerprint(Normalize("storms hit Colombo"))
	assert.NotEqual(t, f1, f3)
}

func TestNormalize(t *testing.T) {
	got := Normalize("Inflation  rose to 12%, officials said (Tuesday).")
	assert.Equal(t, "inflation rose to 12% officials said tuesday .", got)

	// Digit-grouping commas removed.
	assert.Equal(t, "2500 homes", Normalize("2,500 homes"))
}
