package models

// ClaimKind discriminates the tagged claim variants the extractor produces.
type ClaimKind string

const (
	ClaimNumeric     ClaimKind = "numeric"
	ClaimAttribution ClaimKind = "attribution"
	ClaimEvent       ClaimKind = "event"
	ClaimFactual     ClaimKind = "factual"
	ClaimStatement   ClaimKind = "statement"
	ClaimPrediction  ClaimKind = "prediction"
)

// ExtractedClaim is a single verifiable statement pulled out of an article.
// Fingerprint is the canonical claim identity: the MD5 of the lex-sorted
// non-stopword tokens of the normalized text. Cross-source matching relies
// on every extractor producing the identical fingerprint for equal token
// sets, so no alternate hashing may be introduced.
type ExtractedClaim struct {
	ID             string    `json:"claim_id"`
	Kind           ClaimKind `json:"kind"`
	RawText        string    `json:"raw_text"`
	NormalizedText string    `json:"normalized_text"`
	Fingerprint    string    `json:"fingerprint"`

	Subject   string `json:"subject,omitempty"`
	Predicate string `json:"predicate,omitempty"`
	Object    string `json:"object,omitempty"`

	// Numeric claims only.
	NumericValue *float64 `json:"numeric_value,omitempty"`
	Unit         string   `json:"unit,omitempty"`
	Context      string   `json:"context,omitempty"` // "increased" | "decreased" | "stated"

	ArticleID  string  `json:"article_id"`
	SourceName string  `json:"source_name"`
	Confidence float64 `json:"confidence"`
}

// EntityKind classifies extracted entities.
type EntityKind string

const (
	EntityPerson       EntityKind = "person"
	EntityOrganization EntityKind = "organization"
	EntityLocation     EntityKind = "location"
	EntityDate         EntityKind = "date"
	EntityMoney        EntityKind = "money"
	EntityPercentage   EntityKind = "percentage"
	EntityQuantity     EntityKind = "quantity"
)

// Entity is a typed span of text recognized inside an article.
type Entity struct {
	Text       string     `json:"text"`
	Kind       EntityKind `json:"kind"`
	Normalized string     `json:"normalized"`
	Start      int        `json:"start"`
	End        int        `json:"end"`
	Confidence float64    `json:"confidence"`
}

// ClaimMatch pairs a claim against a similar claim from another article.
type ClaimMatch struct {
	Claim      *ExtractedClaim `json:"claim"`
	Similarity float64         `json:"similarity"`
}
