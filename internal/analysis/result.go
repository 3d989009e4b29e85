// Package analysis scores social media posts for legal, career, reputation
// and privacy risk in a given jurisdiction.
package analysis

// Verdict is the coarse risk tier derived from a score
type Verdict string

const (
	VerdictSafe     Verdict = "SAFE"
	VerdictCaution  Verdict = "CAUTION"
	VerdictHighRisk Verdict = "HIGH RISK"
	VerdictCritical Verdict = "CRITICAL"
)

// Engine names the scorer that produced a result
type Engine string

const (
	EngineHeuristic Engine = "heuristic"
	EngineModel     Engine = "model"
	// EngineAuto picks the model when one is configured
	EngineAuto Engine = "auto"
)

// ParseEngine maps user input onto an Engine, defaulting to def
func ParseEngine(s string, def Engine) (Engine, bool) {
	switch Engine(s) {
	case "":
		return def, true
	case EngineHeuristic, EngineModel, EngineAuto:
		return Engine(s), true
	}
	return def, false
}

// DegradedReason explains why a model analysis fell back to the heuristic
type DegradedReason string

const (
	DegradedNone              DegradedReason = ""
	DegradedMissingCredential DegradedReason = "missing_credential"
	DegradedTransport         DegradedReason = "transport"
	DegradedBadStatus         DegradedReason = "bad_status"
	DegradedEmptyResponse     DegradedReason = "empty_response"
	DegradedParseFailure      DegradedReason = "parse_failure"
)

// Model tier labels, kept separately from Verdict
const (
	ModelRiskNone   = "none"
	ModelRiskLow    = "low"
	ModelRiskMedium = "medium"
	ModelRiskHigh   = "high"
)

// Recommendations the model may return
const (
	RecommendSafe   = "safe"
	RecommendRevise = "revise"
	RecommendDanger = "danger"
)

// Fixed category names
const (
	CategoryLegal          = "legal"
	CategoryCareer         = "career"
	CategoryReputation     = "reputation"
	CategoryCultural       = "cultural"
	CategoryPrivacy        = "privacy"
	CategoryMisinformation = "misinformation"
)

// CategoryNames lists the fixed categories in display order
var CategoryNames = []string{
	CategoryLegal,
	CategoryCareer,
	CategoryReputation,
	CategoryCultural,
	CategoryPrivacy,
	CategoryMisinformation,
}

// Categories are the per-dimension sub-scores, each 0-100
type Categories struct {
	Legal          int `json:"legal"`
	Career         int `json:"career"`
	Reputation     int `json:"reputation"`
	Cultural       int `json:"cultural"`
	Privacy        int `json:"privacy"`
	Misinformation int `json:"misinformation"`
}

// Score returns the sub-score for a category name, or 0 if unknown
func (c Categories) Score(name string) int {
	if p := c.ptr(name); p != nil {
		return *p
	}
	return 0
}

func (c *Categories) ptr(name string) *int {
	switch name {
	case CategoryLegal:
		return &c.Legal
	case CategoryCareer:
		return &c.Career
	case CategoryReputation:
		return &c.Reputation
	case CategoryCultural:
		return &c.Cultural
	case CategoryPrivacy:
		return &c.Privacy
	case CategoryMisinformation:
		return &c.Misinformation
	}
	return nil
}

// LegalRiskHit is a jurisdiction rule that matched the content
type LegalRiskHit struct {
	Risk    string `json:"risk"`
	Penalty string `json:"penalty"`
}

// CategoryAssessment is the model's own per-category breakdown
type CategoryAssessment struct {
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// Result is the single output shape of both engines
type Result struct {
	RiskScore               int            `json:"risk_score"`
	Verdict                 Verdict        `json:"verdict"`
	Categories              Categories     `json:"categories"`
	LegalRisks              []LegalRiskHit `json:"legal_risks"`
	Suggestions             []string       `json:"suggestions"`
	CountrySpecificWarnings []string       `json:"country_specific_warnings"`

	Engine               Engine `json:"engine"`
	Jurisdiction         string `json:"jurisdiction"`
	JurisdictionFallback bool   `json:"jurisdiction_fallback"`
	Platform             string `json:"platform,omitempty"`
	Confidence           int    `json:"confidence"`
	Reasoning            string `json:"reasoning,omitempty"`

	// Model-only fields
	Rewrite         string               `json:"rewritten_version,omitempty"`
	ModelRisk       string               `json:"model_risk,omitempty"`
	Recommendation  string               `json:"recommendation,omitempty"`
	CategoryDetails []CategoryAssessment `json:"category_details,omitempty"`

	Degraded       bool           `json:"degraded"`
	DegradedReason DegradedReason `json:"degraded_reason,omitempty"`
}

const (
	suggestionSafe   = "Content appears safe, good to go"
	suggestionReview = "Review the tone of your post against local cultural norms"
)

// VerdictFor maps a score onto its tier. Thresholds are checked from the most
// severe upwards and the first match wins.
func VerdictFor(score int) Verdict {
	switch {
	case score <= 25:
		return VerdictCritical
	case score <= 50:
		return VerdictHighRisk
	case score <= 75:
		return VerdictCaution
	default:
		return VerdictSafe
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Normalize enforces the result invariants: scores in range, verdict derived
// from the score, and at least one suggestion.
func Normalize(r Result) Result {
	r.RiskScore = clamp(r.RiskScore, 0, 100)
	r.Verdict = VerdictFor(r.RiskScore)
	r.Confidence = clamp(r.Confidence, 0, 100)
	for _, name := range CategoryNames {
		p := r.Categories.ptr(name)
		*p = clamp(*p, 0, 100)
	}

	if r.LegalRisks == nil {
		r.LegalRisks = []LegalRiskHit{}
	}
	if r.CountrySpecificWarnings == nil {
		r.CountrySpecificWarnings = []string{}
	}
	suggestions := r.Suggestions[:0:0]
	for _, s := range r.Suggestions {
		if s != "" {
			suggestions = append(suggestions, s)
		}
	}
	if len(suggestions) == 0 {
		if r.RiskScore == 100 {
			suggestions = append(suggestions, suggestionSafe)
		} else {
			suggestions = append(suggestions, suggestionReview)
		}
	}
	r.Suggestions = suggestions
	if r.Engine == "" {
		r.Engine = EngineHeuristic
	}
	return r
}
