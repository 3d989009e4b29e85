package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zfogg/postcheck/internal/jurisdiction"
	"golang.org/x/text/unicode/norm"
)

// Matching is English-only: the aggressive word list and the category label
// tokens are compared as lower-case substrings of the post.
var aggressiveWords = []string{
	"hate",
	"stupid",
	"idiot",
	"kill",
	"destroy",
	"attack",
	"murder",
	"moron",
	"dumb",
	"loser",
	"shut up",
	"disgusting",
}

var privacyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{3}-\d{2}-\d{4}`),
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
	regexp.MustCompile(`\d{10,}`),
}

const (
	penaltyCritical   = 40
	penaltyHigh       = 25
	penaltyOther      = 10
	penaltyAggression = 10
	penaltyPrivacy    = 30

	heuristicConfidence = 60
	privacyFlaggedScore = 20

	privacyRiskLabel   = "Privacy Violation"
	privacyRiskPenalty = "Exposure of personally identifiable information"

	suggestionAggression = "Consider removing aggressive or hostile language"
	suggestionPII        = "Remove personal information such as emails, phone numbers, or ID numbers"
)

// HeuristicOptions tune Evaluate. The zero value scores the text as given.
type HeuristicOptions struct {
	// FoldWidth applies NFKC before the keyword passes so full-width and
	// ligature forms match their ASCII spelling. The privacy patterns always
	// see the raw content.
	FoldWidth bool
}

// Evaluate scores content against a jurisdiction profile using keyword and
// pattern passes. It is pure and deterministic and safe for concurrent use.
func Evaluate(content string, profile jurisdiction.Profile) Result {
	return EvaluateWith(content, profile, HeuristicOptions{})
}

// EvaluateWith is Evaluate with explicit options
func EvaluateWith(content string, profile jurisdiction.Profile, opts HeuristicOptions) Result {
	text := content
	if opts.FoldWidth {
		text = norm.NFKC.String(content)
	}
	lower := strings.ToLower(text)
	score := 100

	legalRisks := []LegalRiskHit{}
	warnings := []string{}
	suggestions := []string{}

	for _, risk := range profile.Risks {
		if !categoryMatches(lower, risk.Category) {
			continue
		}
		score -= severityPenalty(risk.Severity)
		legalRisks = append(legalRisks, LegalRiskHit{Risk: risk.Category, Penalty: risk.Penalty})
		warnings = append(warnings, fmt.Sprintf("Potential %s violation in %s", risk.Category, profile.Name))
	}
	matchedLegal := len(legalRisks)

	aggression := 0
	for _, word := range aggressiveWords {
		if strings.Contains(lower, word) {
			aggression++
		}
	}
	score -= penaltyAggression * aggression
	if aggression > 0 {
		suggestions = append(suggestions, suggestionAggression)
	}

	privacyHit := false
	for _, re := range privacyPatterns {
		if re.MatchString(content) {
			privacyHit = true
			break
		}
	}
	if privacyHit {
		score -= penaltyPrivacy
		legalRisks = append(legalRisks, LegalRiskHit{Risk: privacyRiskLabel, Penalty: privacyRiskPenalty})
		suggestions = append(suggestions, suggestionPII)
	}

	score = clamp(score, 0, 100)

	privacy := 100
	if privacyHit {
		privacy = privacyFlaggedScore
	}
	categories := Categories{
		Legal:          max(0, 100-20*matchedLegal),
		Career:         max(0, 100-15*aggression),
		Reputation:     max(0, 100-10*aggression-10*matchedLegal),
		Cultural:       profile.FreedomScore,
		Privacy:        privacy,
		Misinformation: 100,
	}

	if len(suggestions) == 0 {
		if score == 100 {
			suggestions = append(suggestions, suggestionSafe)
		} else {
			suggestions = append(suggestions, suggestionReview)
		}
	}

	return Result{
		RiskScore:               score,
		Verdict:                 VerdictFor(score),
		Categories:              categories,
		LegalRisks:              legalRisks,
		Suggestions:             suggestions,
		CountrySpecificWarnings: warnings,
		Engine:                  EngineHeuristic,
		Jurisdiction:            profile.Code,
		Confidence:              heuristicConfidence,
	}
}

// categoryMatches reports whether any token of label longer than three
// characters appears in the already lower-cased content.
func categoryMatches(lowerContent, label string) bool {
	for _, token := range strings.Fields(strings.ToLower(label)) {
		if len(token) > 3 && strings.Contains(lowerContent, token) {
			return true
		}
	}
	return false
}

func severityPenalty(s jurisdiction.Severity) int {
	switch s {
	case jurisdiction.SeverityCritical:
		return penaltyCritical
	case jurisdiction.SeverityHigh:
		return penaltyHigh
	default:
		return penaltyOther
	}
}
