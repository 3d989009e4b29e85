package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/postcheck/internal/jurisdiction"
)

func profile(t *testing.T, code string) jurisdiction.Profile {
	t.Helper()
	p, ok := jurisdiction.Default().Lookup(code)
	require.True(t, ok, "no profile for %s", code)
	return p
}

func TestVerdictFor(t *testing.T) {
	testCases := []struct {
		score   int
		verdict Verdict
	}{
		{0, VerdictCritical},
		{25, VerdictCritical},
		{26, VerdictHighRisk},
		{50, VerdictHighRisk},
		{51, VerdictCaution},
		{75, VerdictCaution},
		{76, VerdictSafe},
		{100, VerdictSafe},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.verdict, VerdictFor(tc.score), "score %d", tc.score)
	}
}

func TestEvaluateHostileGermanPost(t *testing.T) {
	r := Evaluate("I hate this stupid government and their rules", profile(t, "DE"))

	require.Len(t, r.LegalRisks, 1)
	assert.Equal(t, "Hate Speech (Volksverhetzung)", r.LegalRisks[0].Risk)
	assert.Contains(t, r.LegalRisks[0].Penalty, "§130")
	require.Len(t, r.CountrySpecificWarnings, 1)
	assert.Contains(t, r.CountrySpecificWarnings[0], "Hate Speech")
	assert.Contains(t, r.CountrySpecificWarnings[0], "Germany")

	// 100 - 40 (critical rule) - 2*10 (hate, stupid)
	assert.Equal(t, 40, r.RiskScore)
	assert.Equal(t, VerdictHighRisk, r.Verdict)

	assert.Equal(t, Categories{
		Legal:          80,
		Career:         70,
		Reputation:     70,
		Cultural:       70,
		Privacy:        100,
		Misinformation: 100,
	}, r.Categories)
	assert.Equal(t, []string{suggestionAggression}, r.Suggestions)
	assert.Equal(t, "DE", r.Jurisdiction)
	assert.Equal(t, EngineHeuristic, r.Engine)
}

func TestEvaluateHarmlessPost(t *testing.T) {
	r := Evaluate("Just had a great coffee this morning!", profile(t, "US"))

	assert.Equal(t, 100, r.RiskScore)
	assert.Equal(t, VerdictSafe, r.Verdict)
	assert.Empty(t, r.LegalRisks)
	assert.Empty(t, r.CountrySpecificWarnings)
	assert.Equal(t, []string{"Content appears safe, good to go"}, r.Suggestions)
	assert.Equal(t, 100, r.Categories.Privacy)
	assert.Equal(t, 100, r.Categories.Career)
	assert.Equal(t, 90, r.Categories.Cultural)
}

func TestEvaluatePrivacyPatterns(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"email", "ping me at john.doe@example.com"},
		{"ssn", "my number is 123-45-6789 lol"},
		{"ssn inside digits", "ref 99123-45-67890"},
		{"phone", "call 5551234567 now"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, code := range jurisdiction.Default().Codes() {
				r := Evaluate(tc.content, profile(t, code))
				assert.Equal(t, 20, r.Categories.Privacy, code)
				assert.Contains(t, r.LegalRisks, LegalRiskHit{Risk: privacyRiskLabel, Penalty: privacyRiskPenalty}, code)
				assert.Contains(t, r.Suggestions, suggestionPII, code)
			}
		})
	}
}

func TestEvaluatePrivacyPenaltyAppliedOnce(t *testing.T) {
	r := Evaluate("john.doe@example.com 123-45-6789 5551234567", profile(t, "US"))
	assert.Equal(t, 70, r.RiskScore)
	assert.Equal(t, VerdictCaution, r.Verdict)
	// The privacy hit is not a jurisdiction rule and leaves the legal score alone
	assert.Equal(t, 100, r.Categories.Legal)
}

func TestEvaluateSeverityPenalties(t *testing.T) {
	p := jurisdiction.Profile{
		Code:         "XA",
		Name:         "Testland",
		FreedomScore: 50,
		Risks: []jurisdiction.LegalRisk{
			{Category: "Volcano Insults", Severity: jurisdiction.SeverityCritical, Penalty: "exile"},
			{Category: "Glacier Slander", Severity: jurisdiction.SeverityHigh, Penalty: "fine"},
			{Category: "Puddle Mockery", Severity: jurisdiction.SeverityMedium, Penalty: "warning"},
			{Category: "Pond Jokes", Severity: jurisdiction.SeverityLow, Penalty: "frown"},
		},
	}

	testCases := []struct {
		content string
		score   int
	}{
		{"the volcano is grumpy", 60},
		{"that glacier again", 75},
		{"a puddle appeared", 90},
		{"a pond appeared", 90},
		{"volcano glacier puddle pond", 15},
		// tokens of three characters or fewer never match
		{"the cat sat", 100},
	}

	for _, tc := range testCases {
		t.Run(tc.content, func(t *testing.T) {
			r := Evaluate(tc.content, p)
			assert.Equal(t, tc.score, r.RiskScore)
		})
	}
}

func TestEvaluateShortTokensIgnored(t *testing.T) {
	p := jurisdiction.Profile{
		Code: "XA", Name: "Testland", FreedomScore: 50,
		Risks: []jurisdiction.LegalRisk{{Category: "Act of War", Severity: jurisdiction.SeverityCritical}},
	}
	r := Evaluate("what an act, of course", p)
	assert.Empty(t, r.LegalRisks)
	assert.Equal(t, 100, r.RiskScore)
}

func TestEvaluateClampsAtZero(t *testing.T) {
	content := "hate stupid idiot kill destroy attack murder moron dumb loser shut up disgusting john@example.com"
	r := Evaluate(content, profile(t, "US"))
	assert.Equal(t, 0, r.RiskScore)
	assert.Equal(t, VerdictCritical, r.Verdict)
	assert.Equal(t, 0, r.Categories.Career)
	assert.Equal(t, 0, r.Categories.Reputation)
}

func TestEvaluateAggressionIsSubstringMatch(t *testing.T) {
	r := Evaluate("I picked up a new skill", profile(t, "JP"))
	// "kill" inside "skill"
	assert.Equal(t, 90, r.RiskScore)
	assert.Equal(t, 85, r.Categories.Career)
}

func TestEvaluateMatchesRawContentByDefault(t *testing.T) {
	r := Evaluate("what an ｉｄｉｏｔ, SSN １２３-４５-６７８９", profile(t, "US"))
	assert.Equal(t, 100, r.RiskScore)
	assert.Equal(t, 100, r.Categories.Privacy)
	assert.Empty(t, r.LegalRisks)
}

func TestEvaluateWithFoldWidth(t *testing.T) {
	opts := HeuristicOptions{FoldWidth: true}

	r := EvaluateWith("what an ｉｄｉｏｔ", profile(t, "US"), opts)
	assert.Equal(t, 90, r.RiskScore)

	// privacy patterns still see the raw text
	r = EvaluateWith("SSN １２３-４５-６７８９", profile(t, "US"), opts)
	assert.Equal(t, 100, r.RiskScore)
	assert.Equal(t, 100, r.Categories.Privacy)

	plain := "I hate this stupid government"
	assert.Equal(t, Evaluate(plain, profile(t, "DE")), EvaluateWith(plain, profile(t, "DE"), opts))
}

func TestEvaluateAggressionCountsDistinctWords(t *testing.T) {
	once := Evaluate("I hate mondays", profile(t, "JP"))
	repeated := Evaluate("hate hate hate", profile(t, "JP"))
	assert.Equal(t, 90, once.RiskScore)
	assert.Equal(t, once.RiskScore, repeated.RiskScore)
	assert.Equal(t, 85, repeated.Categories.Career)
}

func TestEvaluateEmptyContent(t *testing.T) {
	r := Evaluate("", profile(t, "CN"))
	assert.Equal(t, 100, r.RiskScore)
	assert.Equal(t, []string{suggestionSafe}, r.Suggestions)
	assert.Equal(t, 10, r.Categories.Cultural)
}

func TestEvaluateNonEmptySuggestionWithoutFindings(t *testing.T) {
	// a rule match with no aggression or PII still yields a tone suggestion
	r := Evaluate("Some thoughts on defamation law", profile(t, "US"))
	assert.Less(t, r.RiskScore, 100)
	assert.Equal(t, []string{suggestionReview}, r.Suggestions)
}

func TestNormalize(t *testing.T) {
	r := Normalize(Result{
		RiskScore:   140,
		Verdict:     VerdictCritical,
		Confidence:  -3,
		Categories:  Categories{Legal: -5, Career: 500},
		Suggestions: []string{""},
	})

	assert.Equal(t, 100, r.RiskScore)
	assert.Equal(t, VerdictSafe, r.Verdict)
	assert.Equal(t, 0, r.Confidence)
	assert.Equal(t, 0, r.Categories.Legal)
	assert.Equal(t, 100, r.Categories.Career)
	assert.Equal(t, []string{suggestionSafe}, r.Suggestions)
	assert.NotNil(t, r.LegalRisks)
	assert.NotNil(t, r.CountrySpecificWarnings)
	assert.Equal(t, EngineHeuristic, r.Engine)

	r = Normalize(Result{RiskScore: 30})
	assert.Equal(t, []string{suggestionReview}, r.Suggestions)
}

func TestParseEngine(t *testing.T) {
	e, ok := ParseEngine("", EngineHeuristic)
	assert.True(t, ok)
	assert.Equal(t, EngineHeuristic, e)

	e, ok = ParseEngine("model", EngineHeuristic)
	assert.True(t, ok)
	assert.Equal(t, EngineModel, e)

	_, ok = ParseEngine("oracle", EngineHeuristic)
	assert.False(t, ok)
}
