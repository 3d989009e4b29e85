package analysis

import (
	"math"
	"strings"
)

const (
	defaultModelScore      = 50
	defaultModelConfidence = 70
)

// modelAssessment is the model's reply after the coercion pass. Every field
// holds a value from its declared set.
type modelAssessment struct {
	OverallRisk    string
	RiskScore      int
	Categories     []CategoryAssessment
	Suggestions    []string
	Rewrite        string
	Confidence     int
	Recommendation string
	Reasoning      string
	LegalRisks     []LegalRiskHit
	Warnings       []string
}

// coerceAssessment maps a decoded JSON object onto modelAssessment. Malformed
// fields fall back to safe defaults instead of failing the whole reply.
func coerceAssessment(raw map[string]interface{}) modelAssessment {
	a := modelAssessment{
		OverallRisk:    coerceEnum(raw["overall_risk"], ModelRiskMedium, ModelRiskNone, ModelRiskLow, ModelRiskMedium, ModelRiskHigh),
		RiskScore:      coerceScore(raw["risk_score"], defaultModelScore),
		Confidence:     coerceScore(raw["confidence"], defaultModelConfidence),
		Recommendation: coerceEnum(raw["recommendation"], RecommendRevise, RecommendSafe, RecommendRevise, RecommendDanger),
		Suggestions:    coerceStrings(raw["suggestions"]),
		Warnings:       coerceStrings(raw["country_warnings"]),
		Rewrite:        coerceString(raw["rewritten_version"]),
		Reasoning:      coerceString(raw["reasoning"]),
	}

	a.Categories = []CategoryAssessment{}
	if items, ok := raw["categories"].([]interface{}); ok {
		for _, item := range items {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			a.Categories = append(a.Categories, CategoryAssessment{
				Name:        coerceString(obj["name"]),
				Score:       coerceScore(obj["score"], a.RiskScore),
				Severity:    coerceEnum(obj["severity"], "medium", "low", "medium", "high", "critical"),
				Description: coerceString(obj["description"]),
			})
		}
	}

	a.LegalRisks = []LegalRiskHit{}
	if items, ok := raw["legal_risks"].([]interface{}); ok {
		for _, item := range items {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			risk := coerceString(obj["risk"])
			if risk == "" {
				continue
			}
			a.LegalRisks = append(a.LegalRisks, LegalRiskHit{Risk: risk, Penalty: coerceString(obj["penalty"])})
		}
	}
	return a
}

func coerceScore(v interface{}, def int) int {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	// clamp before converting; huge floats overflow int
	f = math.Max(0, math.Min(100, f))
	return int(math.Round(f))
}

func coerceEnum(v interface{}, def string, allowed ...string) string {
	s, ok := v.(string)
	if !ok {
		return def
	}
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range allowed {
		if s == a {
			return a
		}
	}
	return def
}

func coerceString(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func coerceStrings(v interface{}) []string {
	out := []string{}
	items, ok := v.([]interface{})
	if !ok {
		return out
	}
	for _, item := range items {
		if s := coerceString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// toResult folds a coerced assessment into the shared result shape. Fixed
// categories the model didn't score inherit the overall score.
func (a modelAssessment) toResult() Result {
	r := Result{
		RiskScore:               a.RiskScore,
		LegalRisks:              a.LegalRisks,
		Suggestions:             a.Suggestions,
		CountrySpecificWarnings: a.Warnings,
		Engine:                  EngineModel,
		Confidence:              a.Confidence,
		Reasoning:               a.Reasoning,
		Rewrite:                 a.Rewrite,
		ModelRisk:               a.OverallRisk,
		Recommendation:          a.Recommendation,
		CategoryDetails:         a.Categories,
	}

	for _, name := range CategoryNames {
		score := a.RiskScore
		for _, c := range a.Categories {
			if strings.EqualFold(strings.TrimSpace(c.Name), name) {
				score = c.Score
				break
			}
		}
		*r.Categories.ptr(name) = score
	}
	return Normalize(r)
}
