package analysis

import (
	"fmt"
	"strings"

	"github.com/zfogg/postcheck/internal/jurisdiction"
)

const systemPrompt = "You are a content risk analyst. You assess social media posts for legal, career, " +
	"reputational and privacy risk before they are published. Respond with a single JSON object and nothing else."

// buildPrompt renders the fixed JSON contract the model must answer with
func buildPrompt(content, platform string, profile jurisdiction.Profile) string {
	var b strings.Builder

	b.WriteString("Analyze the following post")
	if platform != "" {
		fmt.Fprintf(&b, " intended for %s", platform)
	}
	fmt.Fprintf(&b, " for a user in %s (%s).\n\n", profile.Name, profile.Code)

	fmt.Fprintf(&b, "Speech freedom score for %s: %d/100.\n", profile.Code, profile.FreedomScore)
	if len(profile.Risks) > 0 {
		b.WriteString("Known legal risks in this jurisdiction:\n")
		for _, r := range profile.Risks {
			fmt.Fprintf(&b, "- %s (%s): %s Penalty: %s\n", r.Category, r.Severity, r.Description, r.Penalty)
		}
	}
	if len(profile.CulturalNorms) > 0 {
		b.WriteString("Cultural norms:\n")
		for _, n := range profile.CulturalNorms {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}

	b.WriteString("\nPost:\n\"\"\"\n")
	b.WriteString(content)
	b.WriteString("\n\"\"\"\n\n")

	b.WriteString(`Respond with JSON in exactly this shape:
{
  "overall_risk": "none|low|medium|high",
  "risk_score": 0-100 where 100 means completely safe,
  "categories": [
    {"name": "legal|career|reputation|cultural|privacy|misinformation", "score": 0-100, "severity": "low|medium|high", "description": "short explanation"}
  ],
  "legal_risks": [{"risk": "law or offence", "penalty": "possible penalty"}],
  "country_warnings": ["jurisdiction specific warning"],
  "suggestions": ["concrete improvement"],
  "rewritten_version": "safer version of the post, or empty",
  "confidence": 0-100,
  "recommendation": "safe|revise|danger",
  "reasoning": "one or two sentences"
}`)
	return b.String()
}
