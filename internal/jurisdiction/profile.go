// Package jurisdiction holds the per-country legal and cultural risk profiles
// that parameterize content scoring.
package jurisdiction

import "fmt"

// Severity ranks how serious a legal risk is
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the known severities
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// LegalRisk is one category of speech a jurisdiction restricts
type LegalRisk struct {
	Category    string   `yaml:"category" json:"category"`
	Description string   `yaml:"description" json:"description"`
	Severity    Severity `yaml:"severity" json:"severity"`
	Penalty     string   `yaml:"penalty" json:"penalty"`
}

// Profile is the legal and cultural context for one country.
// FreedomScore is 0-100, higher meaning fewer speech restrictions.
type Profile struct {
	Code          string      `yaml:"code" json:"code"`
	Name          string      `yaml:"name" json:"name"`
	FreedomScore  int         `yaml:"freedom_score" json:"freedom_score"`
	Risks         []LegalRisk `yaml:"risks" json:"risks"`
	CulturalNorms []string    `yaml:"cultural_norms" json:"cultural_norms"`
}

func (p Profile) validate() error {
	if len(p.Code) == 0 {
		return fmt.Errorf("profile %q has no code", p.Name)
	}
	if p.FreedomScore < 0 || p.FreedomScore > 100 {
		return fmt.Errorf("profile %s: freedom_score %d outside 0-100", p.Code, p.FreedomScore)
	}
	for i, r := range p.Risks {
		if r.Category == "" {
			return fmt.Errorf("profile %s: risk %d has no category", p.Code, i)
		}
		if !r.Severity.Valid() {
			return fmt.Errorf("profile %s: risk %q has unknown severity %q", p.Code, r.Category, r.Severity)
		}
	}
	return nil
}

// clone returns a deep copy so callers can't mutate the shared table
func (p Profile) clone() Profile {
	out := p
	out.Risks = append([]LegalRisk(nil), p.Risks...)
	out.CulturalNorms = append([]string(nil), p.CulturalNorms...)
	return out
}
