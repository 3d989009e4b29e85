// Package output renders command results as coloured text or JSON.
package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	json "github.com/json-iterator/go"
	"github.com/zfogg/postcheck/internal/analysis"
	"github.com/zfogg/postcheck/internal/handlers"
	"github.com/zfogg/postcheck/internal/history"
	"github.com/zfogg/postcheck/internal/jurisdiction"
	"github.com/zfogg/postcheck/pkg/config"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatText OutputFormat = "text"
)

// Writer is where results go; tests swap it
var Writer io.Writer = color.Output

// GetOutputFormat returns the configured output format
func GetOutputFormat() OutputFormat {
	if config.GetString("output.format") == "json" {
		return FormatJSON
	}
	return FormatText
}

// ValidateOutputFormat checks if format is valid
func ValidateOutputFormat(format string) bool {
	return format == "json" || format == "text"
}

// PrintJSON writes data as indented JSON
func PrintJSON(data interface{}) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(Writer, string(out))
	return err
}

// VerdictColor picks the colour for a verdict
func VerdictColor(v analysis.Verdict) *color.Color {
	switch v {
	case analysis.VerdictSafe:
		return color.New(color.FgGreen, color.Bold)
	case analysis.VerdictCaution:
		return color.New(color.FgYellow, color.Bold)
	case analysis.VerdictHighRisk:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgHiRed, color.Bold, color.ReverseVideo)
	}
}

// PrintResult renders one analysis
func PrintResult(r *analysis.Result) error {
	if GetOutputFormat() == FormatJSON {
		return PrintJSON(r)
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	w := Writer

	fmt.Fprintf(w, "%s %s  ", bold.Sprint("Risk score:"), bold.Sprintf("%d/100", r.RiskScore))
	VerdictColor(r.Verdict).Fprintf(w, " %s ", r.Verdict)
	fmt.Fprintln(w)

	jur := r.Jurisdiction
	if r.JurisdictionFallback {
		jur += " (fallback)"
	}
	dim.Fprintf(w, "engine=%s jurisdiction=%s confidence=%d", r.Engine, jur, r.Confidence)
	if r.Platform != "" {
		dim.Fprintf(w, " platform=%s", r.Platform)
	}
	fmt.Fprintln(w)
	if r.Degraded {
		color.New(color.FgYellow).Fprintf(w, "Model unavailable (%s), showing local heuristic result\n", r.DegradedReason)
	}

	fmt.Fprintln(w)
	bold.Fprintln(w, "Categories")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range analysis.CategoryNames {
		score := r.Categories.Score(name)
		fmt.Fprintf(tw, "  %s\t%s\t%d\n", name, bar(score), score)
	}
	_ = tw.Flush()

	if len(r.LegalRisks) > 0 {
		fmt.Fprintln(w)
		bold.Fprintln(w, "Legal risks")
		for _, lr := range r.LegalRisks {
			color.New(color.FgRed).Fprintf(w, "  • %s", lr.Risk)
			fmt.Fprintf(w, ": %s\n", lr.Penalty)
		}
	}
	if len(r.CountrySpecificWarnings) > 0 {
		fmt.Fprintln(w)
		bold.Fprintln(w, "Warnings")
		for _, warn := range r.CountrySpecificWarnings {
			color.New(color.FgYellow).Fprintf(w, "  ! %s\n", warn)
		}
	}
	if len(r.Suggestions) > 0 {
		fmt.Fprintln(w)
		bold.Fprintln(w, "Suggestions")
		for _, s := range r.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	if r.Rewrite != "" {
		fmt.Fprintln(w)
		bold.Fprintln(w, "Suggested rewrite")
		color.New(color.FgCyan).Fprintf(w, "  %s\n", r.Rewrite)
	}
	if r.Reasoning != "" {
		fmt.Fprintln(w)
		dim.Fprintln(w, r.Reasoning)
	}
	return nil
}

// PrintJurisdictions renders the supported countries as a table
func PrintJurisdictions(defaultCode string, rows []handlers.JurisdictionSummary) error {
	if GetOutputFormat() == FormatJSON {
		return PrintJSON(handlers.JurisdictionList{Default: defaultCode, Jurisdictions: rows})
	}
	tw := tabwriter.NewWriter(Writer, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)
	bold.Fprintln(tw, "CODE\tNAME\tFREEDOM\tRISKS")
	for _, p := range rows {
		code := p.Code
		if code == defaultCode {
			code += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", code, p.Name, p.FreedomScore, p.RiskCount)
	}
	return tw.Flush()
}

// PrintProfile renders one jurisdiction in detail
func PrintProfile(p *jurisdiction.Profile) error {
	if GetOutputFormat() == FormatJSON {
		return PrintJSON(p)
	}
	bold := color.New(color.Bold)
	w := Writer
	bold.Fprintf(w, "%s (%s)\n", p.Name, p.Code)
	fmt.Fprintf(w, "Speech freedom score: %d/100\n\n", p.FreedomScore)
	bold.Fprintln(w, "Legal risks")
	for _, r := range p.Risks {
		fmt.Fprintf(w, "  • %s [%s]: %s\n", r.Category, severityColor(r.Severity).Sprint(r.Severity), r.Description)
		color.New(color.Faint).Fprintf(w, "    Penalty: %s\n", r.Penalty)
	}
	if len(p.CulturalNorms) > 0 {
		fmt.Fprintln(w)
		bold.Fprintln(w, "Cultural norms")
		for _, n := range p.CulturalNorms {
			fmt.Fprintf(w, "  - %s\n", n)
		}
	}
	return nil
}

// PrintHistory renders past analyses, newest first
func PrintHistory(records []history.Record) error {
	if GetOutputFormat() == FormatJSON {
		return PrintJSON(records)
	}
	if len(records) == 0 {
		PrintInfo("No analyses recorded yet")
		return nil
	}
	tw := tabwriter.NewWriter(Writer, 0, 0, 2, ' ', 0)
	color.New(color.Bold).Fprintln(tw, "WHEN\tCOUNTRY\tSCORE\tVERDICT\tPOST")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Jurisdiction,
			r.RiskScore,
			VerdictColor(r.Verdict).Sprint(r.Verdict),
			strings.ReplaceAll(r.Preview, "\n", " "),
		)
	}
	return tw.Flush()
}

func severityColor(s jurisdiction.Severity) *color.Color {
	switch s {
	case jurisdiction.SeverityCritical:
		return color.New(color.FgHiRed, color.Bold)
	case jurisdiction.SeverityHigh:
		return color.New(color.FgRed)
	case jurisdiction.SeverityMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

// bar draws a ten-cell meter for a 0-100 score
func bar(score int) string {
	filled := score / 10
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(Writer, msg+"\n", args...)
}

// PrintError prints an error message
func PrintError(msg string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(Writer, "Error: "+msg+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(Writer, msg+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(Writer, "Warning: "+msg+"\n", args...)
}
