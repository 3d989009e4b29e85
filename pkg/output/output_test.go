package output

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/postcheck/internal/analysis"
	"github.com/zfogg/postcheck/internal/handlers"
	"github.com/zfogg/postcheck/internal/history"
	"github.com/zfogg/postcheck/internal/jurisdiction"
	"github.com/zfogg/postcheck/pkg/config"
)

func capture(t *testing.T, format string) *bytes.Buffer {
	t.Helper()
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	config.Set("output.format", format)
	color.NoColor = true

	buf := &bytes.Buffer{}
	prev := Writer
	Writer = buf
	t.Cleanup(func() {
		Writer = prev
		config.Set("output.format", "text")
	})
	return buf
}

func sampleResult() *analysis.Result {
	r := analysis.Evaluate("I hate this stupid government and their rules", jurisdiction.Default().Get("DE"))
	r.Jurisdiction = "DE"
	r = analysis.Normalize(r)
	return &r
}

func TestValidateOutputFormat(t *testing.T) {
	assert.True(t, ValidateOutputFormat("json"))
	assert.True(t, ValidateOutputFormat("text"))
	assert.False(t, ValidateOutputFormat("table"))
}

func TestPrintResultText(t *testing.T) {
	buf := capture(t, "text")
	require.NoError(t, PrintResult(sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "40/100")
	assert.Contains(t, out, "HIGH RISK")
	assert.Contains(t, out, "jurisdiction=DE")
	assert.Contains(t, out, "Legal risks")
	assert.Contains(t, out, "Volksverhetzung")
	for _, name := range analysis.CategoryNames {
		assert.Contains(t, out, name)
	}
}

func TestPrintResultJSON(t *testing.T) {
	buf := capture(t, "json")
	require.NoError(t, PrintResult(sampleResult()))

	var decoded analysis.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 40, decoded.RiskScore)
	assert.Equal(t, analysis.VerdictHighRisk, decoded.Verdict)
}

func TestPrintJurisdictionsMarksDefault(t *testing.T) {
	buf := capture(t, "text")
	table := jurisdiction.Default()
	rows := []handlers.JurisdictionSummary{}
	for _, p := range table.All() {
		rows = append(rows, handlers.Summarize(p))
	}
	require.NoError(t, PrintJurisdictions(table.DefaultCode(), rows))

	assert.Contains(t, buf.String(), "US*")
	assert.Contains(t, buf.String(), "Germany")
}

func TestPrintProfile(t *testing.T) {
	buf := capture(t, "text")
	p := jurisdiction.Default().Get("JP")
	require.NoError(t, PrintProfile(&p))
	assert.Contains(t, buf.String(), "(JP)")
	assert.Contains(t, buf.String(), "Penalty:")
}

func TestPrintHistory(t *testing.T) {
	buf := capture(t, "text")
	require.NoError(t, PrintHistory(nil))
	assert.Contains(t, buf.String(), "No analyses recorded yet")

	buf.Reset()
	require.NoError(t, PrintHistory([]history.Record{{
		CreatedAt:    time.Now(),
		Preview:      "line one\nline two",
		Jurisdiction: "GB",
		RiskScore:    78,
		Verdict:      analysis.VerdictCaution,
	}}))
	out := buf.String()
	assert.Contains(t, out, "line one line two")
	assert.Contains(t, out, "CAUTION")
}

func TestBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("█", 4)+strings.Repeat("░", 6), bar(45))
	assert.Equal(t, strings.Repeat("░", 10), bar(0))
	assert.Equal(t, strings.Repeat("█", 10), bar(100))
}
