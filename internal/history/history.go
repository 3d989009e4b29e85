// Package history keeps a short per-caller log of past analyses. Records
// carry a preview and a digest of the post, never the full text.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zfogg/postcheck/internal/analysis"
	"github.com/zfogg/postcheck/internal/util"
)

// PreviewLength is the number of characters kept from the analysed post
const PreviewLength = 140

// Record is one stored analysis
type Record struct {
	ID           string           `json:"id"`
	CallerID     string           `json:"-"`
	CreatedAt    time.Time        `json:"created_at"`
	Preview      string           `json:"preview"`
	Digest       string           `json:"digest"`
	Jurisdiction string           `json:"jurisdiction"`
	Engine       analysis.Engine  `json:"engine"`
	Platform     string           `json:"platform,omitempty"`
	RiskScore    int              `json:"risk_score"`
	Verdict      analysis.Verdict `json:"verdict"`
	Degraded     bool             `json:"degraded"`
}

// NewRecord summarises result for callerID
func NewRecord(callerID, content string, result analysis.Result) Record {
	return Record{
		ID:           uuid.New().String(),
		CallerID:     callerID,
		CreatedAt:    time.Now().UTC(),
		Preview:      util.Preview(content, PreviewLength),
		Digest:       util.Digest(content),
		Jurisdiction: result.Jurisdiction,
		Engine:       result.Engine,
		Platform:     result.Platform,
		RiskScore:    result.RiskScore,
		Verdict:      result.Verdict,
		Degraded:     result.Degraded,
	}
}

// Store persists records per caller, newest first
type Store interface {
	Append(ctx context.Context, rec Record) error
	List(ctx context.Context, callerID string, limit int) ([]Record, error)
	Delete(ctx context.Context, callerID string) error
}
