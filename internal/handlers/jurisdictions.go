package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/postcheck/internal/jurisdiction"
	"github.com/zfogg/postcheck/internal/util"
)

// JurisdictionSummary is one row of the jurisdiction list
type JurisdictionSummary struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	FreedomScore int    `json:"freedom_score"`
	RiskCount    int    `json:"risk_count"`
}

// JurisdictionList is the body of GET /api/v1/jurisdictions
type JurisdictionList struct {
	Default       string                `json:"default"`
	Jurisdictions []JurisdictionSummary `json:"jurisdictions"`
}

// ListJurisdictions lists every supported country
// GET /api/v1/jurisdictions
func (h *Handlers) ListJurisdictions(c *gin.Context) {
	table := h.service.Table()
	list := JurisdictionList{Default: table.DefaultCode()}
	for _, p := range table.All() {
		list.Jurisdictions = append(list.Jurisdictions, Summarize(p))
	}
	util.RespondOK(c, list)
}

// GetJurisdiction returns the full profile for a code
// GET /api/v1/jurisdictions/:code
func (h *Handlers) GetJurisdiction(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	profile, ok := h.service.Table().Lookup(code)
	if !ok {
		util.RespondNotFound(c, "jurisdiction "+code)
		return
	}
	util.RespondOK(c, profile)
}

// Summarize reduces a profile to its list row
func Summarize(p jurisdiction.Profile) JurisdictionSummary {
	return JurisdictionSummary{
		Code:         p.Code,
		Name:         p.Name,
		FreedomScore: p.FreedomScore,
		RiskCount:    len(p.Risks),
	}
}
