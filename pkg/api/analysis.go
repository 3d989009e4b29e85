package api

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/zfogg/postcheck/internal/analysis"
	"github.com/zfogg/postcheck/internal/handlers"
	"github.com/zfogg/postcheck/internal/history"
	"github.com/zfogg/postcheck/internal/jurisdiction"
	"github.com/zfogg/postcheck/pkg/client"
	"github.com/zfogg/postcheck/pkg/logger"
)

// AnalyzeRequest is re-exported for callers of this package
type AnalyzeRequest = handlers.AnalyzeRequest

// Analyze scores one post on the server
func Analyze(req AnalyzeRequest) (*analysis.Result, error) {
	logger.Debug("Analyzing post", "country", req.Country, "engine", req.Engine, "length", len(req.Content))

	resp, err := client.GetClient().R().
		SetBody(req).
		Post("/api/v1/analyze")
	if err != nil {
		return nil, fmt.Errorf("failed to analyze post: %w", err)
	}

	var result analysis.Result
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalyzeBatch scores several posts in one call
func AnalyzeBatch(items []AnalyzeRequest) ([]analysis.Result, error) {
	resp, err := client.GetClient().R().
		SetBody(handlers.BatchRequest{Items: items}).
		Post("/api/v1/analyze/batch")
	if err != nil {
		return nil, fmt.Errorf("failed to analyze batch: %w", err)
	}

	var out handlers.BatchResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// ListJurisdictions lists supported countries
func ListJurisdictions() (*handlers.JurisdictionList, error) {
	resp, err := client.GetClient().R().Get("/api/v1/jurisdictions")
	if err != nil {
		return nil, fmt.Errorf("failed to list jurisdictions: %w", err)
	}

	var list handlers.JurisdictionList
	if err := decode(resp, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetJurisdiction fetches one profile
func GetJurisdiction(code string) (*jurisdiction.Profile, error) {
	resp, err := client.GetClient().R().Get("/api/v1/jurisdictions/" + url.PathEscape(code))
	if err != nil {
		return nil, fmt.Errorf("failed to get jurisdiction: %w", err)
	}

	var profile jurisdiction.Profile
	if err := decode(resp, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetHistory returns the caller's recent analyses
func GetHistory(limit int) ([]history.Record, error) {
	resp, err := client.GetClient().R().
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/api/v1/history")
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	var out handlers.HistoryResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}

// ClearHistory erases the caller's history
func ClearHistory() error {
	resp, err := client.GetClient().R().Delete("/api/v1/history")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return decode(resp, nil)
}
