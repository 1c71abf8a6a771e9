package models

import "time"

// RunSummary reports what a pipeline run did, so an operator can judge whether to publish it
type RunSummary struct {
	RunID          string    `json:"run_id"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Listings       int       `json:"listings"`
	Processed      int       `json:"processed"`
	Succeeded      int       `json:"succeeded"`
	NotFound       int       `json:"not_found"`
	QualityFlagged int       `json:"quality_flagged"`
	StaleExcluded  int       `json:"stale_excluded"`
	Errored        int       `json:"errored"`
	Cancelled      int       `json:"cancelled"`
	Warnings       []Warning `json:"warnings,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// EntityListItem is the compact form of a record returned by the list endpoint
type EntityListItem struct {
	CIK             string   `json:"cik"`
	Symbol          string   `json:"symbol"`
	Name            string   `json:"name"`
	Exchange        string   `json:"exchange"`
	ReferenceDate   *Date    `json:"reference_date"`
	ReturnOnEquity  *float64 `json:"return_on_equity"`
	EfficiencyRatio *float64 `json:"efficiency_ratio"`
	Flagged         bool     `json:"flagged"`
}
