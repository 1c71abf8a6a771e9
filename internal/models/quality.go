package models

// WarningCode categorizes warnings by subsystem.
// Q1xxx = data quality flags on records, W5xxx = pipeline warnings.
type WarningCode string

const (
	FlagOutOfBounds            WarningCode = "Q1001" // ratio outside plausibility bounds, nulled
	FlagNetIncomeToCommonRange WarningCode = "Q1002" // computed net income to common exceeded net income, nulled

	WarnEntityNotFound   WarningCode = "W5001" // remote or archive has no facts for the CIK
	WarnFetchFailed      WarningCode = "W5002" // network, timeout or non-success status
	WarnParseFailed      WarningCode = "W5003" // malformed facts document
	WarnStaleExcluded    WarningCode = "W5004" // reference date missing or too old, dropped
	WarnEntityCancelled  WarningCode = "W5005" // run deadline or signal hit before the entity ran
	WarnDuplicateListing WarningCode = "W5006" // several tickers share one CIK
)

// QualityFlag explains why a value on a record was nulled
type QualityFlag struct {
	Code    WarningCode `json:"code"`
	Metric  string      `json:"metric"`
	Message string      `json:"message"`
}

// Warning represents a non-fatal issue encountered during processing.
type Warning struct {
	Code    WarningCode `json:"code"`
	CIK     string      `json:"cik,omitempty"`
	Message string      `json:"message"`
}
