package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// IdentityListing is one row of the identity list produced by entity discovery.
// Several listings may share a CIK (common shares plus preferred classes).
type IdentityListing struct {
	CIK            string `json:"cik"`
	Name           string `json:"name"`
	Ticker         string `json:"ticker"`
	SIC            string `json:"sic"`
	SICDescription string `json:"sic_description"`
	Exchange       string `json:"exchange"`
	Tier           string `json:"tier"`
}

// UnmarshalJSON accepts the CIK either as a string or as a bare integer
func (l *IdentityListing) UnmarshalJSON(b []byte) error {
	type listing IdentityListing
	aux := struct {
		*listing
		CIK json.RawMessage `json:"cik"`
	}{listing: (*listing)(l)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.CIK)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		l.CIK = ""
	case raw[0] == '"':
		return json.Unmarshal(raw, &l.CIK)
	default:
		n, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid cik %s", raw)
		}
		l.CIK = strconv.FormatInt(n, 10)
	}
	return nil
}

// Identity is the deduplicated, canonical identity of one entity
type Identity struct {
	CIK            string   `json:"cik"`
	Symbol         string   `json:"symbol"`
	Name           string   `json:"name"`
	Exchange       string   `json:"exchange"`
	Tier           string   `json:"tier,omitempty"`
	SIC            string   `json:"sic"`
	SICDescription string   `json:"sic_description"`
	OtherSymbols   []string `json:"other_symbols,omitempty"`
}

// PointInTime is a resolved balance as of one date
type PointInTime struct {
	Value float64 `json:"value"`
	Date  Date    `json:"date"`
	Form  Form    `json:"form"`
}

// AverageMethod tags how an Average was computed
type AverageMethod string

const AverageSinglePeriod AverageMethod = "single-period"

// Average is a multi-period average of a balance
type Average struct {
	Average       float64       `json:"average"`
	Ending        float64       `json:"ending"`
	EndingDate    Date          `json:"ending_date"`
	BeginningDate *Date         `json:"beginning_date,omitempty"`
	Method        AverageMethod `json:"method"`
	Periods       int           `json:"periods"`
}

// TTMMethod tags how a trailing-twelve-month figure was assembled
type TTMMethod string

const (
	TTMSumFourQuarters TTMMethod = "sum-4Q"
	TTMAnnual          TTMMethod = "annual"
	TTMAnnualFallback  TTMMethod = "annual-fallback"
)

// ContributingFact is a fact used in a TTM, marked when it was derived rather than reported
type ContributingFact struct {
	RawFact
	Derived bool `json:"derived"`
}

// TTM is a trailing-twelve-month flow figure pinned to an anchor date
type TTM struct {
	Value      float64            `json:"value"`
	AnchorDate Date               `json:"anchor_date"`
	Method     TTMMethod          `json:"method"`
	Facts      []ContributingFact `json:"-"`
}

// Balances are the resolved point-in-time figures of an entity
type Balances struct {
	TotalAssets       *PointInTime `json:"total_assets"`
	AverageAssets     *Average     `json:"average_assets"`
	TotalEquity       *PointInTime `json:"total_equity"`
	AverageEquity     *Average     `json:"average_equity"`
	PreferredStock    *PointInTime `json:"preferred_stock"`
	TotalDeposits     *PointInTime `json:"total_deposits"`
	TotalLoans        *PointInTime `json:"total_loans"`
	SharesOutstanding *PointInTime `json:"shares_outstanding"`
}

// Flows are the resolved TTM figures of an entity
type Flows struct {
	NetIncome          *TTM `json:"net_income"`
	NetIncomeToCommon  *TTM `json:"net_income_to_common"`
	PreferredDividends *TTM `json:"preferred_dividends"`
	NetInterestIncome  *TTM `json:"net_interest_income"`
	NoninterestIncome  *TTM `json:"noninterest_income"`
	NoninterestExpense *TTM `json:"noninterest_expense"`
	EPS                *TTM `json:"eps"`
	DividendsPerShare  *TTM `json:"dividends_per_share"`
}

// Ratios are the derived figures of an entity. A nil ratio means it could not be computed
// or failed a plausibility bound.
type Ratios struct {
	CommonEquity           *float64 `json:"common_equity"`
	BookValuePerShare      *float64 `json:"book_value_per_share"`
	NetIncomeToCommon      *float64 `json:"net_income_to_common"`
	ReturnOnEquity         *float64 `json:"return_on_equity"`
	ReturnOnAverageAssets  *float64 `json:"return_on_average_assets"`
	TotalRevenue           *float64 `json:"total_revenue"`
	EfficiencyRatio        *float64 `json:"efficiency_ratio"`
	DepositsToAssets       *float64 `json:"deposits_to_assets"`
	EquityToAssets         *float64 `json:"equity_to_assets"`
	LoansToAssets          *float64 `json:"loans_to_assets"`
	LoansToDeposits        *float64 `json:"loans_to_deposits"`
	IntrinsicValueEstimate *float64 `json:"intrinsic_value_estimate"`
	PayoutRatio            *float64 `json:"payout_ratio"`
}

// EntityRecord is the published per-entity output of one pipeline run
type EntityRecord struct {
	Identity
	Balances      Balances      `json:"balances"`
	Flows         Flows         `json:"flows"`
	Ratios        Ratios        `json:"ratios"`
	QualityFlags  []QualityFlag `json:"quality_flags"`
	ReferenceDate *Date         `json:"reference_date"`
	Stale         bool          `json:"stale"`
	LastUpdated   time.Time     `json:"last_updated"`
}

// AuditEntry records which raw facts produced one resolved metric
type AuditEntry struct {
	Namespace string             `json:"namespace"`
	Concept   string             `json:"concept"`
	Unit      string             `json:"unit"`
	Method    string             `json:"method"`
	Facts     []ContributingFact `json:"facts"`
}

// EntityAudit maps metric name to its audit entry
type EntityAudit map[string]AuditEntry
