package services

import (
	"fmt"
	"time"

	"github.com/epeers/bankmetrics/internal/models"
	"github.com/epeers/bankmetrics/internal/util"
)

const (
	DefaultStaleExcludeDays = 150
	DefaultStaleWarnDays    = 120
)

// RatioBound is an inclusive plausibility range for one ratio, in percent
type RatioBound struct {
	Metric string
	Min    float64
	Max    float64
	field  func(*models.Ratios) **float64
}

// QualityBounds is the plausibility table applied to every record
var QualityBounds = []RatioBound{
	{Metric: "efficiency_ratio", Min: 20, Max: 150, field: func(r *models.Ratios) **float64 { return &r.EfficiencyRatio }},
	{Metric: "return_on_equity", Min: -100, Max: 100, field: func(r *models.Ratios) **float64 { return &r.ReturnOnEquity }},
	{Metric: "return_on_average_assets", Min: -10, Max: 10, field: func(r *models.Ratios) **float64 { return &r.ReturnOnAverageAssets }},
	{Metric: "equity_to_assets", Min: 1, Max: 50, field: func(r *models.Ratios) **float64 { return &r.EquityToAssets }},
	{Metric: "deposits_to_assets", Min: 10, Max: 100, field: func(r *models.Ratios) **float64 { return &r.DepositsToAssets }},
	{Metric: "loans_to_deposits", Min: 0, Max: 250, field: func(r *models.Ratios) **float64 { return &r.LoansToDeposits }},
}

// ApplyQualityBounds nulls every ratio outside its bound and returns one flag per nulled ratio.
// The record itself is always kept.
func ApplyQualityBounds(ratios *models.Ratios) []models.QualityFlag {
	var flags []models.QualityFlag
	for _, b := range QualityBounds {
		p := b.field(ratios)
		if *p == nil {
			continue
		}
		v := **p
		if v >= b.Min && v <= b.Max {
			continue
		}
		*p = nil
		flags = append(flags, models.QualityFlag{
			Code:    models.FlagOutOfBounds,
			Metric:  b.Metric,
			Message: fmt.Sprintf("%s of %.2f%% is outside the plausible range [%g, %g]", b.Metric, v, b.Min, b.Max),
		})
	}
	return flags
}

// StalenessPolicy decides which records are too old to publish or worth marking
type StalenessPolicy struct {
	ExcludeAfterDays int
	WarnAfterDays    int
}

// DefaultStalenessPolicy excludes after 150 days and marks after 120
func DefaultStalenessPolicy() StalenessPolicy {
	return StalenessPolicy{ExcludeAfterDays: DefaultStaleExcludeDays, WarnAfterDays: DefaultStaleWarnDays}
}

// IsStale reports whether a record must be dropped: no reference date, or one older than the
// exclusion threshold relative to now.
func (p StalenessPolicy) IsStale(ref *models.Date, now time.Time) bool {
	if ref == nil || ref.IsZero() {
		return true
	}
	return util.DaysBetween(ref.Time, now) > p.ExcludeAfterDays
}

// NeedsWarning reports whether a retained record is old enough to be marked stale
func (p StalenessPolicy) NeedsWarning(ref *models.Date, now time.Time) bool {
	if ref == nil || ref.IsZero() {
		return true
	}
	return util.DaysBetween(ref.Time, now) > p.WarnAfterDays
}
