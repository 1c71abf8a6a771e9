package services

import (
	"time"

	"github.com/epeers/bankmetrics/internal/models"
	"github.com/epeers/bankmetrics/internal/util"
)

// annualFallbackWindowMonths bounds how far an annual figure's period end may sit from the
// reference date and still stand in for a TTM. The value is inherited, not derived.
const annualFallbackWindowMonths = 6

// AssembleTTM builds a trailing-twelve-month figure for a flow series anchored at ref.
// Four matched quarters are summed; a missing December quarter is derived from the annual
// figure; otherwise the latest suitable annual figure is used; otherwise nil.
// A filer that changed fiscal year end will usually fail quarter matching and land on the
// annual fallback or nil, never on a guessed quarter.
func AssembleTTM(catalog *ConceptCatalog, series *models.ConceptSeries, ref time.Time) *models.TTM {
	if series == nil || ref.IsZero() {
		return nil
	}

	quarters := factsOfLength(catalog, series.Facts, models.PeriodQuarter)
	annuals := factsOfLength(catalog, series.Facts, models.PeriodAnnual)
	expected := util.QuarterEndsOnOrBefore(ref, 4)

	matched := make([]*models.ContributingFact, len(expected))
	found, missing := 0, -1
	for i, qe := range expected {
		if f := findQuarter(quarters, qe); f != nil {
			matched[i] = &models.ContributingFact{RawFact: *f}
			found++
		} else {
			missing = i
		}
	}

	if found == len(expected) {
		return sumQuarters(matched)
	}

	if found == len(expected)-1 && expected[missing].Month() == time.December {
		if q4 := deriveQ4(quarters, annuals, expected[missing].Year()); q4 != nil {
			matched[missing] = q4
			return sumQuarters(matched)
		}
	}

	return annualFallback(quarters, annuals, ref)
}

// findQuarter returns the newest-filed quarterly fact ending in the same month as quarterEnd
func findQuarter(quarters []models.RawFact, quarterEnd time.Time) *models.RawFact {
	for i := range quarters {
		if util.SameYearMonth(quarters[i].End.Time, quarterEnd) {
			return &quarters[i]
		}
	}
	return nil
}

// deriveQ4 computes Q4 = FY − (Q1+Q2+Q3) for a calendar fiscal year.
// Assumes the quarters and the annual figure are on the same, unrestated basis; a restatement
// of Q1–Q3 after the annual filing makes the derived value wrong and nothing here detects it.
func deriveQ4(quarters, annuals []models.RawFact, year int) *models.ContributingFact {
	var annual *models.RawFact
	for i := range annuals {
		a := annuals[i]
		if a.FiscalYear == year && a.End.Month() == time.December && a.End.Year() == year {
			annual = &annuals[i]
			break
		}
	}
	if annual == nil {
		return nil
	}

	var sum float64
	for _, month := range []time.Month{time.March, time.June, time.September} {
		q := findQuarter(quarters, time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
		if q == nil {
			return nil
		}
		sum += q.Value
	}

	start := models.NewDate(year, time.October, 1)
	derived := *annual
	derived.Value = annual.Value - sum
	derived.Start = &start
	derived.FiscalPeriod = "Q4"
	return &models.ContributingFact{RawFact: derived, Derived: true}
}

func sumQuarters(matched []*models.ContributingFact) *models.TTM {
	ttm := &models.TTM{Method: models.TTMSumFourQuarters}
	for _, f := range matched {
		ttm.Value += f.Value
		if f.End.After(ttm.AnchorDate.Time) {
			ttm.AnchorDate = f.End
		}
		ttm.Facts = append(ttm.Facts, *f)
	}
	return ttm
}

func annualFallback(quarters, annuals []models.RawFact, ref time.Time) *models.TTM {
	method := models.TTMAnnualFallback
	if len(quarters) == 0 {
		method = models.TTMAnnual
	}

	for _, fy := range targetFiscalYears(ref) {
		for _, a := range annuals {
			if a.FiscalYear != fy {
				continue
			}
			// Annuals are newest first, so this is the primary period of that fiscal year.
			// A year closing after ref covers months the record does not reach yet.
			if a.End.After(ref) || !util.WithinMonths(a.End.Time, ref, annualFallbackWindowMonths) {
				break
			}
			return &models.TTM{
				Value:      a.Value,
				AnchorDate: a.End,
				Method:     method,
				Facts:      []models.ContributingFact{{RawFact: a}},
			}
		}
	}
	return nil
}

// targetFiscalYears lists the fiscal years whose annual figure may cover ref, in preference
// order. From October on the current fiscal year has usually closed for non-calendar filers;
// earlier in the year the previous one is the latest complete year for calendar filers.
func targetFiscalYears(ref time.Time) []int {
	if ref.Month() >= time.October {
		return []int{ref.Year()}
	}
	return []int{ref.Year(), ref.Year() - 1}
}
