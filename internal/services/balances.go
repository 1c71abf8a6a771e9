package services

import (
	"fmt"

	"github.com/epeers/bankmetrics/internal/models"
)

// maxAveragePeriods follows the regulatory five-point averaging convention
// (current quarter-end plus the four before it).
const maxAveragePeriods = 5

// ResolveLatest returns the most recent point-in-time fact of a series, or nil
func ResolveLatest(catalog *ConceptCatalog, series *models.ConceptSeries) (*models.PointInTime, *models.RawFact) {
	if series == nil {
		return nil, nil
	}
	instants := factsOfLength(catalog, series.Facts, models.PeriodInstant)
	if len(instants) == 0 {
		return nil, nil
	}
	f := instants[0]
	return &models.PointInTime{Value: f.Value, Date: f.End, Form: f.Form}, &f
}

// ResolveAverage averages up to the five most recent point-in-time values.
// A period end reported in several filings counts once, using the latest filing.
// Returns the facts used, newest first.
func ResolveAverage(catalog *ConceptCatalog, series *models.ConceptSeries) (*models.Average, []models.RawFact) {
	if series == nil {
		return nil, nil
	}
	used := distinctPeriodEnds(factsOfLength(catalog, series.Facts, models.PeriodInstant), maxAveragePeriods)
	if len(used) == 0 {
		return nil, nil
	}

	ending := used[0]
	if len(used) == 1 {
		return &models.Average{
			Average:    ending.Value,
			Ending:     ending.Value,
			EndingDate: ending.End,
			Method:     models.AverageSinglePeriod,
			Periods:    1,
		}, used
	}

	var sum float64
	for _, f := range used {
		sum += f.Value
	}
	beginning := used[len(used)-1].End
	return &models.Average{
		Average:       sum / float64(len(used)),
		Ending:        ending.Value,
		EndingDate:    ending.End,
		BeginningDate: &beginning,
		Method:        models.AverageMethod(fmt.Sprintf("%d-point-avg", len(used))),
		Periods:       len(used),
	}, used
}

// distinctPeriodEnds keeps the first fact per end date from a series sorted newest first
func distinctPeriodEnds(facts []models.RawFact, limit int) []models.RawFact {
	var out []models.RawFact
	seen := make(map[string]bool)
	for _, f := range facts {
		key := f.End.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
		if len(out) == limit {
			break
		}
	}
	return out
}
