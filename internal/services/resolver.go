package services

import (
	"github.com/epeers/bankmetrics/internal/models"
)

// ResolvedSeries is the series chosen for a metric, already filtered to accepted forms
type ResolvedSeries struct {
	Metric string
	Alias  Alias
	Series *models.ConceptSeries
}

// ResolveConcept returns the first alias of metric whose series has at least one fact from an
// accepted filing type. The chosen alias is used exclusively; series are never merged.
// A metric with no usable alias is simply missing (ok == false).
func ResolveConcept(doc *models.CompanyFacts, metric Metric) (*ResolvedSeries, bool) {
	for _, alias := range metric.Aliases {
		series := doc.Lookup(alias.key())
		if series == nil {
			continue
		}
		filtered := filterAccepted(series)
		if len(filtered.Facts) == 0 {
			continue
		}
		return &ResolvedSeries{Metric: metric.Name, Alias: alias, Series: filtered}, true
	}
	return nil, false
}

func filterAccepted(series *models.ConceptSeries) *models.ConceptSeries {
	out := &models.ConceptSeries{
		Namespace: series.Namespace,
		Concept:   series.Concept,
		Unit:      series.Unit,
	}
	for _, f := range series.Facts {
		if f.Form.Accepted() {
			out.Facts = append(out.Facts, f)
		}
	}
	return out
}
