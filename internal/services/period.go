package services

import (
	"github.com/epeers/bankmetrics/internal/models"
	"github.com/epeers/bankmetrics/internal/util"
)

// Duration cutoffs in days. These approximate fiscal quarter/half/nine-month/year spans and
// ignore leap years and 52/53-week fiscal calendars. Historical output depends on the exact
// values; replace with explicit fiscal-period metadata only together with a data migration.
const (
	maxQuarterDays    = 100
	maxHalfYearDays   = 200
	maxNineMonthsDays = 300
)

// ClassifyPeriod returns the temporal shape of a fact.
// Balance-style concepts are always point-in-time, whatever start date the filer attached.
func ClassifyPeriod(catalog *ConceptCatalog, fact models.RawFact) models.PeriodLength {
	if catalog.IsBalanceConcept(fact.Namespace, fact.Concept) {
		return models.PeriodInstant
	}
	if fact.Start == nil {
		return models.PeriodInstant
	}
	if fact.Start.After(fact.End.Time) {
		return models.PeriodInvalid
	}
	return classifyDays(util.DaysBetween(fact.Start.Time, fact.End.Time))
}

func classifyDays(days int) models.PeriodLength {
	switch {
	case days <= maxQuarterDays:
		return models.PeriodQuarter
	case days <= maxHalfYearDays:
		return models.PeriodHalfYear
	case days <= maxNineMonthsDays:
		return models.PeriodNineMonths
	default:
		return models.PeriodAnnual
	}
}

// factsOfLength filters a series to one period length, keeping series order
func factsOfLength(catalog *ConceptCatalog, facts []models.RawFact, length models.PeriodLength) []models.RawFact {
	var out []models.RawFact
	for _, f := range facts {
		if !f.Form.Accepted() {
			continue
		}
		if ClassifyPeriod(catalog, f) == length {
			out = append(out, f)
		}
	}
	return out
}
