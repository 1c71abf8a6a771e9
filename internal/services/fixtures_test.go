package services

import (
	"time"

	"github.com/epeers/bankmetrics/internal/edgar"
	"github.com/epeers/bankmetrics/internal/models"
)

func date(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func utc(s string) time.Time {
	return date(s).Time
}

// balanceFact builds a us-gaap USD instant fact from a 10-Q filed 40 days after period end
func balanceFact(concept, end string, value float64) models.RawFact {
	e := date(end)
	return models.RawFact{
		Namespace:    nsGAAP,
		Concept:      concept,
		Unit:         unitUSD,
		Value:        value,
		End:          e,
		Form:         models.FormQuarterly,
		FiscalYear:   e.Year(),
		FiscalPeriod: "Q",
		Filed:        models.Date{Time: e.AddDate(0, 0, 40)},
		Accession:    "0000000000-" + end,
	}
}

// flowFact builds a us-gaap USD duration fact
func flowFact(concept, start, end string, value float64, form models.Form, fy int, fp string) models.RawFact {
	s, e := date(start), date(end)
	return models.RawFact{
		Namespace:    nsGAAP,
		Concept:      concept,
		Unit:         unitUSD,
		Value:        value,
		End:          e,
		Start:        &s,
		Form:         form,
		FiscalYear:   fy,
		FiscalPeriod: fp,
		Filed:        models.Date{Time: e.AddDate(0, 0, 45)},
		Accession:    "0000000001-" + end + "-" + fp,
	}
}

func quarterFact(concept, start, end string, value float64, fy int, fp string) models.RawFact {
	return flowFact(concept, start, end, value, models.FormQuarterly, fy, fp)
}

func annualFact(concept string, fy int, value float64) models.RawFact {
	return flowFact(concept,
		time.Date(fy, time.January, 1, 0, 0, 0, 0, time.UTC).Format(models.DateLayout),
		time.Date(fy, time.December, 31, 0, 0, 0, 0, time.UTC).Format(models.DateLayout),
		value, models.FormAnnual, fy, "FY")
}

// seriesOf wraps facts in a series sorted the way the parser sorts them
func seriesOf(facts ...models.RawFact) *models.ConceptSeries {
	out := &models.ConceptSeries{Facts: append([]models.RawFact(nil), facts...)}
	if len(facts) > 0 {
		out.Namespace, out.Concept, out.Unit = facts[0].Namespace, facts[0].Concept, facts[0].Unit
	}
	edgar.SortFacts(out.Facts)
	return out
}

// newDoc groups facts into series by namespace/concept/unit
func newDoc(name string, facts ...models.RawFact) *models.CompanyFacts {
	doc := &models.CompanyFacts{EntityName: name, Series: make(map[models.ConceptKey]*models.ConceptSeries)}
	for _, f := range facts {
		key := models.ConceptKey{Namespace: f.Namespace, Concept: f.Concept, Unit: f.Unit}
		s, ok := doc.Series[key]
		if !ok {
			s = &models.ConceptSeries{Namespace: f.Namespace, Concept: f.Concept, Unit: f.Unit}
			doc.Series[key] = s
		}
		s.Facts = append(s.Facts, f)
	}
	for _, s := range doc.Series {
		edgar.SortFacts(s.Facts)
	}
	return doc
}

// sampleBankFacts is a calendar-year bank with five quarter-ends of balances through 2024-12-31
// and 2024 net income reported as Q1-Q3 plus the full year.
//
//	common equity = 1200 - 200 preferred = 1000, shares 100 -> book value per share 10.00
//	average equity = (1200 + 4*950) / 5 = 1000, TTM net income 150 -> ROE 15.0
func sampleBankFacts() []models.RawFact {
	quarterEnds := []string{"2023-12-31", "2024-03-31", "2024-06-30", "2024-09-30", "2024-12-31"}
	var facts []models.RawFact
	for _, end := range quarterEnds {
		facts = append(facts, balanceFact("Assets", end, 10000))
		equity := 950.0
		if end == "2024-12-31" {
			equity = 1200
		}
		facts = append(facts, balanceFact("StockholdersEquity", end, equity))
	}

	shares := balanceFact("EntityCommonStockSharesOutstanding", "2025-01-31", 100)
	shares.Namespace = nsDEI
	shares.Unit = unitShares

	facts = append(facts,
		balanceFact("PreferredStockValue", "2024-12-31", 200),
		balanceFact("Deposits", "2024-12-31", 8000),
		balanceFact("LoansAndLeasesReceivableNetReportedAmount", "2024-12-31", 6000),
		shares,
		quarterFact("NetIncomeLoss", "2024-01-01", "2024-03-31", 35, 2024, "Q1"),
		quarterFact("NetIncomeLoss", "2024-04-01", "2024-06-30", 35, 2024, "Q2"),
		quarterFact("NetIncomeLoss", "2024-07-01", "2024-09-30", 35, 2024, "Q3"),
		flowFact("NetIncomeLoss", "2024-01-01", "2024-06-30", 70, models.FormQuarterly, 2024, "Q2"),
		annualFact("NetIncomeLoss", 2024, 150),
		annualFact("NetIncomeLoss", 2023, 120),
	)
	return facts
}

func sampleBankDoc() *models.CompanyFacts {
	return newDoc("Sample Bancorp", sampleBankFacts()...)
}

// staleBankDoc only reports balances through 2023-12-31
func staleBankDoc() *models.CompanyFacts {
	return newDoc("Dormant Savings",
		balanceFact("Assets", "2023-12-31", 5000),
		balanceFact("StockholdersEquity", "2023-12-31", 500),
	)
}

// sampleNow is 46 days after the sample bank's reference date
var sampleNow = time.Date(2025, time.February, 15, 12, 0, 0, 0, time.UTC)
