package services

import (
	"time"

	"github.com/epeers/bankmetrics/internal/models"
)

// Audit keys for the averages, which share series with total_assets / total_equity
const (
	auditAverageAssets = "average_assets"
	auditAverageEquity = "average_equity"
)

// BuildRecord resolves every metric of one entity's facts document and derives its ratios.
// It is pure: the same document, identity and now always give the same record.
// excluded is true when the staleness policy drops the entity; the record is then incomplete
// and must not be published.
func BuildRecord(
	catalog *ConceptCatalog,
	ident models.Identity,
	doc *models.CompanyFacts,
	now time.Time,
	policy StalenessPolicy,
) (record models.EntityRecord, audit models.EntityAudit, excluded bool) {
	record = models.EntityRecord{
		Identity:     ident,
		QualityFlags: []models.QualityFlag{},
		LastUpdated:  now.UTC(),
	}
	if record.Name == "" {
		record.Name = doc.EntityName
	}
	audit = models.EntityAudit{}

	resolved := make(map[string]*ResolvedSeries)
	for _, m := range catalog.Metrics() {
		if rs, ok := ResolveConcept(doc, m); ok {
			resolved[m.Name] = rs
		}
	}

	// Balances first: the reference date pins every TTM
	for _, m := range catalog.Metrics() {
		rs := resolved[m.Name]
		if m.Kind != KindBalance || rs == nil {
			continue
		}
		pit, fact := ResolveLatest(catalog, rs.Series)
		if pit == nil {
			continue
		}
		setBalance(&record.Balances, m.Name, pit)
		audit[m.Name] = auditEntry(rs, "latest", []models.RawFact{*fact})
	}

	if rs := resolved[MetricTotalAssets]; rs != nil {
		if avg, used := ResolveAverage(catalog, rs.Series); avg != nil {
			record.Balances.AverageAssets = avg
			audit[auditAverageAssets] = auditEntry(rs, string(avg.Method), used)
		}
	}
	if rs := resolved[MetricTotalEquity]; rs != nil {
		if avg, used := ResolveAverage(catalog, rs.Series); avg != nil {
			record.Balances.AverageEquity = avg
			audit[auditAverageEquity] = auditEntry(rs, string(avg.Method), used)
		}
	}

	if record.Balances.TotalAssets != nil {
		ref := record.Balances.TotalAssets.Date
		record.ReferenceDate = &ref
	}
	if policy.IsStale(record.ReferenceDate, now) {
		return record, audit, true
	}
	record.Stale = policy.NeedsWarning(record.ReferenceDate, now)

	for _, m := range catalog.Metrics() {
		rs := resolved[m.Name]
		if m.Kind != KindFlow || rs == nil {
			continue
		}
		ttm := AssembleTTM(catalog, rs.Series, record.ReferenceDate.Time)
		if ttm == nil {
			continue
		}
		setFlow(&record.Flows, m.Name, ttm)
		entry := auditEntry(rs, string(ttm.Method), nil)
		entry.Facts = ttm.Facts
		audit[m.Name] = entry
	}

	res := CalculateRatios(RatioInputs{Balances: record.Balances, Flows: record.Flows})
	record.Ratios = res.Ratios
	record.QualityFlags = append(record.QualityFlags, res.Flags...)
	record.QualityFlags = append(record.QualityFlags, ApplyQualityBounds(&record.Ratios)...)

	return record, audit, false
}

func auditEntry(rs *ResolvedSeries, method string, facts []models.RawFact) models.AuditEntry {
	entry := models.AuditEntry{
		Namespace: rs.Alias.Namespace,
		Concept:   rs.Alias.Concept,
		Unit:      rs.Alias.Unit,
		Method:    method,
	}
	for _, f := range facts {
		entry.Facts = append(entry.Facts, models.ContributingFact{RawFact: f})
	}
	return entry
}

func setBalance(b *models.Balances, metric string, pit *models.PointInTime) {
	switch metric {
	case MetricTotalAssets:
		b.TotalAssets = pit
	case MetricTotalEquity:
		b.TotalEquity = pit
	case MetricPreferredStock:
		b.PreferredStock = pit
	case MetricTotalDeposits:
		b.TotalDeposits = pit
	case MetricTotalLoans:
		b.TotalLoans = pit
	case MetricSharesOutstanding:
		b.SharesOutstanding = pit
	}
}

func setFlow(f *models.Flows, metric string, ttm *models.TTM) {
	switch metric {
	case MetricNetIncome:
		f.NetIncome = ttm
	case MetricNetIncomeToCommon:
		f.NetIncomeToCommon = ttm
	case MetricPreferredDividends:
		f.PreferredDividends = ttm
	case MetricNetInterestIncome:
		f.NetInterestIncome = ttm
	case MetricNoninterestIncome:
		f.NoninterestIncome = ttm
	case MetricNoninterestExpense:
		f.NoninterestExpense = ttm
	case MetricEPS:
		f.EPS = ttm
	case MetricDividendsPerShare:
		f.DividendsPerShare = ttm
	}
}
