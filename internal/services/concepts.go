package services

import (
	"github.com/epeers/bankmetrics/internal/models"
)

const (
	nsGAAP = "us-gaap"
	nsDEI  = "dei"

	unitUSD       = "USD"
	unitShares    = "shares"
	unitUSDPerShr = "USD/shares"
)

// MetricKind says whether a metric is a balance (point-in-time) or a flow (duration)
type MetricKind int

const (
	KindBalance MetricKind = iota
	KindFlow
)

// Metric names used as keys in the audit trail and the quality bound table
const (
	MetricTotalAssets        = "total_assets"
	MetricTotalEquity        = "total_equity"
	MetricPreferredStock     = "preferred_stock"
	MetricTotalDeposits      = "total_deposits"
	MetricTotalLoans         = "total_loans"
	MetricSharesOutstanding  = "shares_outstanding"
	MetricNetIncome          = "net_income"
	MetricNetIncomeToCommon  = "net_income_to_common"
	MetricPreferredDividends = "preferred_dividends"
	MetricNetInterestIncome  = "net_interest_income"
	MetricNoninterestIncome  = "noninterest_income"
	MetricNoninterestExpense = "noninterest_expense"
	MetricEPS                = "eps"
	MetricDividendsPerShare  = "dividends_per_share"
)

// Alias is one acceptable tag for a metric
type Alias struct {
	Namespace string
	Concept   string
	Unit      string
}

func (a Alias) key() models.ConceptKey {
	return models.ConceptKey{Namespace: a.Namespace, Concept: a.Concept, Unit: a.Unit}
}

// Metric is a logical figure with its aliases in priority order
type Metric struct {
	Name    string
	Kind    MetricKind
	Aliases []Alias
}

// ConceptCatalog is the lookup table of metrics and balance-style concepts.
// Build it once per run with NewConceptCatalog and pass it to whatever needs it.
type ConceptCatalog struct {
	metrics  map[string]Metric
	order    []string
	balances map[string]bool // "namespace:concept"
}

func gaap(concept, unit string) Alias { return Alias{Namespace: nsGAAP, Concept: concept, Unit: unit} }

// DefaultMetrics returns the bank metric definitions. New filer tags are added by
// appending aliases, lowest priority last.
func DefaultMetrics() []Metric {
	return []Metric{
		{Name: MetricTotalAssets, Kind: KindBalance, Aliases: []Alias{
			gaap("Assets", unitUSD),
		}},
		{Name: MetricTotalEquity, Kind: KindBalance, Aliases: []Alias{
			gaap("StockholdersEquity", unitUSD),
			gaap("StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest", unitUSD),
		}},
		{Name: MetricPreferredStock, Kind: KindBalance, Aliases: []Alias{
			gaap("PreferredStockValue", unitUSD),
			gaap("PreferredStockValueOutstanding", unitUSD),
			gaap("PreferredStockIncludingAdditionalPaidInCapital", unitUSD),
		}},
		{Name: MetricTotalDeposits, Kind: KindBalance, Aliases: []Alias{
			gaap("Deposits", unitUSD),
		}},
		{Name: MetricTotalLoans, Kind: KindBalance, Aliases: []Alias{
			gaap("LoansAndLeasesReceivableNetReportedAmount", unitUSD),
			gaap("FinancingReceivableExcludingAccruedInterestAfterAllowanceForCreditLoss", unitUSD),
			gaap("LoansAndLeasesReceivableNetOfDeferredIncome", unitUSD),
			gaap("LoansReceivableNet", unitUSD),
		}},
		{Name: MetricSharesOutstanding, Kind: KindBalance, Aliases: []Alias{
			{Namespace: nsDEI, Concept: "EntityCommonStockSharesOutstanding", Unit: unitShares},
			gaap("CommonStockSharesOutstanding", unitShares),
		}},
		{Name: MetricNetIncome, Kind: KindFlow, Aliases: []Alias{
			gaap("NetIncomeLoss", unitUSD),
			gaap("ProfitLoss", unitUSD),
		}},
		{Name: MetricNetIncomeToCommon, Kind: KindFlow, Aliases: []Alias{
			gaap("NetIncomeLossAvailableToCommonStockholdersBasic", unitUSD),
		}},
		{Name: MetricPreferredDividends, Kind: KindFlow, Aliases: []Alias{
			gaap("PreferredStockDividendsIncomeStatementImpact", unitUSD),
			gaap("DividendsPreferredStock", unitUSD),
		}},
		{Name: MetricNetInterestIncome, Kind: KindFlow, Aliases: []Alias{
			gaap("InterestIncomeExpenseNet", unitUSD),
			gaap("InterestIncomeExpenseAfterProvisionForLoanLoss", unitUSD),
		}},
		{Name: MetricNoninterestIncome, Kind: KindFlow, Aliases: []Alias{
			gaap("NoninterestIncome", unitUSD),
		}},
		{Name: MetricNoninterestExpense, Kind: KindFlow, Aliases: []Alias{
			gaap("NoninterestExpense", unitUSD),
		}},
		{Name: MetricEPS, Kind: KindFlow, Aliases: []Alias{
			gaap("EarningsPerShareDiluted", unitUSDPerShr),
			gaap("EarningsPerShareBasic", unitUSDPerShr),
		}},
		{Name: MetricDividendsPerShare, Kind: KindFlow, Aliases: []Alias{
			gaap("CommonStockDividendsPerShareDeclared", unitUSDPerShr),
			gaap("CommonStockDividendsPerShareCashPaid", unitUSDPerShr),
		}},
	}
}

// NewConceptCatalog indexes metric definitions. Every alias of a balance metric is
// registered as a balance-style concept.
func NewConceptCatalog(metrics []Metric) *ConceptCatalog {
	c := &ConceptCatalog{
		metrics:  make(map[string]Metric, len(metrics)),
		balances: make(map[string]bool),
	}
	for _, m := range metrics {
		c.metrics[m.Name] = m
		c.order = append(c.order, m.Name)
		if m.Kind != KindBalance {
			continue
		}
		for _, a := range m.Aliases {
			c.balances[a.Namespace+":"+a.Concept] = true
		}
	}
	return c
}

// Metric returns a metric definition by name
func (c *ConceptCatalog) Metric(name string) (Metric, bool) {
	m, ok := c.metrics[name]
	return m, ok
}

// Metrics returns every metric in definition order
func (c *ConceptCatalog) Metrics() []Metric {
	out := make([]Metric, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.metrics[name])
	}
	return out
}

// IsBalanceConcept reports whether a namespace/concept is measured at an instant
func (c *ConceptCatalog) IsBalanceConcept(namespace, concept string) bool {
	return c.balances[namespace+":"+concept]
}
