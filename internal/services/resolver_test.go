package services

import (
	"testing"

	"github.com/epeers/bankmetrics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConcept_AliasPriority(t *testing.T) {
	catalog := NewConceptCatalog(DefaultMetrics())
	equity, ok := catalog.Metric(MetricTotalEquity)
	require.True(t, ok)

	primary := balanceFact("StockholdersEquity", "2023-12-31", 900)
	fallback := balanceFact("StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest", "2024-12-31", 1300)
	doc := newDoc("Bank", primary, fallback)

	rs, ok := ResolveConcept(doc, equity)
	require.True(t, ok)
	assert.Equal(t, "StockholdersEquity", rs.Alias.Concept)
	// The chosen alias is used alone, even when a lower alias has newer data
	require.Len(t, rs.Series.Facts, 1)
	assert.Equal(t, 900.0, rs.Series.Facts[0].Value)
}

func TestResolveConcept_SkipsAliasWithoutAcceptedForms(t *testing.T) {
	catalog := NewConceptCatalog(DefaultMetrics())
	equity, _ := catalog.Metric(MetricTotalEquity)

	eightK := balanceFact("StockholdersEquity", "2024-12-31", 900)
	eightK.Form = "8-K"
	fallback := balanceFact("StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest", "2024-12-31", 1300)

	rs, ok := ResolveConcept(newDoc("Bank", eightK, fallback), equity)
	require.True(t, ok)
	assert.Equal(t, "StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest", rs.Alias.Concept)
}

func TestResolveConcept_Missing(t *testing.T) {
	catalog := NewConceptCatalog(DefaultMetrics())
	deposits, _ := catalog.Metric(MetricTotalDeposits)

	_, ok := ResolveConcept(newDoc("Bank", balanceFact("Assets", "2024-12-31", 1)), deposits)
	assert.False(t, ok)

	_, ok = ResolveConcept(&models.CompanyFacts{}, deposits)
	assert.False(t, ok)
}

func TestConceptCatalog(t *testing.T) {
	catalog := NewConceptCatalog(DefaultMetrics())

	assert.True(t, catalog.IsBalanceConcept(nsGAAP, "Assets"))
	assert.True(t, catalog.IsBalanceConcept(nsDEI, "EntityCommonStockSharesOutstanding"))
	assert.False(t, catalog.IsBalanceConcept(nsGAAP, "NetIncomeLoss"))

	metrics := catalog.Metrics()
	require.NotEmpty(t, metrics)
	assert.Equal(t, MetricTotalAssets, metrics[0].Name)

	_, ok := catalog.Metric("goodwill")
	assert.False(t, ok)
}
