package services

import (
	"testing"

	"github.com/epeers/bankmetrics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLatest(t *testing.T) {
	catalog := NewConceptCatalog(DefaultMetrics())

	original := balanceFact("Assets", "2024-12-31", 1000)
	restated := balanceFact("Assets", "2024-12-31", 1010)
	restated.Filed = date("2025-06-01")
	older := balanceFact("Assets", "2024-09-30", 900)
	eightK := balanceFact("Assets", "2025-03-31", 5)
	eightK.Form = "8-K"

	pit, fact := ResolveLatest(catalog, seriesOf(older, original, eightK, restated))
	require.NotNil(t, pit)
	assert.Equal(t, 1010.0, pit.Value)
	assert.Equal(t, "2024-12-31", pit.Date.String())
	assert.Equal(t, models.FormQuarterly, pit.Form)
	assert.Equal(t, restated.Accession, fact.Accession)

	pit, _ = ResolveLatest(catalog, nil)
	assert.Nil(t, pit)
}

func TestResolveAverage_FivePoint(t *testing.T) {
	catalog := NewConceptCatalog(DefaultMetrics())
	series := seriesOf(
		balanceFact("Assets", "2023-09-30", 100),
		balanceFact("Assets", "2023-12-31", 200),
		balanceFact("Assets", "2024-03-31", 300),
		balanceFact("Assets", "2024-06-30", 400),
		balanceFact("Assets", "2024-09-30", 500),
		balanceFact("Assets", "2024-12-31", 600),
	)

	avg, used := ResolveAverage(catalog, series)
	require.NotNil(t, avg)
	assert.InDelta(t, 400.0, avg.Average, 1e-9)
	assert.Equal(t, 600.0, avg.Ending)
	assert.Equal(t, "2024-12-31", avg.EndingDate.String())
	require.NotNil(t, avg.BeginningDate)
	assert.Equal(t, "2023-12-31", avg.BeginningDate.String())
	assert.Equal(t, models.AverageMethod("5-point-avg"), avg.Method)
	assert.Equal(t, 5, avg.Periods)
	assert.Len(t, used, 5)
}

func TestResolveAverage_RepeatedPeriodEndCountsOnce(t *testing.T) {
	catalog := NewConceptCatalog(DefaultMetrics())

	// The 2024-09-30 balance reappears as a comparative in a later filing
	comparative := balanceFact("Assets", "2024-09-30", 520)
	comparative.Filed = date("2025-02-20")
	series := seriesOf(
		balanceFact("Assets", "2024-09-30", 500),
		balanceFact("Assets", "2024-12-31", 600),
		comparative,
	)

	avg, used := ResolveAverage(catalog, series)
	require.NotNil(t, avg)
	assert.Equal(t, 2, avg.Periods)
	assert.InDelta(t, 560.0, avg.Average, 1e-9)
	assert.Equal(t, models.AverageMethod("2-point-avg"), avg.Method)
	assert.Len(t, used, 2)
}

func TestResolveAverage_SinglePeriod(t *testing.T) {
	catalog := NewConceptCatalog(DefaultMetrics())

	avg, used := ResolveAverage(catalog, seriesOf(balanceFact("StockholdersEquity", "2024-12-31", 750)))
	require.NotNil(t, avg)
	assert.Equal(t, models.AverageSinglePeriod, avg.Method)
	assert.Equal(t, 750.0, avg.Average)
	assert.Equal(t, avg.Ending, avg.Average)
	assert.Nil(t, avg.BeginningDate)
	assert.Len(t, used, 1)

	avg, _ = ResolveAverage(catalog, nil)
	assert.Nil(t, avg)
}
