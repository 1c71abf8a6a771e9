package services

import (
	"testing"

	"github.com/epeers/bankmetrics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleTTM_SumOfFourQuarters(t *testing.T) {
	catalog := NewConceptCatalog(DefaultMetrics())
	series := seriesOf(
		quarterFact("NetIncomeLoss", "2023-10-01", "2023-12-31", 10, 2023, "Q4"),
		quarterFact("NetIncomeLoss", "2024-01-01", "2024-03-31", 20, 2024, "Q1"),
		quarterFact("NetIncomeLoss", "2024-04-01", "2024-06-30", 30, 2024, "Q2"),
		quarterFact("NetIncomeLoss", "2024-07-01", "2024-09-30", 40, 2024, "Q3"),
		// Year-to-date figures must not be mistaken for quarters
		flowFact("NetIncomeLoss", "2024-01-01", "2024-09-30", 90, models.FormQuarterly, 2024, "Q3"),
		// Out of the window
		quarterFact("NetIncomeLoss", "2023-07-01", "2023-09-30", 1000, 2023, "Q3"),
	)

	ttm := AssembleTTM(catalog, series, utc("2024-09-30"))
	require.NotNil(t, ttm)
	assert.Equal(t, models.TTMSumFourQuarters, ttm.Method)
	assert.InDelta(t, 100.0, ttm.Value, 1e-9)
	assert.Equal(t, "2024-09-30", ttm.AnchorDate.String())
	assert.Len(t, ttm.Facts, 4)
	for _, f := range ttm.Facts {
		assert.False(t, f.Derived)
	}
}

func TestAssembleTTM_DerivedFourthQuarterRoundTrip(t *testing.T) {
	catalog := NewConceptCatalog(DefaultMetrics())
	series := seriesOf(
		quarterFact("NetIncomeLoss", "2024-01-01", "2024-03-31", 25, 2024, "Q1"),
		quarterFact("NetIncomeLoss", "2024-04-01", "2024-06-30", 25, 2024, "Q2"),
		quarterFact("NetIncomeLoss", "2024-07-01", "2024-09-30", 25, 2024, "Q3"),
		annualFact("NetIncomeLoss", 2024, 110),
	)

	ttm := AssembleTTM(catalog, series, utc("2024-12-31"))
	require.NotNil(t, ttm)
	assert.Equal(t, models.TTMSumFourQuarters, ttm.Method)
	// Q1+Q2+Q3+derived Q4 reproduces the annual figure
	assert.InDelta(t, 110.0, ttm.Value, 1e-9)
	assert.Equal(t, "2024-12-31", ttm.AnchorDate.String())

	var derived []models.ContributingFact
	for _, f := range ttm.Facts {
		if f.Derived {
			derived = append(derived, f)
		}
	}
	require.Len(t, derived, 1)
	assert.InDelta(t, 35.0, derived[0].Value, 1e-9)
	assert.Equal(t, "Q4", derived[0].FiscalPeriod)
	require.NotNil(t, derived[0].Start)
	assert.Equal(t, "2024-10-01", derived[0].Start.String())
	assert.Equal(t, models.PeriodQuarter, ClassifyPeriod(catalog, derived[0].RawFact))
}

func TestAssembleTTM_NoDerivationForNonCalendarAnnual(t *testing.T) {
	catalog := NewConceptCatalog(DefaultMetrics())

	// FY2024 ends in September, so it cannot close a December quarter
	series := seriesOf(
		quarterFact("NetIncomeLoss", "2024-01-01", "2024-03-31", 25, 2024, "Q2"),
		quarterFact("NetIncomeLoss", "2024-04-01", "2024-06-30", 25, 2024, "Q3"),
		quarterFact("NetIncomeLoss", "2024-07-01", "2024-09-30", 25, 2024, "Q4"),
		flowFact("NetIncomeLoss", "2023-10-01", "2024-09-30", 100, models.FormAnnual, 2024, "FY"),
	)

	ttm := AssembleTTM(catalog, series, utc("2024-12-31"))
	require.NotNil(t, ttm)
	assert.Equal(t, models.TTMAnnualFallback, ttm.Method)
	assert.Equal(t, 100.0, ttm.Value)
	assert.Equal(t, "2024-09-30", ttm.AnchorDate.String())
}

func TestAssembleTTM_AnnualOnly(t *testing.T) {
	catalog := NewConceptCatalog(DefaultMetrics())
	series := seriesOf(
		annualFact("NetIncomeLoss", 2023, 90),
		annualFact("NetIncomeLoss", 2024, 120),
	)

	ttm := AssembleTTM(catalog, series, utc("2024-12-31"))
	require.NotNil(t, ttm)
	assert.Equal(t, models.TTMAnnual, ttm.Method)
	assert.Equal(t, 120.0, ttm.Value)
	require.Len(t, ttm.Facts, 1)
	assert.Equal(t, 2024, ttm.Facts[0].FiscalYear)

	// Early in the year the previous fiscal year is accepted
	ttm = AssembleTTM(catalog, series, utc("2025-03-31"))
	require.NotNil(t, ttm)
	assert.Equal(t, 120.0, ttm.Value)
}

func TestAssembleTTM_AnnualOutsideWindow(t *testing.T) {
	catalog := NewConceptCatalog(DefaultMetrics())
	series := seriesOf(annualFact("NetIncomeLoss", 2024, 120))

	// 2024-12-31 is eight months before the reference date
	assert.Nil(t, AssembleTTM(catalog, series, utc("2025-08-31")))

	// From October only the current fiscal year qualifies
	assert.Nil(t, AssembleTTM(catalog, seriesOf(annualFact("NetIncomeLoss", 2023, 90)), utc("2024-12-31")))
}

func TestAssembleTTM_AnnualAfterReferenceDate(t *testing.T) {
	catalog := NewConceptCatalog(DefaultMetrics())

	// FY2024 closes on 2024-12-31, three months after the reference date
	assert.Nil(t, AssembleTTM(catalog, seriesOf(annualFact("NetIncomeLoss", 2024, 120)), utc("2024-09-30")))

	// The previous fiscal year is used instead when it is recent enough
	series := seriesOf(
		annualFact("NetIncomeLoss", 2023, 90),
		annualFact("NetIncomeLoss", 2024, 120),
	)
	ttm := AssembleTTM(catalog, series, utc("2024-06-30"))
	require.NotNil(t, ttm)
	assert.Equal(t, 90.0, ttm.Value)
	assert.Equal(t, "2023-12-31", ttm.AnchorDate.String())
}

func TestAssembleTTM_NoData(t *testing.T) {
	catalog := NewConceptCatalog(DefaultMetrics())
	assert.Nil(t, AssembleTTM(catalog, nil, utc("2024-12-31")))
	assert.Nil(t, AssembleTTM(catalog, seriesOf(annualFact("NetIncomeLoss", 2024, 1)), models.Date{}.Time))
}
