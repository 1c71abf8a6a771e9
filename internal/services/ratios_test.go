package services

import (
	"testing"

	"github.com/epeers/bankmetrics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pit(v float64) *models.PointInTime {
	return &models.PointInTime{Value: v, Date: date("2024-12-31"), Form: models.FormAnnual}
}

func ttmOf(v float64) *models.TTM {
	return &models.TTM{Value: v, AnchorDate: date("2024-12-31"), Method: models.TTMSumFourQuarters}
}

func avgOf(average, ending float64) *models.Average {
	return &models.Average{Average: average, Ending: ending, EndingDate: date("2024-12-31"), Method: "5-point-avg", Periods: 5}
}

func TestCalculateRatios_BookValueAndReturns(t *testing.T) {
	res := CalculateRatios(RatioInputs{
		Balances: models.Balances{
			TotalAssets:       pit(10000),
			AverageAssets:     avgOf(10000, 10000),
			TotalEquity:       pit(1200),
			AverageEquity:     avgOf(1000, 1200),
			PreferredStock:    pit(200),
			TotalDeposits:     pit(8000),
			TotalLoans:        pit(6000),
			SharesOutstanding: pit(100),
		},
		Flows: models.Flows{
			NetIncome:          ttmOf(150),
			NetInterestIncome:  ttmOf(400),
			NoninterestIncome:  ttmOf(100),
			NoninterestExpense: ttmOf(300),
			EPS:                ttmOf(4),
			DividendsPerShare:  ttmOf(1),
		},
	})
	r := res.Ratios

	require.NotNil(t, r.CommonEquity)
	assert.InDelta(t, 1000.0, *r.CommonEquity, 1e-9)
	require.NotNil(t, r.BookValuePerShare)
	assert.InDelta(t, 10.0, *r.BookValuePerShare, 1e-9)

	// ROE uses average equity, not the ending balance
	require.NotNil(t, r.ReturnOnEquity)
	assert.InDelta(t, 15.0, *r.ReturnOnEquity, 1e-9)
	require.NotNil(t, r.ReturnOnAverageAssets)
	assert.InDelta(t, 1.5, *r.ReturnOnAverageAssets, 1e-9)

	require.NotNil(t, r.TotalRevenue)
	assert.InDelta(t, 500.0, *r.TotalRevenue, 1e-9)
	require.NotNil(t, r.EfficiencyRatio)
	assert.InDelta(t, 60.0, *r.EfficiencyRatio, 1e-9)

	assert.InDelta(t, 80.0, *r.DepositsToAssets, 1e-9)
	assert.InDelta(t, 12.0, *r.EquityToAssets, 1e-9)
	assert.InDelta(t, 60.0, *r.LoansToAssets, 1e-9)
	assert.InDelta(t, 75.0, *r.LoansToDeposits, 1e-9)

	// sqrt(22.5 * 4 * 10) = 30
	require.NotNil(t, r.IntrinsicValueEstimate)
	assert.InDelta(t, 30.0, *r.IntrinsicValueEstimate, 1e-9)
	require.NotNil(t, r.PayoutRatio)
	assert.InDelta(t, 25.0, *r.PayoutRatio, 1e-9)

	require.NotNil(t, r.NetIncomeToCommon)
	assert.InDelta(t, 150.0, *r.NetIncomeToCommon, 1e-9)
	assert.Empty(t, res.Flags)
}

func TestCalculateRatios_MissingInputsAndZeroDenominators(t *testing.T) {
	res := CalculateRatios(RatioInputs{
		Balances: models.Balances{
			TotalAssets:       pit(0),
			TotalEquity:       pit(500),
			SharesOutstanding: pit(0),
			TotalLoans:        pit(100),
		},
		Flows: models.Flows{
			NetInterestIncome:  ttmOf(-50),
			NoninterestIncome:  ttmOf(20),
			NoninterestExpense: ttmOf(10),
			EPS:                ttmOf(-1),
			DividendsPerShare:  ttmOf(1),
		},
	})
	r := res.Ratios

	require.NotNil(t, r.CommonEquity, "missing preferred stock counts as zero")
	assert.InDelta(t, 500.0, *r.CommonEquity, 1e-9)
	assert.Nil(t, r.BookValuePerShare)
	assert.Nil(t, r.ReturnOnEquity)
	assert.Nil(t, r.ReturnOnAverageAssets)
	assert.Nil(t, r.EquityToAssets)
	assert.Nil(t, r.LoansToDeposits)
	assert.Nil(t, r.EfficiencyRatio, "non-positive revenue")
	assert.Nil(t, r.IntrinsicValueEstimate)
	assert.Nil(t, r.PayoutRatio)
	assert.Nil(t, r.NetIncomeToCommon)
	assert.Empty(t, res.Flags)
}

func TestCalculateRatios_NetIncomeToCommon(t *testing.T) {
	tests := []struct {
		name      string
		flows     models.Flows
		want      *float64
		wantFlags int
	}{
		{
			name:  "preferred dividends netted out",
			flows: models.Flows{NetIncome: ttmOf(150), PreferredDividends: ttmOf(20)},
			want:  ptr(130),
		},
		{
			name:  "reported figure preferred",
			flows: models.Flows{NetIncome: ttmOf(150), NetIncomeToCommon: ttmOf(140), PreferredDividends: ttmOf(20)},
			want:  ptr(140),
		},
		{
			name:      "reported figure above net income",
			flows:     models.Flows{NetIncome: ttmOf(150), NetIncomeToCommon: ttmOf(160)},
			want:      nil,
			wantFlags: 1,
		},
		{
			name:      "negative preferred dividends",
			flows:     models.Flows{NetIncome: ttmOf(150), PreferredDividends: ttmOf(-5)},
			want:      nil,
			wantFlags: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CalculateRatios(RatioInputs{Flows: tt.flows})
			if tt.want == nil {
				assert.Nil(t, res.Ratios.NetIncomeToCommon)
			} else {
				require.NotNil(t, res.Ratios.NetIncomeToCommon)
				assert.InDelta(t, *tt.want, *res.Ratios.NetIncomeToCommon, 1e-9)
			}
			require.Len(t, res.Flags, tt.wantFlags)
			if tt.wantFlags > 0 {
				assert.Equal(t, models.FlagNetIncomeToCommonRange, res.Flags[0].Code)
			}
		})
	}
}
