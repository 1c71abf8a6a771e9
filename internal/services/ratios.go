package services

import (
	"math"

	"github.com/epeers/bankmetrics/internal/models"
)

// grahamMultiplier is 15 (P/E) × 1.5 (P/B) from the dual asset/earnings valuation screen
const grahamMultiplier = 22.5

// RatioInputs are the resolved figures a record's ratios are built from
type RatioInputs struct {
	Balances models.Balances
	Flows    models.Flows
}

// RatioResult carries computed ratios plus any sanity failures found while computing them
type RatioResult struct {
	Ratios models.Ratios
	Flags  []models.QualityFlag
}

// CalculateRatios derives every ratio from resolved balances and TTM flows.
// Any missing input or zero denominator yields a nil ratio.
func CalculateRatios(in RatioInputs) RatioResult {
	var res RatioResult
	b, f := in.Balances, in.Flows
	r := &res.Ratios

	totalAssets := pitValue(b.TotalAssets)
	totalEquity := pitValue(b.TotalEquity)
	deposits := pitValue(b.TotalDeposits)
	loans := pitValue(b.TotalLoans)
	shares := pitValue(b.SharesOutstanding)
	netIncome := ttmValue(f.NetIncome)

	preferred := 0.0
	if b.PreferredStock != nil {
		preferred = b.PreferredStock.Value
	}
	if totalEquity != nil {
		r.CommonEquity = ptr(*totalEquity - preferred)
	}
	r.BookValuePerShare = divide(r.CommonEquity, shares, 1)

	r.NetIncomeToCommon = netIncomeToCommon(f, netIncome)
	if r.NetIncomeToCommon == nil && netIncome != nil {
		res.Flags = append(res.Flags, models.QualityFlag{
			Code:    models.FlagNetIncomeToCommonRange,
			Metric:  MetricNetIncomeToCommon,
			Message: "net income to common exceeds total net income",
		})
	}

	if b.AverageEquity != nil {
		r.ReturnOnEquity = divide(netIncome, ptr(b.AverageEquity.Average), 100)
	}
	if b.AverageAssets != nil {
		r.ReturnOnAverageAssets = divide(netIncome, ptr(b.AverageAssets.Average), 100)
	}

	nii, nonIntIncome := ttmValue(f.NetInterestIncome), ttmValue(f.NoninterestIncome)
	if nii != nil && nonIntIncome != nil {
		r.TotalRevenue = ptr(*nii + *nonIntIncome)
	}
	if r.TotalRevenue != nil && *r.TotalRevenue > 0 {
		r.EfficiencyRatio = divide(ttmValue(f.NoninterestExpense), r.TotalRevenue, 100)
	}

	r.DepositsToAssets = divide(deposits, totalAssets, 100)
	r.EquityToAssets = divide(totalEquity, totalAssets, 100)
	r.LoansToAssets = divide(loans, totalAssets, 100)
	r.LoansToDeposits = divide(loans, deposits, 100)

	eps := ttmValue(f.EPS)
	if eps != nil && r.BookValuePerShare != nil && *eps > 0 && *r.BookValuePerShare > 0 {
		r.IntrinsicValueEstimate = ptr(math.Sqrt(grahamMultiplier * *eps * *r.BookValuePerShare))
	}
	if eps != nil && *eps > 0 {
		r.PayoutRatio = divide(ttmValue(f.DividendsPerShare), eps, 100)
	}

	return res
}

// netIncomeToCommon prefers the reported figure, otherwise nets preferred dividends out of
// total net income. A result above total net income is not credible and is dropped.
func netIncomeToCommon(f models.Flows, netIncome *float64) *float64 {
	var v *float64
	switch {
	case f.NetIncomeToCommon != nil:
		v = ptr(f.NetIncomeToCommon.Value)
	case netIncome != nil:
		dividends := 0.0
		if f.PreferredDividends != nil {
			dividends = f.PreferredDividends.Value
		}
		v = ptr(*netIncome - dividends)
	default:
		return nil
	}
	if netIncome != nil && *v > *netIncome {
		return nil
	}
	return v
}

func divide(num, den *float64, scale float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	v := *num / *den * scale
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func pitValue(p *models.PointInTime) *float64 {
	if p == nil {
		return nil
	}
	return ptr(p.Value)
}

func ttmValue(t *models.TTM) *float64 {
	if t == nil {
		return nil
	}
	return ptr(t.Value)
}

func ptr(v float64) *float64 {
	return &v
}
