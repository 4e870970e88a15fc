// Package ratio derives the three compliance ratios from provider data and
// classifies them against fixed thresholds.
package ratio

import "github.com/komsit37/hscreen/pkg/hscreen/types"

// Thresholds, in percent. A ratio at or above its threshold is non-compliant.
const (
	IncomeThreshold     = 5.0
	SecuritiesThreshold = 30.0
	DebtThreshold       = 30.0
)

// Derive computes ComplianceRatios from a snapshot. It is pure.
//
// A snapshot with MarketCap <= 0 yields zero securities and debt ratios.
// This is a known approximation; such a ticker cannot be flagged by those two
// ratios.
func Derive(s types.FinancialSnapshot) types.ComplianceRatios {
	var income float64
	switch {
	case s.TotalRevenueTTM4Q > 0:
		income = s.InterestIncomeTTM4Q / s.TotalRevenueTTM4Q
	case s.InterestIncomeTTM4Q > 0:
		income = 1.0
	}

	var securities, debt float64
	if s.MarketCap > 0 {
		securities = s.CashAndEquivalents / s.MarketCap
		debt = s.TotalDebt / s.MarketCap
	}

	return types.ComplianceRatios{
		NonCompliantIncomePct:        100 * income,
		InterestBearingSecuritiesPct: 100 * securities,
		InterestBearingDebtPct:       100 * debt,
	}
}

// Classify applies the threshold rule. anyMissing marks ratios computed from
// defaulted inputs, which downgrades a pass to LikelyCompliant.
func Classify(r types.ComplianceRatios, anyMissing bool) types.Status {
	if r.NonCompliantIncomePct >= IncomeThreshold ||
		r.InterestBearingSecuritiesPct >= SecuritiesThreshold ||
		r.InterestBearingDebtPct >= DebtThreshold {
		return types.NonCompliant
	}
	if anyMissing {
		return types.LikelyCompliant
	}
	return types.Compliant
}

// ClassifyStored classifies the optional ratio columns of a reference record.
// Any present ratio at threshold is NonCompliant; all absent is Indeterminate.
func ClassifyStored(ncIncome, intDep, debt *float64) types.Status {
	if ncIncome == nil && intDep == nil && debt == nil {
		return types.Indeterminate
	}
	r := types.ComplianceRatios{
		NonCompliantIncomePct:        deref(ncIncome),
		InterestBearingSecuritiesPct: deref(intDep),
		InterestBearingDebtPct:       deref(debt),
	}
	return Classify(r, ncIncome == nil || intDep == nil || debt == nil)
}

// ClassifyRecord sets rec.Status from its stored ratios.
func ClassifyRecord(rec *types.Record) {
	if rec.Err != nil {
		rec.Status = types.Indeterminate
		return
	}
	rec.Status = ClassifyStored(rec.NCIncome, rec.IntDep, rec.Debt)
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
