package valuation

import "github.com/shopspring/decimal"

// flowSeries holds the three signed series, indexed 0..N.
type flowSeries struct {
	Emitter           []decimal.Decimal
	EmitterWithShield []decimal.Decimal
	Bondholder        []decimal.Decimal
}

// assembleFlows anchors the series at the emission. Emitter flows are
// costs (negative after emission) and bondholder flows are proceeds.
func assembleFlows(commercialValue decimal.Decimal, costs InitialCosts, rows []amortizationRow) flowSeries {
	n := len(rows) + 1
	fs := flowSeries{
		Emitter:           make([]decimal.Decimal, n),
		EmitterWithShield: make([]decimal.Decimal, n),
		Bondholder:        make([]decimal.Decimal, n),
	}

	fs.Emitter[0] = commercialValue.Sub(costs.Emitter)
	fs.EmitterWithShield[0] = fs.Emitter[0]
	fs.Bondholder[0] = commercialValue.Add(costs.Bondholder).Neg()

	for _, r := range rows {
		paid := r.Quota.Add(r.Premium)
		fs.Emitter[r.Index] = paid.Neg()
		fs.EmitterWithShield[r.Index] = paid.Neg().Add(r.Shield)
		fs.Bondholder[r.Index] = paid
	}
	return fs
}
