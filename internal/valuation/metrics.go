package valuation

import "github.com/shopspring/decimal"

// discountedMetrics are the bondholder figures discounted at the period COK.
// The per-period slices are indexed 0..N and are zero at index 0.
type discountedMetrics struct {
	Actualized       []decimal.Decimal
	FlowByTerm       []decimal.Decimal
	ConvexityFactor  []decimal.Decimal
	ActualPrice      decimal.Decimal
	Utility          decimal.Decimal
	Duration         decimal.Decimal
	Convexity        decimal.Decimal
	ModifiedDuration decimal.Decimal
}

// discount computes present value, Macaulay duration (in years), convexity
// and modified duration of the bondholder series. Period 0 is excluded from
// every sum.
func discount(bondholder []decimal.Decimal, periodCOK decimal.Decimal, periodDays, daysPerYear int, a Arithmetic) discountedMetrics {
	n := len(bondholder)
	m := discountedMetrics{
		Actualized:      make([]decimal.Decimal, n),
		FlowByTerm:      make([]decimal.Decimal, n),
		ConvexityFactor: make([]decimal.Decimal, n),
	}
	pd := decimal.NewFromInt(int64(periodDays))
	dpy := decimal.NewFromInt(int64(daysPerYear))
	growth := one.Add(periodCOK)

	m.Actualized[0], m.FlowByTerm[0], m.ConvexityFactor[0] = decimal.Zero, decimal.Zero, decimal.Zero
	sumActual, sumTerm, sumConvexity := decimal.Zero, decimal.Zero, decimal.Zero
	factor := one
	for i := 1; i < n; i++ {
		factor = a.Round(factor.Mul(growth))
		t := decimal.NewFromInt(int64(i))

		actual := a.Div(bondholder[i], factor)
		m.Actualized[i] = actual
		m.FlowByTerm[i] = a.Div(actual.Mul(t).Mul(pd), dpy)
		m.ConvexityFactor[i] = actual.Mul(t).Mul(t.Add(one))

		sumActual = sumActual.Add(actual)
		sumTerm = sumTerm.Add(m.FlowByTerm[i])
		sumConvexity = sumConvexity.Add(m.ConvexityFactor[i])
	}

	m.ActualPrice = sumActual
	m.Utility = bondholder[0].Add(sumActual)
	m.Duration, m.Convexity = decimal.Zero, decimal.Zero
	if !sumActual.IsZero() {
		m.Duration = a.Div(sumTerm, sumActual)
		// Σconv / ((1+cok)² · Σact · (dpy/pd)²), rearranged to divide once.
		denominator := growth.Mul(growth).Mul(sumActual).Mul(dpy).Mul(dpy)
		m.Convexity = a.Div(sumConvexity.Mul(pd).Mul(pd), denominator)
	}
	m.ModifiedDuration = a.Div(m.Duration, growth)
	return m
}
