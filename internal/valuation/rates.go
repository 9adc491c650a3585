package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

// RateQuote is a coupon rate as written on the bond. Rate is a fraction.
type RateQuote struct {
	Rate        decimal.Decimal
	Type        models.RateType
	Compounding models.Frequency
	DaysPerYear int
}

// EffectiveAnnualRate converts the quote into an effective annual rate.
// A nominal rate j compounded m times a year gives (1 + j/m)^m - 1 with
// m = daysPerYear / compoundingDays.
func EffectiveAnnualRate(q RateQuote, conv DayCountConvention, a Arithmetic) (decimal.Decimal, error) {
	switch q.Type {
	case models.RateEffective:
		return q.Rate, nil
	case models.RateNominal:
		if q.Compounding == "" {
			return decimal.Zero, configErr("compounding_frequency", "required when the rate type is nominal")
		}
		capDays, err := conv.Days(q.Compounding)
		if err != nil {
			return decimal.Zero, configErr("compounding_frequency", "%v", err)
		}
		m := a.Div(decimal.NewFromInt(int64(q.DaysPerYear)), decimal.NewFromInt(int64(capDays)))
		growth, err := a.Pow(one.Add(a.Div(q.Rate, m)), m)
		if err != nil {
			return decimal.Zero, configErr("interest_rate", "%v", err)
		}
		return growth.Sub(one), nil
	default:
		return decimal.Zero, configErr("rate_type", "unknown rate type %q", q.Type)
	}
}

// PeriodRate converts an effective annual rate into the effective rate of a
// period of periodDays: (1+tea)^(periodDays/daysPerYear) - 1.
func PeriodRate(tea decimal.Decimal, periodDays, daysPerYear int, a Arithmetic) (decimal.Decimal, error) {
	exp := a.Div(decimal.NewFromInt(int64(periodDays)), decimal.NewFromInt(int64(daysPerYear)))
	growth, err := a.Pow(one.Add(tea), exp)
	if err != nil {
		return decimal.Zero, err
	}
	return growth.Sub(one), nil
}

// EffectivePeriodRate converts a quote straight into the rate of one payment period.
func EffectivePeriodRate(q RateQuote, payment models.Frequency, conv DayCountConvention, a Arithmetic) (decimal.Decimal, error) {
	tea, err := EffectiveAnnualRate(q, conv, a)
	if err != nil {
		return decimal.Zero, err
	}
	paymentDays, err := conv.Days(payment)
	if err != nil {
		return decimal.Zero, configErr("payment_frequency", "%v", err)
	}
	r, err := PeriodRate(tea, paymentDays, q.DaysPerYear, a)
	if err != nil {
		return decimal.Zero, configErr("interest_rate", "%v", err)
	}
	return r, nil
}
