package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

// normalize fills defaults on the caller's copy of spec, rewrites enum values
// in canonical form and rejects values outside their closed sets.
func normalize(spec *models.BondSpecification) error {
	if !spec.CommercialValue.IsPositive() {
		return configErr("commercial_value", "must be positive, got %s", spec.CommercialValue)
	}
	if !spec.Years.IsPositive() {
		return scheduleErr(0, "tenor must be positive, got %s years", spec.Years)
	}
	if spec.DaysPerYear == 0 {
		spec.DaysPerYear = DefaultDaysPerYear
	}
	if spec.DaysPerYear < 0 {
		return configErr("days_per_year", "must be positive, got %d", spec.DaysPerYear)
	}
	if spec.EmissionDate.IsZero() {
		return configErr("emission_date", "is required")
	}

	var err error
	if spec.RateType, err = models.ParseRateType(string(spec.RateType)); err != nil {
		return configErr("rate_type", "%v", err)
	}
	if spec.PaymentFrequency, err = models.ParseFrequency(string(spec.PaymentFrequency)); err != nil {
		return configErr("payment_frequency", "%v", err)
	}
	if spec.RateType == models.RateNominal {
		if spec.CompoundingFrequency == "" {
			return configErr("compounding_frequency", "required when the rate type is nominal")
		}
		if spec.CompoundingFrequency, err = models.ParseFrequency(string(spec.CompoundingFrequency)); err != nil {
			return configErr("compounding_frequency", "%v", err)
		}
	}
	if spec.Method, err = models.ParseAmortizationMethod(string(spec.Method)); err != nil {
		return configErr("method", "%v", err)
	}
	if spec.PremiumTiming == "" {
		spec.PremiumTiming = models.PremiumAtEnd
	} else if spec.PremiumTiming, err = models.ParsePremiumTiming(string(spec.PremiumTiming)); err != nil {
		return configErr("premium_timing", "%v", err)
	}

	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"interest_rate", spec.InterestRate},
		{"premium", spec.Premium},
		{"cok", spec.COK},
		{"income_tax", spec.IncomeTax},
	} {
		if f.value.IsNegative() {
			return configErr(f.name, "must not be negative, got %s", f.value)
		}
	}

	// Structuring and placement fall on the emitter when no actor is given;
	// flotation and settlement on both sides.
	for _, c := range []struct {
		name string
		cost *models.IssuanceCost
		def  models.Actor
	}{
		{"structuring", &spec.Costs.Structuring, models.ActorEmitter},
		{"placement", &spec.Costs.Placement, models.ActorEmitter},
		{"flotation", &spec.Costs.Flotation, models.ActorBoth},
		{"settlement", &spec.Costs.Settlement, models.ActorBoth},
	} {
		if c.cost.Percent.IsNegative() {
			return configErr(c.name, "cost must not be negative, got %s", c.cost.Percent)
		}
		if c.cost.Actor == "" {
			c.cost.Actor = c.def
			continue
		}
		if c.cost.Actor, err = models.ParseActor(string(c.cost.Actor)); err != nil {
			return configErr(c.name, "%v", err)
		}
	}

	spec.GracePeriods = append([]models.GracePeriodEntry(nil), spec.GracePeriods...)
	for i := range spec.GracePeriods {
		g := &spec.GracePeriods[i]
		if g.Type, err = models.ParseGraceType(string(g.Type)); err != nil {
			return configErr("grace_periods", "%v", err)
		}
	}
	return nil
}

// validateGrace checks grace entries against the period grid.
func validateGrace(entries []models.GracePeriodEntry, totalPeriods int) error {
	seen := make(map[int]bool, len(entries))
	for _, g := range entries {
		if g.Period < 1 || g.Period > totalPeriods {
			return scheduleErr(g.Period, "grace period outside 1..%d", totalPeriods)
		}
		if seen[g.Period] {
			return scheduleErr(g.Period, "more than one grace entry")
		}
		seen[g.Period] = true
	}
	return nil
}
