package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

// DefaultDaysPerYear is the commercial year used when a bond does not set one.
const DefaultDaysPerYear = 360

// Options configure one Calculator. The zero value of every field is
// replaced by its default.
type Options struct {
	// Precision is the number of decimal places kept by divisions and powers.
	Precision  int32
	TotalGrace TotalGracePolicy
	Solver     SolverOptions
}

// DefaultOptions keeps 16 decimal places and solves IRRs to 1e-7.
func DefaultOptions() Options {
	return Options{
		Precision:  16,
		TotalGrace: WaiveTotalGrace,
		Solver:     SolverOptions{Tolerance: 1e-7, MaxIterations: 100, Guess: 0.01},
	}
}

// Result is a full schedule, periods 0..N, and its summary.
type Result struct {
	Periods []models.Period           `json:"periods"`
	Summary models.CalculationSummary `json:"summary"`
}

// Calculator values bonds. It holds no mutable state and is safe for
// concurrent use.
type Calculator struct {
	opts Options
}

// NewCalculator builds a calculator, filling unset options with defaults.
func NewCalculator(opts Options) *Calculator {
	def := DefaultOptions()
	if opts.Precision <= 0 {
		opts.Precision = def.Precision
	}
	if opts.TotalGrace == "" {
		opts.TotalGrace = def.TotalGrace
	}
	if opts.Solver.Tolerance <= 0 {
		opts.Solver.Tolerance = def.Solver.Tolerance
	}
	if opts.Solver.MaxIterations <= 0 {
		opts.Solver.MaxIterations = def.Solver.MaxIterations
	}
	if opts.Solver.Guess == 0 || opts.Solver.Guess <= irrFloor {
		opts.Solver.Guess = def.Solver.Guess
	}
	return &Calculator{opts: opts}
}

// Options returns the effective options.
func (c *Calculator) Options() Options { return c.opts }

// Calculate values a bond with the default options.
func Calculate(spec models.BondSpecification) (*Result, error) {
	return NewCalculator(DefaultOptions()).Calculate(spec)
}

// Calculate builds the schedule and summary of spec. It fails with a
// *ConfigurationError or *ScheduleError and never returns a partial result.
func (c *Calculator) Calculate(spec models.BondSpecification) (*Result, error) {
	a := Arithmetic{Places: c.opts.Precision}

	if err := normalize(&spec); err != nil {
		return nil, err
	}
	strategy, err := NewStrategy(spec.Method)
	if err != nil {
		return nil, err
	}
	conv := strategy.Conventions()

	freqDays, err := conv.Days(spec.PaymentFrequency)
	if err != nil {
		return nil, configErr("payment_frequency", "%v", err)
	}
	dpy := decimal.NewFromInt(int64(spec.DaysPerYear))
	periodsPerYear := a.Div(dpy, decimal.NewFromInt(int64(freqDays)))
	totalPeriods := int(spec.Years.Mul(dpy).DivRound(decimal.NewFromInt(int64(freqDays)), a.Places).Floor().IntPart())
	if totalPeriods < 1 {
		return nil, scheduleErr(0, "a %s year tenor has no %s period", spec.Years, spec.PaymentFrequency)
	}
	if err := validateGrace(spec.GracePeriods, totalPeriods); err != nil {
		return nil, err
	}

	var compoundingDays int
	if spec.RateType == models.RateNominal {
		if compoundingDays, err = conv.Days(spec.CompoundingFrequency); err != nil {
			return nil, configErr("compounding_frequency", "%v", err)
		}
	}
	quote := RateQuote{
		Rate:        percent(spec.InterestRate),
		Type:        spec.RateType,
		Compounding: spec.CompoundingFrequency,
		DaysPerYear: spec.DaysPerYear,
	}
	tea, err := EffectiveAnnualRate(quote, conv, a)
	if err != nil {
		return nil, err
	}
	periodRate, err := PeriodRate(tea, freqDays, spec.DaysPerYear, a)
	if err != nil {
		return nil, configErr("interest_rate", "%v", err)
	}
	periodCOK, err := PeriodRate(percent(spec.COK), freqDays, spec.DaysPerYear, a)
	if err != nil {
		return nil, configErr("cok", "%v", err)
	}

	grace := make(map[int]models.GraceType, len(spec.GracePeriods))
	for _, g := range spec.GracePeriods {
		grace[g.Period] = g.Type
	}
	rows, err := buildSchedule(strategy, scheduleInput{
		Principal:     spec.CommercialValue,
		Rate:          periodRate,
		TotalPeriods:  totalPeriods,
		Grace:         grace,
		Policy:        c.opts.TotalGrace,
		Premium:       percent(spec.Premium),
		PremiumTiming: spec.PremiumTiming,
		IncomeTax:     percent(spec.IncomeTax),
	}, a)
	if err != nil {
		return nil, err
	}

	dates, err := PaymentDates(spec.EmissionDate, totalPeriods, spec.PaymentFrequency)
	if err != nil {
		return nil, configErr("payment_frequency", "%v", err)
	}
	costs := AllocateInitialCosts(spec.CommercialValue, spec.Costs)
	flows := assembleFlows(spec.CommercialValue, costs, rows)
	metrics := discount(flows.Bondholder, periodCOK, freqDays, spec.DaysPerYear, a)

	teaPct := tea.Shift(2)
	shieldedTEA := a.Round(teaPct.Mul(one.Sub(percent(spec.IncomeTax))))
	summary := models.CalculationSummary{
		FrequencyDays:          freqDays,
		CompoundingDays:        compoundingDays,
		PeriodsPerYear:         periodsPerYear,
		TotalPeriods:           totalPeriods,
		EffectiveAnnualRate:    teaPct,
		EffectivePeriodRate:    periodRate.Shift(2),
		PeriodCOK:              periodCOK.Shift(2),
		InitialEmitterCosts:    costs.Emitter,
		InitialBondholderCosts: costs.Bondholder,
		ActualPrice:            metrics.ActualPrice,
		Utility:                metrics.Utility,
		Duration:               metrics.Duration,
		Convexity:              metrics.Convexity,
		Total:                  metrics.Duration.Add(metrics.Convexity),
		ModifiedDuration:       metrics.ModifiedDuration,
	}

	var warn *models.ConvergenceWarning
	record := func(w *models.ConvergenceWarning) {
		if w != nil {
			summary.Degraded = true
			summary.Warnings = append(summary.Warnings, *w)
		}
	}
	summary.EmitterTCEA, warn = solveYield(models.EmitterSeries, flows.Emitter, periodsPerYear, teaPct, c.opts.Solver, a)
	record(warn)
	summary.EmitterTCEAWithShield, warn = solveYield(models.EmitterWithShieldSeries, flows.EmitterWithShield, periodsPerYear, shieldedTEA, c.opts.Solver, a)
	record(warn)
	summary.BondholderTREA, warn = solveYield(models.BondholderSeries, flows.Bondholder, periodsPerYear, teaPct, c.opts.Solver, a)
	record(warn)

	periods := make([]models.Period, 0, totalPeriods+1)
	periods = append(periods, models.Period{
		Index:                 0,
		Date:                  dates[0],
		Balance:               decimal.Zero,
		Coupon:                decimal.Zero,
		Quota:                 decimal.Zero,
		Amortization:          decimal.Zero,
		Premium:               decimal.Zero,
		Shield:                decimal.Zero,
		EmitterFlow:           flows.Emitter[0],
		EmitterFlowWithShield: flows.EmitterWithShield[0],
		BondholderFlow:        flows.Bondholder[0],
		ActualizedFlow:        decimal.Zero,
		FlowByTerm:            decimal.Zero,
		ConvexityFactor:       decimal.Zero,
	})
	for _, r := range rows {
		i := r.Index
		periods = append(periods, models.Period{
			Index:                 i,
			Date:                  dates[i],
			Grace:                 r.Grace,
			Balance:               r.Balance,
			Coupon:                r.Coupon,
			Quota:                 r.Quota,
			Amortization:          r.Amortization,
			Premium:               r.Premium,
			Shield:                r.Shield,
			EmitterFlow:           flows.Emitter[i],
			EmitterFlowWithShield: flows.EmitterWithShield[i],
			BondholderFlow:        flows.Bondholder[i],
			ActualizedFlow:        metrics.Actualized[i],
			FlowByTerm:            metrics.FlowByTerm[i],
			ConvexityFactor:       metrics.ConvexityFactor[i],
		})
	}
	return &Result{Periods: periods, Summary: summary}, nil
}
