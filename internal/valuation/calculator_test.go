package valuation

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

func TestCalculate_GermanNoGrace(t *testing.T) {
	res, err := Calculate(germanBond())
	require.NoError(t, err)

	s := res.Summary
	assert.Equal(t, 180, s.FrequencyDays)
	assert.Equal(t, 0, s.CompoundingDays)
	assert.Equal(t, 6, s.TotalPeriods)
	assertNear(t, 2, s.PeriodsPerYear, 1e-12)
	assertNear(t, 7.5, s.EffectiveAnnualRate, 1e-12)
	assertNear(t, 3.682206767, s.EffectivePeriodRate, 1e-8)
	require.Len(t, res.Periods, 7)

	p0 := res.Periods[0]
	assert.True(t, p0.EmitterFlow.Equal(d("1000")))
	assert.True(t, p0.EmitterFlowWithShield.Equal(d("1000")))
	assert.True(t, p0.BondholderFlow.Equal(d("-1000")))
	assert.Equal(t, germanBond().EmissionDate, p0.Date)

	p1 := res.Periods[1]
	assertNear(t, 36.82, p1.Coupon, 0.005)
	assertNear(t, 166.67, p1.Amortization, 0.005)
	assertNear(t, 203.4887343, p1.BondholderFlow, 1e-6)
	assert.True(t, p1.EmitterFlow.Equal(p1.BondholderFlow.Neg()))
	assert.True(t, p1.EmitterFlowWithShield.Equal(p1.EmitterFlow.Add(p1.Shield)))
	assert.Equal(t, models.GraceNone, p1.Grace)

	assertNear(t, 1039.7973205, s.ActualPrice, 1e-6)
	assertNear(t, 39.7973205, s.Utility, 1e-6)
	assertNear(t, 1.6670308, s.Duration, 1e-6)
	assertNear(t, 4.1299869, s.Convexity, 1e-6)
	assertNear(t, 1.6268555, s.ModifiedDuration, 1e-6)
	assert.True(t, s.Total.Equal(s.Duration.Add(s.Convexity)))

	assertNear(t, 7.5, s.BondholderTREA, 1e-4)
	assertNear(t, 7.5, s.EmitterTCEA, 1e-4)
	assert.True(t, s.EmitterTCEAWithShield.LessThan(s.EmitterTCEA))
	assert.False(t, s.Degraded)
	assert.Empty(t, s.Warnings)
}

func TestCalculate_PartialGraceFirstPeriod(t *testing.T) {
	spec := germanBond()
	spec.GracePeriods = []models.GracePeriodEntry{{Period: 1, Type: models.GracePartial}}

	res, err := Calculate(spec)
	require.NoError(t, err)

	p1, p2 := res.Periods[1], res.Periods[2]
	assert.Equal(t, models.GracePartial, p1.Grace)
	assert.True(t, p1.Amortization.IsZero())
	assert.True(t, p1.Quota.Equal(p1.Coupon))
	assert.True(t, p2.Balance.Equal(d("1000")))
	assertNear(t, 200, p2.Amortization, 1e-9)
}

func TestCalculate_PremiumAtBeginning(t *testing.T) {
	spec := germanBond()
	spec.Premium = d("0.8")
	spec.PremiumTiming = models.PremiumAtBeginning

	res, err := Calculate(spec)
	require.NoError(t, err)

	for _, p := range res.Periods[:6] {
		assert.True(t, p.Premium.IsZero(), "period %d", p.Index)
	}
	last := res.Periods[6]
	assert.Equal(t, "8.00", last.Premium.StringFixed(2))
	assert.True(t, last.BondholderFlow.Equal(last.Quota.Add(last.Premium)))
}

func TestCalculate_PremiumDefaultsToEnd(t *testing.T) {
	spec := germanBond()
	spec.Premium = d("0.8")

	res, err := Calculate(spec)
	require.NoError(t, err)
	assertNear(t, 1.3333333, res.Periods[6].Premium, 1e-6)
}

func TestCalculate_NominalWithoutCompounding(t *testing.T) {
	spec := germanBond()
	spec.RateType = models.RateNominal

	res, err := Calculate(spec)

	assert.Nil(t, res)
	var cfg *ConfigurationError
	require.True(t, errors.As(err, &cfg), "got %v", err)
	assert.Equal(t, "compounding_frequency", cfg.Field)
}

func TestCalculate_CompoundingDaysFollowMethod(t *testing.T) {
	for method, want := range map[models.AmortizationMethod]int{models.German: 90, models.French: 120} {
		spec := germanBond()
		spec.Method = method
		spec.RateType = models.RateNominal
		spec.CompoundingFrequency = "Quarterly"

		res, err := Calculate(spec)
		require.NoError(t, err)
		assert.Equal(t, want, res.Summary.CompoundingDays, "method %s", method)
		assert.Equal(t, 180, res.Summary.FrequencyDays)
	}
}

func TestCalculate_FrenchQuarterly(t *testing.T) {
	spec := germanBond()
	spec.Method = models.French
	spec.RateType = models.RateNominal
	spec.InterestRate = d("9")
	spec.CompoundingFrequency = models.Quarterly
	spec.PaymentFrequency = models.Quarterly
	spec.Years = d("2")

	res, err := Calculate(spec)
	require.NoError(t, err)

	s := res.Summary
	assert.Equal(t, 120, s.FrequencyDays)
	assert.Equal(t, 120, s.CompoundingDays)
	assert.Equal(t, 6, s.TotalPeriods)
	assertNear(t, 3, s.PeriodsPerYear, 1e-12)
	assertNear(t, 3, s.EffectivePeriodRate, 1e-8)
	assert.Equal(t, date(2025, 4, 15), res.Periods[1].Date)

	quota := res.Periods[1].Quota
	for _, p := range res.Periods[1:] {
		assert.True(t, p.Quota.Equal(quota))
	}
	last := res.Periods[6]
	assertNear(t, 0, last.Balance.Sub(last.Amortization), 1e-9)
}

func TestCalculate_Costs(t *testing.T) {
	spec := germanBond()
	spec.Costs = models.IssuanceCosts{
		Structuring: models.IssuanceCost{Percent: d("1")},
		Placement:   models.IssuanceCost{Percent: d("0.25")},
		Flotation:   models.IssuanceCost{Percent: d("0.45")},
		Settlement:  models.IssuanceCost{Percent: d("0.5"), Actor: models.ActorBondholder},
	}

	res, err := Calculate(spec)
	require.NoError(t, err)

	s := res.Summary
	assert.True(t, s.InitialEmitterCosts.Equal(d("17")), "emitter %s", s.InitialEmitterCosts)
	assert.True(t, s.InitialBondholderCosts.Equal(d("9.5")), "bondholder %s", s.InitialBondholderCosts)
	assert.True(t, res.Periods[0].EmitterFlow.Equal(d("983")))
	assert.True(t, res.Periods[0].BondholderFlow.Equal(d("-1009.5")))
	assert.True(t, s.EmitterTCEA.GreaterThan(d("7.5")))
	assert.True(t, s.BondholderTREA.LessThan(d("7.5")))
	assertNear(t, s.ActualPrice.Sub(d("1009.5")).InexactFloat64(), s.Utility, 1e-12)
}

func TestCalculate_ActualPriceFallsAsCOKRises(t *testing.T) {
	prev := decimal.Zero
	for i, cok := range []string{"12", "9", "5", "2", "0"} {
		spec := germanBond()
		spec.COK = d(cok)
		res, err := Calculate(spec)
		require.NoError(t, err)
		if i > 0 {
			assert.True(t, res.Summary.ActualPrice.GreaterThan(prev), "cok %s", cok)
		}
		prev = res.Summary.ActualPrice
	}
}

func TestCalculate_DegradedYield(t *testing.T) {
	spec := germanBond()
	spec.Costs.Structuring = models.IssuanceCost{Percent: d("100"), Actor: models.ActorEmitter}

	res, err := Calculate(spec)
	require.NoError(t, err)

	s := res.Summary
	assert.True(t, s.Degraded)
	require.NotEmpty(t, s.Warnings)
	assert.Equal(t, models.EmitterSeries, s.Warnings[0].Series)
	assert.True(t, s.EmitterTCEA.Equal(s.EffectiveAnnualRate))
	assertNear(t, 7.5, s.BondholderTREA, 1e-4)
}

func TestCalculate_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.BondSpecification)
		schedule bool
	}{
		{"zero commercial value", func(s *models.BondSpecification) { s.CommercialValue = decimal.Zero }, false},
		{"unknown method", func(s *models.BondSpecification) { s.Method = "american" }, false},
		{"unknown frequency", func(s *models.BondSpecification) { s.PaymentFrequency = "weekly" }, false},
		{"negative rate", func(s *models.BondSpecification) { s.InterestRate = d("-1") }, false},
		{"negative cost", func(s *models.BondSpecification) { s.Costs.Placement.Percent = d("-0.1") }, false},
		{"unknown actor", func(s *models.BondSpecification) { s.Costs.Flotation.Actor = "broker" }, false},
		{"missing emission date", func(s *models.BondSpecification) { s.EmissionDate = time.Time{} }, false},
		{"unknown grace type", func(s *models.BondSpecification) {
			s.GracePeriods = []models.GracePeriodEntry{{Period: 1, Type: "deferred"}}
		}, false},
		{"zero tenor", func(s *models.BondSpecification) { s.Years = decimal.Zero }, true},
		{"tenor shorter than a period", func(s *models.BondSpecification) { s.Years = d("0.25") }, true},
		{"grace outside schedule", func(s *models.BondSpecification) {
			s.GracePeriods = []models.GracePeriodEntry{{Period: 7, Type: models.GracePartial}}
		}, true},
		{"duplicated grace", func(s *models.BondSpecification) {
			s.GracePeriods = []models.GracePeriodEntry{{Period: 2, Type: models.GracePartial}, {Period: 2, Type: models.GraceTotal}}
		}, true},
		{"every period in grace", func(s *models.BondSpecification) {
			for i := 1; i <= 6; i++ {
				s.GracePeriods = append(s.GracePeriods, models.GracePeriodEntry{Period: i, Type: models.GracePartial})
			}
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := germanBond()
			tt.mutate(&spec)

			res, err := Calculate(spec)
			require.Error(t, err)
			assert.Nil(t, res)

			var se *ScheduleError
			var ce *ConfigurationError
			if tt.schedule {
				assert.True(t, errors.As(err, &se), "want schedule error, got %v", err)
			} else {
				assert.True(t, errors.As(err, &ce), "want configuration error, got %v", err)
			}
		})
	}
}

func TestCalculate_ScheduleErrorNamesPeriod(t *testing.T) {
	spec := germanBond()
	spec.GracePeriods = []models.GracePeriodEntry{{Period: 9, Type: models.GracePartial}}

	_, err := Calculate(spec)
	var se *ScheduleError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 9, se.Period)
	assert.Equal(t, "grace period outside 1..6", se.Reason)
	assert.EqualError(t, err, "schedule error: period 9: grace period outside 1..6")
}

func TestCalculate_DoesNotMutateInput(t *testing.T) {
	spec := germanBond()
	spec.GracePeriods = []models.GracePeriodEntry{{Period: 2, Type: "Partial"}}
	spec.Method = "GERMAN"

	res, err := Calculate(spec)
	require.NoError(t, err)

	assert.Equal(t, models.GracePartial, res.Periods[2].Grace)
	assert.Equal(t, models.GraceType("Partial"), spec.GracePeriods[0].Type)
	assert.Equal(t, models.AmortizationMethod("GERMAN"), spec.Method)
	assert.Empty(t, string(spec.PremiumTiming))
}

func TestCalculate_Idempotent(t *testing.T) {
	spec := germanBond()
	spec.GracePeriods = []models.GracePeriodEntry{{Period: 3, Type: models.GraceTotal}}

	first, err := Calculate(spec)
	require.NoError(t, err)
	second, err := Calculate(spec)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestCalculator_ConcurrentPrecisions(t *testing.T) {
	spec := germanBond()
	spec.Method = models.French

	want := map[int32]string{}
	for _, places := range []int32{8, 16, 24} {
		res, err := NewCalculator(Options{Precision: places}).Calculate(spec)
		require.NoError(t, err)
		b, _ := json.Marshal(res)
		want[places] = string(b)
	}

	var wg sync.WaitGroup
	got := make([]string, 24)
	for i := 0; i < len(got); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			places := []int32{8, 16, 24}[i%3]
			res, err := NewCalculator(Options{Precision: places}).Calculate(spec)
			if err != nil {
				return
			}
			b, _ := json.Marshal(res)
			got[i] = string(b)
		}(i)
	}
	wg.Wait()

	for i, g := range got {
		assert.Equal(t, want[[]int32{8, 16, 24}[i%3]], g, "goroutine %d", i)
	}
}

func TestNewCalculator_Defaults(t *testing.T) {
	c := NewCalculator(Options{})
	assert.Equal(t, DefaultOptions(), c.Options())

	c = NewCalculator(Options{Precision: 10, TotalGrace: CapitalizeTotalGrace})
	assert.Equal(t, int32(10), c.Options().Precision)
	assert.Equal(t, CapitalizeTotalGrace, c.Options().TotalGrace)
	assert.Equal(t, 100, c.Options().Solver.MaxIterations)
}

func TestCalculator_CapitalizePolicy(t *testing.T) {
	spec := germanBond()
	spec.GracePeriods = []models.GracePeriodEntry{{Period: 1, Type: models.GraceTotal}}

	waived, err := NewCalculator(Options{TotalGrace: WaiveTotalGrace}).Calculate(spec)
	require.NoError(t, err)
	capitalized, err := NewCalculator(Options{TotalGrace: CapitalizeTotalGrace}).Calculate(spec)
	require.NoError(t, err)

	assert.True(t, waived.Periods[2].Balance.Equal(d("1000")))
	assert.True(t, capitalized.Periods[2].Balance.GreaterThan(d("1000")))
	assert.True(t, waived.Periods[1].BondholderFlow.IsZero())
	assert.True(t, capitalized.Summary.ActualPrice.GreaterThan(waived.Summary.ActualPrice))
}
