package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Period is one row of a bond schedule. Period 0 is the emission.
type Period struct {
	Index                 int             `json:"period"`
	Date                  time.Time       `json:"date"`
	Grace                 GraceType       `json:"grace,omitempty"`
	Balance               decimal.Decimal `json:"balance"`
	Coupon                decimal.Decimal `json:"coupon"`
	Quota                 decimal.Decimal `json:"quota"`
	Amortization          decimal.Decimal `json:"amortization"`
	Premium               decimal.Decimal `json:"premium"`
	Shield                decimal.Decimal `json:"shield"`
	EmitterFlow           decimal.Decimal `json:"emitter_flow"`
	EmitterFlowWithShield decimal.Decimal `json:"emitter_flow_with_shield"`
	BondholderFlow        decimal.Decimal `json:"bondholder_flow"`
	ActualizedFlow        decimal.Decimal `json:"actualized_flow"`
	FlowByTerm            decimal.Decimal `json:"flow_by_term"`
	ConvexityFactor       decimal.Decimal `json:"convexity_factor"`
}

// FlowSeries names one of the three signed cash-flow series.
type FlowSeries string

const (
	EmitterSeries           FlowSeries = "emitter"
	EmitterWithShieldSeries FlowSeries = "emitter_with_shield"
	BondholderSeries        FlowSeries = "bondholder"
)

// ConvergenceWarning reports that a yield was replaced by its closed-form approximation.
type ConvergenceWarning struct {
	Series   FlowSeries      `json:"series"`
	Reason   string          `json:"reason"`
	Fallback decimal.Decimal `json:"fallback"`
}

func (w ConvergenceWarning) Error() string {
	return fmt.Sprintf("irr for %s series did not converge (%s), using %s%%", w.Series, w.Reason, w.Fallback.StringFixed(5))
}

// CalculationSummary holds the derived figures of a schedule.
// Rates are percentages.
type CalculationSummary struct {
	FrequencyDays          int                  `json:"frequency_days"`
	CompoundingDays        int                  `json:"compounding_days"`
	PeriodsPerYear         decimal.Decimal      `json:"periods_per_year"`
	TotalPeriods           int                  `json:"total_periods"`
	EffectiveAnnualRate    decimal.Decimal      `json:"effective_annual_rate"`
	EffectivePeriodRate    decimal.Decimal      `json:"effective_period_rate"`
	PeriodCOK              decimal.Decimal      `json:"period_cok"`
	InitialEmitterCosts    decimal.Decimal      `json:"initial_emitter_costs"`
	InitialBondholderCosts decimal.Decimal      `json:"initial_bondholder_costs"`
	ActualPrice            decimal.Decimal      `json:"actual_price"`
	Utility                decimal.Decimal      `json:"utility"`
	Duration               decimal.Decimal      `json:"duration"`
	Convexity              decimal.Decimal      `json:"convexity"`
	Total                  decimal.Decimal      `json:"total"`
	ModifiedDuration       decimal.Decimal      `json:"modified_duration"`
	EmitterTCEA            decimal.Decimal      `json:"emitter_tcea"`
	EmitterTCEAWithShield  decimal.Decimal      `json:"emitter_tcea_with_shield"`
	BondholderTREA         decimal.Decimal      `json:"bondholder_trea"`
	Degraded               bool                 `json:"degraded"`
	Warnings               []ConvergenceWarning `json:"warnings,omitempty"`
}
