// Package report turns a valuation result into display strings.
package report

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/valuation"
)

const (
	moneyPlaces   = 2
	percentPlaces = 7
	factorPlaces  = 4
)

// Row is one schedule period formatted for display.
type Row struct {
	Period                int    `json:"period"`
	Date                  string `json:"date"`
	Grace                 string `json:"grace"`
	Balance               string `json:"balance"`
	Coupon                string `json:"coupon"`
	Quota                 string `json:"quota"`
	Amortization          string `json:"amortization"`
	Premium               string `json:"premium"`
	Shield                string `json:"shield"`
	EmitterFlow           string `json:"emitter_flow"`
	EmitterFlowWithShield string `json:"emitter_flow_with_shield"`
	BondholderFlow        string `json:"bondholder_flow"`
	ActualizedFlow        string `json:"actualized_flow"`
	FlowByTerm            string `json:"flow_by_term"`
	ConvexityFactor       string `json:"convexity_factor"`
}

// Summary is the calculation summary formatted for display.
type Summary struct {
	FrequencyDays          int    `json:"frequency_days"`
	CompoundingDays        int    `json:"compounding_days"`
	PeriodsPerYear         string `json:"periods_per_year"`
	TotalPeriods           int    `json:"total_periods"`
	EffectiveAnnualRate    string `json:"effective_annual_rate"`
	EffectivePeriodRate    string `json:"effective_period_rate"`
	PeriodCOK              string `json:"period_cok"`
	InitialEmitterCosts    string `json:"initial_emitter_costs"`
	InitialBondholderCosts string `json:"initial_bondholder_costs"`
	ActualPrice            string `json:"actual_price"`
	Utility                string `json:"utility"`
	Duration               string `json:"duration"`
	Convexity              string `json:"convexity"`
	Total                  string `json:"total"`
	ModifiedDuration       string `json:"modified_duration"`
	EmitterTCEA            string `json:"emitter_tcea"`
	EmitterTCEAWithShield  string `json:"emitter_tcea_with_shield"`
	BondholderTREA         string `json:"bondholder_trea"`
	Degraded               bool   `json:"degraded"`
}

// Report is a rendered schedule.
type Report struct {
	Bond            string          `json:"bond"`
	Currency        string          `json:"currency"`
	Rows            []Row           `json:"rows"`
	Summary         Summary         `json:"summary"`
	Interpretations Interpretations `json:"interpretations"`
	Warnings        []string        `json:"warnings,omitempty"`
}

func money(d decimal.Decimal) string   { return d.StringFixed(moneyPlaces) }
func percent(d decimal.Decimal) string { return d.StringFixed(percentPlaces) + "%" }
func factor(d decimal.Decimal) string  { return d.StringFixed(factorPlaces) }

// Render formats the valuation res of spec. Period 0 carries only flows, so
// its other columns are blank.
func Render(spec models.BondSpecification, res *valuation.Result) Report {
	rep := Report{Bond: spec.Name, Currency: spec.Currency, Rows: make([]Row, 0, len(res.Periods))}
	for _, p := range res.Periods {
		row := Row{
			Period:                p.Index,
			Date:                  p.Date.Format("2006-01-02"),
			EmitterFlow:           money(p.EmitterFlow),
			EmitterFlowWithShield: money(p.EmitterFlowWithShield),
			BondholderFlow:        money(p.BondholderFlow),
		}
		if p.Index > 0 {
			row.Grace = string(p.Grace)
			row.Balance = money(p.Balance)
			row.Coupon = money(p.Coupon)
			row.Quota = money(p.Quota)
			row.Amortization = money(p.Amortization)
			row.Premium = money(p.Premium)
			row.Shield = money(p.Shield)
			row.ActualizedFlow = money(p.ActualizedFlow)
			row.FlowByTerm = money(p.FlowByTerm)
			row.ConvexityFactor = money(p.ConvexityFactor)
		}
		rep.Rows = append(rep.Rows, row)
	}

	s := res.Summary
	rep.Summary = Summary{
		FrequencyDays:          s.FrequencyDays,
		CompoundingDays:        s.CompoundingDays,
		PeriodsPerYear:         factor(s.PeriodsPerYear),
		TotalPeriods:           s.TotalPeriods,
		EffectiveAnnualRate:    percent(s.EffectiveAnnualRate),
		EffectivePeriodRate:    percent(s.EffectivePeriodRate),
		PeriodCOK:              percent(s.PeriodCOK),
		InitialEmitterCosts:    money(s.InitialEmitterCosts),
		InitialBondholderCosts: money(s.InitialBondholderCosts),
		ActualPrice:            money(s.ActualPrice),
		Utility:                money(s.Utility),
		Duration:               factor(s.Duration),
		Convexity:              factor(s.Convexity),
		Total:                  factor(s.Total),
		ModifiedDuration:       factor(s.ModifiedDuration),
		EmitterTCEA:            percent(s.EmitterTCEA),
		EmitterTCEAWithShield:  percent(s.EmitterTCEAWithShield),
		BondholderTREA:         percent(s.BondholderTREA),
		Degraded:               s.Degraded,
	}
	rep.Interpretations = Interpret(s, spec.NominalValue, spec.CommercialValue, spec.COK)
	for _, w := range s.Warnings {
		rep.Warnings = append(rep.Warnings, w.Error())
	}
	return rep
}

// Text lays the report out as an aligned plain-text table followed by the summary.
func (r Report) Text() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s (%s)\n\n", r.Bond, r.Currency)

	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "#\tDate\tGrace\tBalance\tCoupon\tQuota\tAmortization\tPremium\tShield\tEmitter\tEmitter+Shield\tBondholder\t")
	for _, row := range r.Rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			row.Period, row.Date, row.Grace, row.Balance, row.Coupon, row.Quota, row.Amortization,
			row.Premium, row.Shield, row.EmitterFlow, row.EmitterFlowWithShield, row.BondholderFlow)
	}
	w.Flush()

	s := r.Summary
	buf.WriteString("\n")
	w = tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, line := range [][2]string{
		{"Periods", fmt.Sprintf("%d x %d days (%s per year)", s.TotalPeriods, s.FrequencyDays, s.PeriodsPerYear)},
		{"Effective annual rate", s.EffectiveAnnualRate},
		{"Effective period rate", s.EffectivePeriodRate},
		{"Period COK", s.PeriodCOK},
		{"Initial emitter costs", s.InitialEmitterCosts},
		{"Initial bondholder costs", s.InitialBondholderCosts},
		{"Actual price", s.ActualPrice},
		{"Utility", s.Utility},
		{"Duration", s.Duration},
		{"Convexity", s.Convexity},
		{"Duration + convexity", s.Total},
		{"Modified duration", s.ModifiedDuration},
		{"Emitter TCEA", s.EmitterTCEA},
		{"Emitter TCEA with shield", s.EmitterTCEAWithShield},
		{"Bondholder TREA", s.BondholderTREA},
	} {
		fmt.Fprintf(w, "%s:\t%s\n", line[0], line[1])
	}
	w.Flush()

	in := r.Interpretations
	if in.Conclusion != "" {
		buf.WriteString("\nInterpretation\n")
		for _, line := range [][2]string{
			{"Price vs yield", in.PriceYield},
			{"Convexity", in.Convexity},
			{"Modified duration", in.ModifiedDuration},
			{"Volatility", in.Volatility},
			{"Current price", in.CurrentPrice},
			{"Utility", in.Utility},
			{"Emitter TCEA", in.EmitterTCEA},
			{"Emitter TCEA with shield", in.EmitterTCEAWithShield},
			{"Bondholder TREA", in.BondholderTREA},
			{"Conclusion", in.Conclusion},
		} {
			if line[1] != "" {
				fmt.Fprintf(&buf, "- %s: %s\n", line[0], line[1])
			}
		}
		buf.WriteString("\n")
	}

	for _, warn := range r.Warnings {
		fmt.Fprintf(&buf, "warning: %s\n", warn)
	}
	return buf.String()
}
