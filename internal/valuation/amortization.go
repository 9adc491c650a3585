package valuation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

// TotalGracePolicy decides what happens to the interest accrued during a
// total grace period.
type TotalGracePolicy string

const (
	// WaiveTotalGrace reports the coupon but neither pays nor capitalizes it.
	WaiveTotalGrace TotalGracePolicy = "waive"
	// CapitalizeTotalGrace adds the accrued coupon to the outstanding balance.
	CapitalizeTotalGrace TotalGracePolicy = "capitalize"
)

// ParseTotalGracePolicy validates a policy name.
func ParseTotalGracePolicy(s string) (TotalGracePolicy, error) {
	switch p := TotalGracePolicy(s); p {
	case WaiveTotalGrace, CapitalizeTotalGrace:
		return p, nil
	case "":
		return WaiveTotalGrace, nil
	}
	return "", fmt.Errorf("unknown total grace policy %q", s)
}

// Installment is what a standard period repays.
type Installment struct {
	Amortization decimal.Decimal
	Quota        decimal.Decimal
}

// AmortizationStrategy computes the installment of standard periods. A
// strategy value belongs to a single calculation.
type AmortizationStrategy interface {
	Method() models.AmortizationMethod
	Conventions() DayCountConvention
	// Rebase fixes the installment that repays balance over n standard periods.
	Rebase(balance decimal.Decimal, n int, rate decimal.Decimal, a Arithmetic)
	Installment(balance, coupon decimal.Decimal) Installment
}

// NewStrategy returns a fresh strategy for method.
func NewStrategy(method models.AmortizationMethod) (AmortizationStrategy, error) {
	switch method {
	case models.German:
		return &germanStrategy{}, nil
	case models.French:
		return &frenchStrategy{}, nil
	}
	return nil, configErr("method", "unsupported amortization method %q", method)
}

// germanStrategy repays a constant amortization per standard period.
type germanStrategy struct {
	amortization decimal.Decimal
}

func (s *germanStrategy) Method() models.AmortizationMethod { return models.German }

func (s *germanStrategy) Conventions() DayCountConvention { return GermanDayCount }

func (s *germanStrategy) Rebase(balance decimal.Decimal, n int, _ decimal.Decimal, a Arithmetic) {
	s.amortization = a.Div(balance, decimal.NewFromInt(int64(n)))
}

func (s *germanStrategy) Installment(_, coupon decimal.Decimal) Installment {
	return Installment{Amortization: s.amortization, Quota: coupon.Add(s.amortization)}
}

// frenchStrategy pays a constant annuity per standard period.
type frenchStrategy struct {
	quota decimal.Decimal
}

func (s *frenchStrategy) Method() models.AmortizationMethod { return models.French }

func (s *frenchStrategy) Conventions() DayCountConvention { return FrenchDayCount }

// Rebase solves quota = B·r·(1+r)^n / ((1+r)^n - 1).
func (s *frenchStrategy) Rebase(balance decimal.Decimal, n int, rate decimal.Decimal, a Arithmetic) {
	if rate.IsZero() {
		s.quota = a.Div(balance, decimal.NewFromInt(int64(n)))
		return
	}
	growth := a.PowInt(one.Add(rate), n)
	s.quota = a.Div(balance.Mul(rate).Mul(growth), growth.Sub(one))
}

func (s *frenchStrategy) Installment(_, coupon decimal.Decimal) Installment {
	return Installment{Amortization: s.quota.Sub(coupon), Quota: s.quota}
}

// scheduleInput is everything the period walker needs.
type scheduleInput struct {
	Principal     decimal.Decimal
	Rate          decimal.Decimal
	TotalPeriods  int
	Grace         map[int]models.GraceType
	Policy        TotalGracePolicy
	Premium       decimal.Decimal // fraction
	PremiumTiming models.PremiumTiming
	IncomeTax     decimal.Decimal // fraction
}

// amortizationRow holds the unsigned figures of one period.
type amortizationRow struct {
	Index        int
	Grace        models.GraceType
	Balance      decimal.Decimal
	Coupon       decimal.Decimal
	Quota        decimal.Decimal
	Amortization decimal.Decimal
	Premium      decimal.Decimal
	Shield       decimal.Decimal
}

func countStandardPeriods(totalPeriods int, grace map[int]models.GraceType) int {
	n := totalPeriods
	for p, g := range grace {
		if p >= 1 && p <= totalPeriods && g != models.GraceNone {
			n--
		}
	}
	return n
}

// buildSchedule walks periods 1..N. Grace state is looked up per period;
// the only state carried between periods is the outstanding balance.
func buildSchedule(st AmortizationStrategy, in scheduleInput, a Arithmetic) ([]amortizationRow, error) {
	if in.TotalPeriods < 1 {
		return nil, scheduleErr(0, "the bond has %d payment periods", in.TotalPeriods)
	}
	standard := countStandardPeriods(in.TotalPeriods, in.Grace)
	if standard <= 0 {
		return nil, scheduleErr(0, "no period left to amortize %s after %d grace periods", in.Principal, in.TotalPeriods-standard)
	}

	st.Rebase(in.Principal, standard, in.Rate, a)
	balance := in.Principal
	remaining := standard
	rebase := false

	rows := make([]amortizationRow, 0, in.TotalPeriods)
	for i := 1; i <= in.TotalPeriods; i++ {
		grace := in.Grace[i]
		if grace == "" {
			grace = models.GraceNone
		}
		row := amortizationRow{
			Index:        i,
			Grace:        grace,
			Balance:      balance,
			Coupon:       a.Round(balance.Mul(in.Rate)),
			Amortization: decimal.Zero,
			Quota:        decimal.Zero,
			Premium:      decimal.Zero,
		}

		switch grace {
		case models.GracePartial:
			row.Quota = row.Coupon
		case models.GraceTotal:
			if in.Policy == CapitalizeTotalGrace {
				balance = balance.Add(row.Coupon)
				rebase = true
			}
		default:
			if rebase {
				st.Rebase(balance, remaining, in.Rate, a)
				rebase = false
			}
			inst := st.Installment(balance, row.Coupon)
			row.Amortization = inst.Amortization
			row.Quota = inst.Quota
			balance = balance.Sub(inst.Amortization)
			remaining--
		}

		if i == in.TotalPeriods {
			base := in.Principal
			if in.PremiumTiming == models.PremiumAtEnd {
				base = row.Balance
			}
			row.Premium = a.Round(base.Mul(in.Premium))
		}
		row.Shield = a.Round(row.Coupon.Mul(in.IncomeTax))
		rows = append(rows, row)
	}
	return rows, nil
}
