package valuation

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

var (
	// ErrNoSignChange is returned for a series that has no root.
	ErrNoSignChange = errors.New("cash flows do not change sign")
	// ErrNoConvergence is returned when both search methods run out of iterations.
	ErrNoConvergence = errors.New("irr search did not converge")
)

// SolverOptions bound the IRR search.
type SolverOptions struct {
	Tolerance     float64
	MaxIterations int
	Guess         float64
}

const irrFloor = -0.999999

// npv returns Σ f_i/(1+x)^i and its derivative in x.
func npv(x float64, flows []float64) (float64, float64) {
	var v, dv float64
	for i, f := range flows {
		d := math.Pow(1+x, float64(i))
		v += f / d
		dv -= float64(i) * f / (d * (1 + x))
	}
	return v, dv
}

// SolveIRR finds the period rate x with Σ flow_i/(1+x)^i = 0. Newton's
// method runs first; bisection takes over when Newton stalls or leaves the
// domain.
func SolveIRR(flows []decimal.Decimal, opts SolverOptions) (float64, error) {
	xs := make([]float64, len(flows))
	var pos, neg bool
	for i, f := range flows {
		xs[i] = f.InexactFloat64()
		pos = pos || xs[i] > 0
		neg = neg || xs[i] < 0
	}
	if !pos || !neg {
		return 0, ErrNoSignChange
	}

	if x, err := newtonIRR(xs, opts); err == nil {
		return x, nil
	}
	return bisectIRR(xs, opts)
}

func newtonIRR(flows []float64, opts SolverOptions) (float64, error) {
	x := opts.Guess
	for k := 0; k < opts.MaxIterations; k++ {
		v, dv := npv(x, flows)
		if math.Abs(v) <= opts.Tolerance {
			return x, nil
		}
		if dv == 0 || math.IsNaN(dv) || math.IsInf(dv, 0) {
			return 0, fmt.Errorf("newton: zero derivative at %f", x)
		}
		next := x - v/dv
		if next <= irrFloor || math.IsNaN(next) {
			return 0, fmt.Errorf("newton: left the domain at iteration %d", k)
		}
		if math.Abs(next-x) <= opts.Tolerance {
			return next, nil
		}
		x = next
	}
	return 0, ErrNoConvergence
}

// bisectIRR widens [0, 0.1] on the side closer to a root until npv changes
// sign, then halves the bracket.
func bisectIRR(flows []float64, opts SolverOptions) (float64, error) {
	lo, hi := 0.0, 0.1
	vlo, _ := npv(lo, flows)
	vhi, _ := npv(hi, flows)
	k := 0
	for ; k < opts.MaxIterations && vlo*vhi > 0; k++ {
		if math.Abs(vlo) < math.Abs(vhi) {
			lo = (lo + irrFloor) / 2
			vlo, _ = npv(lo, flows)
		} else {
			hi *= 2
			vhi, _ = npv(hi, flows)
		}
	}
	if !(vlo*vhi <= 0) {
		return 0, ErrNoConvergence
	}
	for ; k < opts.MaxIterations; k++ {
		mid := (lo + hi) / 2
		vmid, _ := npv(mid, flows)
		if math.IsNaN(vmid) {
			return 0, ErrNoConvergence
		}
		if hi-lo < opts.Tolerance || math.Abs(vmid) <= opts.Tolerance {
			return mid, nil
		}
		if vlo*vmid < 0 {
			hi = mid
		} else {
			lo, vlo = mid, vmid
		}
	}
	return 0, ErrNoConvergence
}

// annualize turns a period rate into an effective annual percentage.
func annualize(periodRate float64, periodsPerYear decimal.Decimal, a Arithmetic) (decimal.Decimal, error) {
	growth, err := a.Pow(decimal.NewFromFloat(1+periodRate), periodsPerYear)
	if err != nil {
		return decimal.Zero, err
	}
	return growth.Sub(one).Shift(2), nil
}

// solveYield annualizes the IRR of one series, or returns fallback with a
// warning when no IRR can be found.
func solveYield(series models.FlowSeries, flows []decimal.Decimal, periodsPerYear, fallback decimal.Decimal, opts SolverOptions, a Arithmetic) (decimal.Decimal, *models.ConvergenceWarning) {
	x, err := SolveIRR(flows, opts)
	if err == nil {
		var rate decimal.Decimal
		if rate, err = annualize(x, periodsPerYear, a); err == nil {
			return rate, nil
		}
	}
	return fallback, &models.ConvergenceWarning{Series: series, Reason: err.Error(), Fallback: fallback}
}
