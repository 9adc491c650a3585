package valuation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// guardDigits are carried by intermediate transcendental steps.
const guardDigits = 4

var one = decimal.NewFromInt(1)

// Arithmetic is the rounding context of one calculation. Places is the
// number of decimal places kept by divisions, powers and logarithms.
type Arithmetic struct {
	Places int32
}

func (a Arithmetic) Round(x decimal.Decimal) decimal.Decimal {
	return x.Round(a.Places)
}

func (a Arithmetic) Div(x, y decimal.Decimal) decimal.Decimal {
	return x.DivRound(y, a.Places)
}

// PowInt raises base to an integer power by repeated squaring, rounding
// every product so the digit count stays bounded.
func (a Arithmetic) PowInt(base decimal.Decimal, n int) decimal.Decimal {
	if n < 0 {
		return a.Div(one, a.PowInt(base, -n))
	}
	places := a.Places + guardDigits
	result := one
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(places)
		}
		base = base.Mul(base).Round(places)
		n >>= 1
	}
	return a.Round(result)
}

// Pow raises a positive base to an arbitrary exponent as exp(y·ln x).
func (a Arithmetic) Pow(base, exp decimal.Decimal) (decimal.Decimal, error) {
	if exp.Equal(exp.Truncate(0)) && exp.Abs().LessThan(decimal.NewFromInt(1<<20)) {
		return a.PowInt(base, int(exp.IntPart())), nil
	}
	if !base.IsPositive() {
		return decimal.Zero, fmt.Errorf("pow: base %s must be positive for exponent %s", base, exp)
	}
	places := a.Places + guardDigits
	ln, err := base.Ln(places)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pow: %w", err)
	}
	r, err := ln.Mul(exp).Round(places).ExpTaylor(places)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pow: %w", err)
	}
	return a.Round(r), nil
}

// percent converts a percentage to a fraction exactly.
func percent(p decimal.Decimal) decimal.Decimal {
	return p.Shift(-2)
}
