package valuation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertNear(t *testing.T, want float64, got decimal.Decimal, delta float64, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want, got.InexactFloat64(), delta, msgAndArgs...)
}

// germanBond is a 1000, 7.5% effective, semi-annual, 3 year bond with no costs.
func germanBond() models.BondSpecification {
	return models.BondSpecification{
		Name:             "scenario",
		Currency:         "PEN",
		InterestRate:     d("7.5"),
		RateType:         models.RateEffective,
		DaysPerYear:      360,
		NominalValue:     d("1000"),
		CommercialValue:  d("1000"),
		PaymentFrequency: models.SemiAnnual,
		Years:            d("3"),
		Method:           models.German,
		EmissionDate:     time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		COK:              d("5"),
		IncomeTax:        d("30"),
	}
}

var testArithmetic = Arithmetic{Places: 16}
