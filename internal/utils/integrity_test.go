package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

const secret = "test-secret"

func bond() models.BondSpecification {
	return models.BondSpecification{
		Currency:         "PEN",
		InterestRate:     decimal.RequireFromString("7.5"),
		RateType:         models.RateEffective,
		CommercialValue:  decimal.NewFromInt(1000),
		PaymentFrequency: models.SemiAnnual,
		Years:            decimal.NewFromInt(3),
		Method:           models.German,
		EmissionDate:     time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		COK:              decimal.NewFromInt(5),
		GracePeriods: []models.GracePeriodEntry{
			{Period: 2, Type: models.GraceTotal},
			{Period: 1, Type: models.GracePartial},
		},
	}
}

func TestHMAC_RoundTrip(t *testing.T) {
	spec := bond()
	sig := GenerateHMAC(spec, secret)

	assert.Len(t, sig, 64)
	assert.True(t, VerifyHMAC(spec, sig, secret))
	assert.False(t, VerifyHMAC(spec, sig, "other-secret"))
	assert.False(t, VerifyHMAC(spec, "zz", secret))
}

func TestHMAC_DetectsTampering(t *testing.T) {
	spec := bond()
	sig := GenerateHMAC(spec, secret)

	spec.COK = decimal.NewFromInt(4)
	assert.False(t, VerifyHMAC(spec, sig, secret))
}

func TestHMAC_StableAcrossStorageRoundTrip(t *testing.T) {
	spec := bond()
	sig := GenerateHMAC(spec, secret)

	stored := bond()
	stored.InterestRate = decimal.RequireFromString("7.50")
	stored.EmissionDate = time.Date(2025, 1, 15, 0, 0, 0, 0, time.FixedZone("", 0))
	stored.GracePeriods = []models.GracePeriodEntry{
		{Period: 1, Type: models.GracePartial},
		{Period: 2, Type: models.GraceTotal},
	}

	assert.True(t, VerifyHMAC(stored, sig, secret))
	assert.Equal(t, CanonicalBond(spec), CanonicalBond(stored))
}
