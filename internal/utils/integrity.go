package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

// CanonicalBond renders the fields of a bond that affect its valuation in a
// fixed order. Decimals print without trailing zeros, so a value read back
// from a NUMERIC column signs the same as the value that was written.
func CanonicalBond(spec models.BondSpecification) string {
	var b strings.Builder
	field := func(name string, v any) {
		fmt.Fprintf(&b, "%s=%v;", name, v)
	}
	field("currency", spec.Currency)
	field("interest_rate", spec.InterestRate.String())
	field("rate_type", spec.RateType)
	field("compounding_frequency", spec.CompoundingFrequency)
	field("days_per_year", spec.DaysPerYear)
	field("nominal_value", spec.NominalValue.String())
	field("commercial_value", spec.CommercialValue.String())
	field("payment_frequency", spec.PaymentFrequency)
	field("years", spec.Years.String())
	field("method", spec.Method)
	field("emission_date", spec.EmissionDate.Format("2006-01-02"))
	field("premium", spec.Premium.String())
	field("premium_timing", spec.PremiumTiming)
	for _, c := range []struct {
		name string
		cost models.IssuanceCost
	}{
		{"structuring", spec.Costs.Structuring},
		{"placement", spec.Costs.Placement},
		{"flotation", spec.Costs.Flotation},
		{"settlement", spec.Costs.Settlement},
	} {
		field(c.name, c.cost.Percent.String()+"/"+string(c.cost.Actor))
	}
	field("cok", spec.COK.String())
	field("income_tax", spec.IncomeTax.String())

	grace := append([]models.GracePeriodEntry(nil), spec.GracePeriods...)
	sort.Slice(grace, func(i, j int) bool { return grace[i].Period < grace[j].Period })
	for _, g := range grace {
		field(fmt.Sprintf("grace.%d", g.Period), g.Type)
	}
	return b.String()
}

// GenerateHMAC signs the canonical form of a bond
func GenerateHMAC(spec models.BondSpecification, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(CanonicalBond(spec)))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyHMAC reports whether signature matches the bond
func VerifyHMAC(spec models.BondSpecification, signature, secret string) bool {
	want, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	got, _ := hex.DecodeString(GenerateHMAC(spec, secret))
	return hmac.Equal(got, want)
}
