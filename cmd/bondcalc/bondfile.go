package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

type costFile struct {
	Percent string `yaml:"percent"`
	Actor   string `yaml:"actor"`
}

type graceFile struct {
	Period   int    `yaml:"period"`
	Type     string `yaml:"type"`
	Duration int    `yaml:"duration"`
}

// bondFile is the YAML layout of a bond. Numbers are kept as text so they
// reach the engine without passing through float64.
type bondFile struct {
	Name                 string      `yaml:"name"`
	Currency             string      `yaml:"currency"`
	InterestRate         string      `yaml:"interest_rate"`
	RateType             string      `yaml:"rate_type"`
	CompoundingFrequency string      `yaml:"compounding_frequency"`
	DaysPerYear          int         `yaml:"days_per_year"`
	NominalValue         string      `yaml:"nominal_value"`
	CommercialValue      string      `yaml:"commercial_value"`
	PaymentFrequency     string      `yaml:"payment_frequency"`
	Years                string      `yaml:"years"`
	Method               string      `yaml:"method"`
	EmissionDate         string      `yaml:"emission_date"`
	Premium              string      `yaml:"premium"`
	PremiumTiming        string      `yaml:"premium_timing"`
	Costs                struct {
		Structuring costFile `yaml:"structuring"`
		Placement   costFile `yaml:"placement"`
		Flotation   costFile `yaml:"flotation"`
		Settlement  costFile `yaml:"settlement"`
	} `yaml:"costs"`
	COK          string      `yaml:"cok"`
	IncomeTax    string      `yaml:"income_tax"`
	GracePeriods []graceFile `yaml:"grace_periods"`
}

func readBondFile(path string) (models.BondSpecification, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.BondSpecification{}, fmt.Errorf("failed to read bond file: %w", err)
	}
	return parseBond(raw)
}

func parseBond(raw []byte) (models.BondSpecification, error) {
	var f bondFile
	if err := yaml.UnmarshalStrict(raw, &f); err != nil {
		return models.BondSpecification{}, fmt.Errorf("failed to parse bond file: %w", err)
	}
	return f.spec()
}

// number parses an optional decimal field; empty means zero.
func number(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

func (f bondFile) spec() (models.BondSpecification, error) {
	spec := models.BondSpecification{
		Name:                 f.Name,
		Currency:             f.Currency,
		RateType:             models.RateType(f.RateType),
		CompoundingFrequency: models.Frequency(f.CompoundingFrequency),
		DaysPerYear:          f.DaysPerYear,
		PaymentFrequency:     models.Frequency(f.PaymentFrequency),
		Method:               models.AmortizationMethod(f.Method),
		PremiumTiming:        models.PremiumTiming(f.PremiumTiming),
	}

	var err error
	for _, n := range []struct {
		field string
		text  string
		dst   *decimal.Decimal
	}{
		{"interest_rate", f.InterestRate, &spec.InterestRate},
		{"nominal_value", f.NominalValue, &spec.NominalValue},
		{"commercial_value", f.CommercialValue, &spec.CommercialValue},
		{"years", f.Years, &spec.Years},
		{"premium", f.Premium, &spec.Premium},
		{"cok", f.COK, &spec.COK},
		{"income_tax", f.IncomeTax, &spec.IncomeTax},
		{"costs.structuring", f.Costs.Structuring.Percent, &spec.Costs.Structuring.Percent},
		{"costs.placement", f.Costs.Placement.Percent, &spec.Costs.Placement.Percent},
		{"costs.flotation", f.Costs.Flotation.Percent, &spec.Costs.Flotation.Percent},
		{"costs.settlement", f.Costs.Settlement.Percent, &spec.Costs.Settlement.Percent},
	} {
		if *n.dst, err = number(n.field, n.text); err != nil {
			return models.BondSpecification{}, err
		}
	}
	spec.Costs.Structuring.Actor = models.Actor(f.Costs.Structuring.Actor)
	spec.Costs.Placement.Actor = models.Actor(f.Costs.Placement.Actor)
	spec.Costs.Flotation.Actor = models.Actor(f.Costs.Flotation.Actor)
	spec.Costs.Settlement.Actor = models.Actor(f.Costs.Settlement.Actor)

	if spec.EmissionDate, err = time.Parse("2006-01-02", f.EmissionDate); err != nil {
		return models.BondSpecification{}, fmt.Errorf("emission_date: %w", err)
	}
	for _, g := range f.GracePeriods {
		spec.GracePeriods = append(spec.GracePeriods, models.GracePeriodEntry{
			Period:   g.Period,
			Type:     models.GraceType(g.Type),
			Duration: g.Duration,
		})
	}
	return spec, nil
}
