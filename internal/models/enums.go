package models

import (
	"fmt"
	"strings"
)

// RateType identifies how the coupon rate is quoted.
type RateType string

const (
	RateNominal   RateType = "nominal"
	RateEffective RateType = "effective"
)

// Frequency is a payment or compounding frequency.
type Frequency string

const (
	Daily      Frequency = "daily"
	Monthly    Frequency = "monthly"
	Bimonthly  Frequency = "bimonthly"
	Quarterly  Frequency = "quarterly"
	SemiAnnual Frequency = "semi_annual"
	Annual     Frequency = "annual"
)

// AmortizationMethod selects the repayment convention.
type AmortizationMethod string

const (
	German AmortizationMethod = "german"
	French AmortizationMethod = "french"
)

// GraceType is the grace treatment of a single period.
type GraceType string

const (
	GraceNone    GraceType = "none"
	GracePartial GraceType = "partial"
	GraceTotal   GraceType = "total"
)

// Actor is the party that bears an issuance cost.
type Actor string

const (
	ActorEmitter    Actor = "emitter"
	ActorBondholder Actor = "bondholder"
	ActorBoth       Actor = "both"
)

// PremiumTiming selects the balance the premium is sized from.
type PremiumTiming string

const (
	PremiumAtBeginning PremiumTiming = "beginning"
	PremiumAtEnd       PremiumTiming = "end"
)

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}

// ParseRateType validates a rate type string.
func ParseRateType(s string) (RateType, error) {
	switch v := RateType(normalize(s)); v {
	case RateNominal, RateEffective:
		return v, nil
	}
	return "", fmt.Errorf("unknown rate type %q", s)
}

// ParseFrequency validates a frequency string. "semi-annual" is accepted as an alias.
func ParseFrequency(s string) (Frequency, error) {
	switch v := Frequency(normalize(s)); v {
	case Daily, Monthly, Bimonthly, Quarterly, SemiAnnual, Annual:
		return v, nil
	}
	return "", fmt.Errorf("unknown frequency %q", s)
}

// ParseAmortizationMethod validates an amortization method string.
func ParseAmortizationMethod(s string) (AmortizationMethod, error) {
	switch v := AmortizationMethod(normalize(s)); v {
	case German, French:
		return v, nil
	}
	return "", fmt.Errorf("unknown amortization method %q", s)
}

// ParseGraceType validates a grace type string. An empty string means none.
func ParseGraceType(s string) (GraceType, error) {
	if strings.TrimSpace(s) == "" {
		return GraceNone, nil
	}
	switch v := GraceType(normalize(s)); v {
	case GraceNone, GracePartial, GraceTotal:
		return v, nil
	}
	return "", fmt.Errorf("unknown grace period type %q", s)
}

// ParseActor validates an actor string.
func ParseActor(s string) (Actor, error) {
	switch v := Actor(normalize(s)); v {
	case ActorEmitter, ActorBondholder, ActorBoth:
		return v, nil
	}
	return "", fmt.Errorf("unknown actor %q", s)
}

// ParsePremiumTiming validates a premium timing string.
func ParsePremiumTiming(s string) (PremiumTiming, error) {
	switch v := PremiumTiming(normalize(s)); v {
	case PremiumAtBeginning, PremiumAtEnd:
		return v, nil
	}
	return "", fmt.Errorf("unknown premium timing %q", s)
}

func (r *RateType) UnmarshalText(b []byte) error {
	v, err := ParseRateType(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func (f *Frequency) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*f = ""
		return nil
	}
	v, err := ParseFrequency(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (m *AmortizationMethod) UnmarshalText(b []byte) error {
	v, err := ParseAmortizationMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (g *GraceType) UnmarshalText(b []byte) error {
	v, err := ParseGraceType(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

func (a *Actor) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*a = ""
		return nil
	}
	v, err := ParseActor(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func (p *PremiumTiming) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*p = ""
		return nil
	}
	v, err := ParsePremiumTiming(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
