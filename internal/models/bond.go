package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GracePeriodEntry marks a single period as partial or total grace.
type GracePeriodEntry struct {
	Period   int       `json:"period"`
	Type     GraceType `json:"type"`
	Duration int       `json:"duration,omitempty"` // informational only
}

// IssuanceCost is a percentage of the commercial value charged at emission.
type IssuanceCost struct {
	Percent decimal.Decimal `json:"percent"`
	Actor   Actor           `json:"actor"`
}

// IssuanceCosts groups the four emission costs.
type IssuanceCosts struct {
	Structuring IssuanceCost `json:"structuring"`
	Placement   IssuanceCost `json:"placement"`
	Flotation   IssuanceCost `json:"flotation"`
	Settlement  IssuanceCost `json:"settlement"` // CAVALI
}

// BondSpecification is the complete input of a valuation.
// Rates and cost fields are percentages (7.5 means 7.5%).
type BondSpecification struct {
	Name                 string             `json:"name"`
	Currency             string             `json:"currency"`
	InterestRate         decimal.Decimal    `json:"interest_rate"`
	RateType             RateType           `json:"rate_type"`
	CompoundingFrequency Frequency          `json:"compounding_frequency,omitempty"`
	DaysPerYear          int                `json:"days_per_year,omitempty"`
	NominalValue         decimal.Decimal    `json:"nominal_value"`
	CommercialValue      decimal.Decimal    `json:"commercial_value"`
	PaymentFrequency     Frequency          `json:"payment_frequency"`
	Years                decimal.Decimal    `json:"years"`
	Method               AmortizationMethod `json:"method"`
	EmissionDate         time.Time          `json:"emission_date"`
	Premium              decimal.Decimal    `json:"premium"`
	PremiumTiming        PremiumTiming      `json:"premium_timing,omitempty"`
	Costs                IssuanceCosts      `json:"costs"`
	COK                  decimal.Decimal    `json:"cok"`
	IncomeTax            decimal.Decimal    `json:"income_tax"`
	GracePeriods         []GracePeriodEntry `json:"grace_periods"`
}

// BondRecord is a stored bond specification owned by a user.
type BondRecord struct {
	ID        string            `json:"id"`
	UserID    int64             `json:"user_id"`
	Spec      BondSpecification `json:"spec"`
	HMAC      string            `json:"hmac"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
