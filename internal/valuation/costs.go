package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

// InitialCosts are the emission costs borne by each side.
type InitialCosts struct {
	Emitter    decimal.Decimal
	Bondholder decimal.Decimal
}

// AllocateInitialCosts applies each cost percentage to the commercial value.
// A cost assigned to both actors is charged in full to each of them.
func AllocateInitialCosts(commercialValue decimal.Decimal, costs models.IssuanceCosts) InitialCosts {
	out := InitialCosts{Emitter: decimal.Zero, Bondholder: decimal.Zero}
	for _, c := range []models.IssuanceCost{costs.Structuring, costs.Placement, costs.Flotation, costs.Settlement} {
		amount := commercialValue.Mul(percent(c.Percent))
		if c.Actor == models.ActorEmitter || c.Actor == models.ActorBoth {
			out.Emitter = out.Emitter.Add(amount)
		}
		if c.Actor == models.ActorBondholder || c.Actor == models.ActorBoth {
			out.Bondholder = out.Bondholder.Add(amount)
		}
	}
	return out
}
