package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

func TestAllocateInitialCosts(t *testing.T) {
	costs := models.IssuanceCosts{
		Structuring: models.IssuanceCost{Percent: d("1"), Actor: models.ActorEmitter},
		Placement:   models.IssuanceCost{Percent: d("0.5"), Actor: models.ActorBondholder},
		Flotation:   models.IssuanceCost{Percent: d("0.45"), Actor: models.ActorBoth},
		Settlement:  models.IssuanceCost{Percent: d("0.5"), Actor: models.ActorBoth},
	}

	got := AllocateInitialCosts(d("1000"), costs)

	assert.True(t, got.Emitter.Equal(d("19.5")), "emitter %s", got.Emitter)
	assert.True(t, got.Bondholder.Equal(d("14.5")), "bondholder %s", got.Bondholder)
}

func TestAllocateInitialCosts_Zero(t *testing.T) {
	got := AllocateInitialCosts(d("1000"), models.IssuanceCosts{})

	assert.True(t, got.Emitter.IsZero())
	assert.True(t, got.Bondholder.IsZero())
}

func TestAllocateInitialCosts_BothChargesEachSideInFull(t *testing.T) {
	costs := models.IssuanceCosts{
		Settlement: models.IssuanceCost{Percent: d("2"), Actor: models.ActorBoth},
	}

	got := AllocateInitialCosts(d("1050"), costs)

	assert.True(t, got.Emitter.Equal(d("21")))
	assert.True(t, got.Bondholder.Equal(d("21")))
}
