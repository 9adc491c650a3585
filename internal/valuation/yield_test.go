package valuation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

func flows(vals ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = d(v)
	}
	return out
}

var solverDefaults = DefaultOptions().Solver

func TestSolveIRR(t *testing.T) {
	tests := []struct {
		name  string
		flows []decimal.Decimal
		want  float64
	}{
		{"one period", flows("-100", "110"), 0.1},
		{"two periods", flows("-100", "0", "121"), 0.1},
		{"emitter side", flows("1000", "-50", "-1050"), 0.05},
		{"zero yield", flows("-300", "100", "100", "100"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SolveIRR(tt.flows, solverDefaults)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestSolveIRR_NoSignChange(t *testing.T) {
	_, err := SolveIRR(flows("0", "-10", "-10"), solverDefaults)
	assert.ErrorIs(t, err, ErrNoSignChange)

	_, err = SolveIRR(flows("5", "10"), solverDefaults)
	assert.ErrorIs(t, err, ErrNoSignChange)
}

func TestBisectIRR_WidensBracket(t *testing.T) {
	got, err := bisectIRR([]float64{-100, 0, 144}, solverDefaults)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, got, 1e-6)

	got, err = bisectIRR([]float64{-100, 50}, solverDefaults)
	require.NoError(t, err)
	assert.InDelta(t, -0.5, got, 1e-6)
}

func TestNewtonIRR_GivesUpOnBadGuess(t *testing.T) {
	opts := solverDefaults
	opts.MaxIterations = 1
	_, err := newtonIRR([]float64{-100, 0, 0, 0, 0, 0, 0, 0, 0, 1000}, opts)
	assert.Error(t, err)
}

func TestSolveYield_Fallback(t *testing.T) {
	fallback := d("7.5")
	rate, warn := solveYield(models.EmitterSeries, flows("0", "-10"), d("2"), fallback, solverDefaults, testArithmetic)

	require.NotNil(t, warn)
	assert.True(t, rate.Equal(fallback))
	assert.Equal(t, models.EmitterSeries, warn.Series)
	assert.Contains(t, warn.Error(), "emitter")
}

func TestSolveYield_Annualizes(t *testing.T) {
	rate, warn := solveYield(models.BondholderSeries, flows("-100", "105"), d("2"), decimal.Zero, solverDefaults, testArithmetic)

	assert.Nil(t, warn)
	assertNear(t, 10.25, rate, 1e-4)
}
