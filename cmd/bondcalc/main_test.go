package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/report"
)

const bondYAML = `
name: Bono A
currency: PEN
interest_rate: 7.5
rate_type: effective
nominal_value: 1000
commercial_value: 1000
payment_frequency: semi_annual
years: 3
method: german
emission_date: "2025-01-15"
premium: 0.8
premium_timing: beginning
costs:
  structuring: {percent: 1}
  settlement: {percent: 0.5, actor: both}
cok: 5
income_tax: 30
grace_periods:
  - {period: 1, type: partial}
`

func writeBond(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bond.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseBond(t *testing.T) {
	spec, err := parseBond([]byte(bondYAML))
	require.NoError(t, err)

	assert.Equal(t, "Bono A", spec.Name)
	assert.Equal(t, "7.5", spec.InterestRate.String())
	assert.Equal(t, models.German, spec.Method)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), spec.EmissionDate)
	assert.Equal(t, "1", spec.Costs.Structuring.Percent.String())
	assert.Equal(t, models.Actor(""), spec.Costs.Structuring.Actor)
	assert.Equal(t, models.ActorBoth, spec.Costs.Settlement.Actor)
	require.Len(t, spec.GracePeriods, 1)
	assert.Equal(t, models.GracePartial, spec.GracePeriods[0].Type)
}

func TestParseBond_Errors(t *testing.T) {
	_, err := parseBond([]byte("interest_rate: seven\nemission_date: \"2025-01-15\"\n"))
	assert.ErrorContains(t, err, "interest_rate")

	_, err = parseBond([]byte("emission_date: 15/01/2025\n"))
	assert.ErrorContains(t, err, "emission_date")

	_, err = parseBond([]byte("coupon: 5\n"))
	assert.ErrorContains(t, err, "failed to parse bond file")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		calculateCmd.Flags().Set("json", "false")
		calculateCmd.Flags().Set("total-grace", "waive")
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCalculateCommand_Text(t *testing.T) {
	out, err := run(t, "calculate", "--file", writeBond(t, bondYAML))
	require.NoError(t, err)

	assert.Contains(t, out, "Bono A (PEN)")
	assert.Contains(t, out, "Bondholder TREA:")
	assert.Contains(t, out, "partial")
}

func TestCalculateCommand_JSON(t *testing.T) {
	out, err := run(t, "calculate", "-f", writeBond(t, bondYAML), "--json")
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Len(t, rep.Rows, 7)
	assert.Equal(t, "8.00", rep.Rows[6].Premium)
	assert.Equal(t, "15.00", rep.Summary.InitialEmitterCosts)
}

func TestCalculateCommand_Errors(t *testing.T) {
	_, err := run(t, "calculate", "--file", writeBond(t, "rate_type: nominal\nemission_date: \"2025-01-15\"\n"))
	assert.Error(t, err)

	_, err = run(t, "calculate", "--file", writeBond(t, bondYAML), "--total-grace", "defer")
	assert.ErrorContains(t, err, "unknown total grace policy")
}
