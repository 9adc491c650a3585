package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

// Interpretations are plain-language readings of a calculation summary.
// Each reading is picked from fixed bands of the figure it describes.
type Interpretations struct {
	PriceYield            string `json:"price_yield"`
	Convexity             string `json:"convexity"`
	ModifiedDuration      string `json:"modified_duration"`
	Volatility            string `json:"volatility,omitempty"`
	CurrentPrice          string `json:"current_price"`
	Utility               string `json:"utility"`
	EmitterTCEA           string `json:"emitter_tcea"`
	EmitterTCEAWithShield string `json:"emitter_tcea_with_shield"`
	BondholderTREA        string `json:"bondholder_trea"`
	Conclusion            string `json:"conclusion"`
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

func num(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fixed(d decimal.Decimal) string { return d.StringFixed(2) }

func signed(d decimal.Decimal) string {
	if d.IsNegative() {
		return fixed(d)
	}
	return "+" + fixed(d)
}

// share returns x as a percentage of base, or zero when base is zero.
func share(x, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return x.Div(base).Mul(hundred)
}

// Interpret reads s against the bond's nominal value, commercial value and
// COK (a percentage). A non-positive nominal value falls back to the
// commercial value.
func Interpret(s models.CalculationSummary, nominal, commercial, cok decimal.Decimal) Interpretations {
	if !commercial.IsPositive() {
		commercial = nominal
	}
	if !nominal.IsPositive() {
		nominal = commercial
	}
	if !nominal.IsPositive() {
		return Interpretations{}
	}

	in := Interpretations{
		PriceYield:            priceYield(share(s.ActualPrice, nominal), s.BondholderTREA.Sub(cok)),
		Convexity:             convexityReading(s.Convexity),
		ModifiedDuration:      modifiedDurationReading(s.ModifiedDuration),
		CurrentPrice:          currentPrice(s.ActualPrice, nominal, commercial),
		Utility:               utilityReading(s.Utility, commercial, s.BondholderTREA.Sub(cok)),
		EmitterTCEA:           emitterTCEA(s.EmitterTCEA, cok),
		EmitterTCEAWithShield: shieldReading(s.EmitterTCEA, s.EmitterTCEAWithShield),
		BondholderTREA:        bondholderTREA(s.BondholderTREA, cok),
		Conclusion:            conclusion(s, nominal, cok),
	}
	if s.Duration.IsPositive() {
		in.Volatility = volatility(s.Duration)
	}
	return in
}

// priceYield compares the price as a percentage of nominal (110/102/98)
// with the TREA spread over the COK.
func priceYield(ratio, spread decimal.Decimal) string {
	premium := ratio.Sub(hundred)
	switch {
	case ratio.GreaterThan(num("110")):
		if spread.IsPositive() {
			return fmt.Sprintf("The bond sells at a high premium of %s%% over its nominal value and its TREA beats the COK by %s points, so buyers pay up for a coupon better than the market offers.", fixed(premium), fixed(spread))
		}
		return fmt.Sprintf("The bond sells at a high premium of %s%% over its nominal value yet its TREA trails the COK by %s points; the premium is not backed by the returns.", fixed(premium), fixed(spread.Abs()))
	case ratio.GreaterThan(num("102")):
		if spread.GreaterThan(num("0.5")) {
			return fmt.Sprintf("The bond carries a moderate premium of %s%% and returns %s points over the COK, which justifies the price.", fixed(premium), fixed(spread))
		}
		return fmt.Sprintf("The bond carries a premium of %s%% but returns only %s points against the COK; the premium is poorly justified.", fixed(premium), signed(spread))
	case ratio.GreaterThan(num("98")):
		if spread.IsPositive() {
			return fmt.Sprintf("The bond trades near its nominal value (%s%%), which is reasonable given it returns %s points over the COK.", signed(premium), fixed(spread))
		}
		return fmt.Sprintf("The bond trades near its nominal value (%s%%), but a TREA %s points under the COK means it is overvalued for what it pays.", signed(premium), fixed(spread.Abs()))
	}
	if spread.LessThan(num("-1")) {
		return fmt.Sprintf("The bond trades at a discount of %s%% and still returns %s points less than the COK; even discounted it is a poor investment.", fixed(premium.Abs()), fixed(spread.Abs()))
	}
	return fmt.Sprintf("The bond trades at a discount of %s%%, which may be an opportunity if the market is too pessimistic, though a spread of %s points against the COK calls for caution.", fixed(premium.Abs()), signed(spread))
}

func convexityReading(c decimal.Decimal) string {
	switch {
	case c.GreaterThan(num("15")):
		return fmt.Sprintf("A high convexity of %s protects the holder both ways: the price rises more than expected when rates fall and drops less when they rise.", fixed(c))
	case c.GreaterThan(num("8")):
		return fmt.Sprintf("A moderate convexity of %s gives some protection against rate changes; price moves stay predictable and not extreme.", fixed(c))
	}
	return fmt.Sprintf("A low convexity of %s means the price follows rates almost linearly, which is easy to predict but gives little cushion when rates rise.", fixed(c))
}

func modifiedDurationReading(md decimal.Decimal) string {
	switch {
	case md.GreaterThan(num("7")):
		return fmt.Sprintf("A modified duration of %s makes the bond very sensitive to rates: a 1%% rise cuts the price by about %s%%.", fixed(md), fixed(md))
	case md.GreaterThan(num("3")):
		return fmt.Sprintf("A modified duration of %s is a moderate sensitivity: a 1%% rise cuts the price by about %s%%, a manageable risk for a medium-term holding.", fixed(md), fixed(md))
	}
	return fmt.Sprintf("A modified duration of %s leaves the bond barely sensitive to rates: a 1%% rise cuts the price by only %s%%, which suits conservative investors.", fixed(md), fixed(md))
}

func volatility(duration decimal.Decimal) string {
	switch {
	case duration.GreaterThan(num("10")):
		return fmt.Sprintf("A duration of %s years means a long average recovery of the investment and a strong exposure to rate swings.", fixed(duration))
	case duration.GreaterThan(num("5")):
		return fmt.Sprintf("A duration of %s years is a moderate exposure; the price should behave predictably under normal market moves.", fixed(duration))
	}
	return fmt.Sprintf("A duration of %s years keeps exposure to rate volatility low; the bond favours stable, predictable flows over large gains.", fixed(duration))
}

// currentPrice places the price against nominal (±1/5 %) and commercial (±0.5/2 %) value.
func currentPrice(price, nominal, commercial decimal.Decimal) string {
	vsNominal := share(price, nominal).Sub(hundred)
	vsCommercial := share(price, commercial).Sub(hundred)

	var b strings.Builder
	fmt.Fprintf(&b, "The current price of %s ", money(price))
	switch {
	case vsNominal.Abs().LessThan(one):
		b.WriteString("sits very close to the nominal value, so the market sees the bond as fairly valued. ")
	case vsNominal.GreaterThan(num("5")):
		fmt.Fprintf(&b, "carries a large premium of %s%% over the nominal value, a sign that buyers expect rates to fall or find the bond very attractive. ", fixed(vsNominal))
	case vsNominal.IsPositive():
		fmt.Fprintf(&b, "carries a moderate premium of %s%% over the nominal value, so the coupon compares well with the market. ", fixed(vsNominal))
	case vsNominal.GreaterThan(num("-5")):
		fmt.Fprintf(&b, "is a controlled discount of %s%% under the nominal value, possibly a buying opportunity. ", fixed(vsNominal.Abs()))
	default:
		fmt.Fprintf(&b, "is a deep discount of %s%% under the nominal value, which can point to issuer trouble or a shift in the market. ", fixed(vsNominal.Abs()))
	}
	switch {
	case vsCommercial.Abs().LessThan(num("0.5")):
		b.WriteString("It holds steady against the commercial value.")
	case vsCommercial.GreaterThan(num("2")):
		fmt.Fprintf(&b, "It is %s%% above the commercial value.", fixed(vsCommercial))
	case vsCommercial.LessThan(num("-2")):
		fmt.Fprintf(&b, "It is %s%% below the commercial value and needs attention.", fixed(vsCommercial.Abs()))
	default:
		fmt.Fprintf(&b, "Its %s%% gap to the commercial value is within normal range.", signed(vsCommercial))
	}
	return b.String()
}

// utilityReading bands the utility as a share of commercial value: gains at
// 15/5 %, losses at 10/3 %.
func utilityReading(utility, commercial, spread decimal.Decimal) string {
	pct := share(utility, commercial)
	if utility.IsPositive() {
		switch {
		case pct.GreaterThan(num("15")):
			return fmt.Sprintf("A utility of %s (%s%% of the commercial value) is an excellent gain; the %s points over the COK beat alternatives of similar risk.", money(utility), fixed(pct), fixed(spread))
		case pct.GreaterThan(num("5")):
			return fmt.Sprintf("A utility of %s (%s%% of the commercial value) is attractive; the extra %s points over the COK make the bond worth holding.", money(utility), fixed(pct), fixed(spread))
		}
		return fmt.Sprintf("A positive utility of %s (%s%% of the commercial value) is a fair result, though a margin of %s points over the COK suggests better options may exist.", money(utility), fixed(pct), fixed(spread))
	}
	loss, lossPct := money(utility.Abs()), fixed(pct.Abs())
	switch {
	case pct.Abs().GreaterThan(num("10")):
		return fmt.Sprintf("A loss of %s (%s%% of the commercial value) destroys value; returning %s points under the COK, the bond does not pay for its risk.", loss, lossPct, fixed(spread.Abs()))
	case pct.Abs().GreaterThan(num("3")):
		return fmt.Sprintf("A loss of %s (%s%% of the commercial value) is unacceptable; a %s point shortfall against the COK shows the bond underpays its risk.", loss, lossPct, fixed(spread.Abs()))
	}
	return fmt.Sprintf("A small loss of %s (%s%% of the commercial value) is still a loss; a %s point shortfall against the COK means better alternatives exist.", loss, lossPct, fixed(spread.Abs()))
}

// emitterTCEA bands the issuer cost at 1.5, 1 and 0.8 times the COK.
func emitterTCEA(tcea, cok decimal.Decimal) string {
	spread := tcea.Sub(cok)
	switch {
	case tcea.GreaterThan(cok.Mul(num("1.5"))):
		return fmt.Sprintf("An issuer TCEA of %s%% is a very high funding cost, %s points over the COK, and may hurt the issuer's ability to fund future projects.", fixed(tcea), fixed(spread))
	case tcea.GreaterThan(cok):
		return fmt.Sprintf("An issuer TCEA of %s%% costs %s points over the COK; manageable, but it limits further borrowing.", fixed(tcea), fixed(spread))
	case tcea.GreaterThan(cok.Mul(num("0.8"))):
		return fmt.Sprintf("An issuer TCEA of %s%% is balanced funding, %s points under the COK.", fixed(tcea), fixed(spread.Abs()))
	}
	return fmt.Sprintf("An issuer TCEA of %s%% is excellent funding, %s points under the COK.", fixed(tcea), fixed(spread.Abs()))
}

// shieldReading bands the tax shield benefit at 2 and 0.5 points.
func shieldReading(tcea, shielded decimal.Decimal) string {
	benefit := tcea.Sub(shielded)
	effect := share(benefit, tcea).StringFixed(1)
	switch {
	case benefit.GreaterThan(num("2")):
		return fmt.Sprintf("The tax shield saves %s points and brings the effective TCEA down to %s%%, a %s%% cut in cost.", fixed(benefit), fixed(shielded), effect)
	case benefit.GreaterThan(num("0.5")):
		return fmt.Sprintf("With the tax shield the TCEA is %s%%, a %s point benefit (%s%% of the cost).", fixed(shielded), fixed(benefit), effect)
	}
	return fmt.Sprintf("The tax shield has a limited effect, only %s points off the TCEA (%s%%).", fixed(benefit), effect)
}

// bondholderTREA bands the investor yield at 1.3, 1 and 0.9 times the COK.
func bondholderTREA(trea, cok decimal.Decimal) string {
	excess := trea.Sub(cok)
	relative := share(excess, cok).StringFixed(1)
	switch {
	case trea.GreaterThan(cok.Mul(num("1.3"))):
		return fmt.Sprintf("A TREA of %s%% beats the COK by %s points (%s%% extra), an excellent return that fully justifies the investment.", fixed(trea), fixed(excess), relative)
	case trea.GreaterThan(cok):
		return fmt.Sprintf("A TREA of %s%% returns %s points over the COK (%s%% extra) and compensates the risk.", fixed(trea), fixed(excess), relative)
	case trea.GreaterThan(cok.Mul(num("0.9"))):
		return fmt.Sprintf("A TREA of %s%% falls %s points short of the COK; the bond does not quite compensate its risk.", fixed(trea), fixed(excess.Abs()))
	}
	return fmt.Sprintf("A TREA of %s%% is clearly insufficient, %s points under the COK; the bond is not worth buying.", fixed(trea), fixed(excess.Abs()))
}

func conclusion(s models.CalculationSummary, nominal, cok decimal.Decimal) string {
	md := s.ModifiedDuration
	investor := s.BondholderTREA.Sub(cok)
	issuer := s.EmitterTCEA.Sub(cok)
	position := share(s.ActualPrice, nominal).Sub(hundred)
	attractive := investor.IsPositive()
	expensive := issuer.IsPositive()

	profile := "low"
	switch {
	case md.GreaterThan(num("5")):
		profile = "high"
	case md.GreaterThan(num("2")):
		profile = "moderate"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Overall: %s interest rate risk (modified duration %s", profile, fixed(md))
	if md.GreaterThan(num("3")) {
		b.WriteString(", highly sensitive to rate changes). ")
	} else {
		b.WriteString(", little sensitivity to rate changes). ")
	}
	if s.Convexity.GreaterThan(num("8")) {
		fmt.Fprintf(&b, "Its convexity of %s cushions rate rises. ", fixed(s.Convexity))
	}

	b.WriteString("Investor: ")
	switch {
	case investor.GreaterThan(num("2")):
		fmt.Fprintf(&b, "very attractive, %s points over the COK. ", fixed(investor))
	case attractive:
		fmt.Fprintf(&b, "moderately attractive, %s points over the COK. ", fixed(investor))
	case investor.Abs().GreaterThan(num("2")):
		fmt.Fprintf(&b, "NOT RECOMMENDED, %s points under the COK is a real loss of value. ", fixed(investor.Abs()))
	default:
		fmt.Fprintf(&b, "not advisable, %s points under the required COK. ", fixed(investor.Abs()))
	}
	if s.Utility.IsNegative() {
		b.WriteString("The holder books a direct economic loss. ")
	}
	if position.GreaterThan(num("5")) {
		fmt.Fprintf(&b, "The %s%% premium worsens the risk-return balance. ", fixed(position))
	} else if position.LessThan(num("-5")) {
		fmt.Fprintf(&b, "The %s%% discount does not make up for the yield. ", fixed(position.Abs()))
	}

	b.WriteString("Issuer: ")
	switch {
	case issuer.GreaterThan(num("2")):
		fmt.Fprintf(&b, "EXPENSIVE FUNDING, %s points over the COK. ", fixed(issuer))
	case expensive:
		fmt.Fprintf(&b, "pays %s points over the COK. ", fixed(issuer))
	default:
		fmt.Fprintf(&b, "favourable funding, %s points under the COK. ", fixed(issuer.Abs()))
	}
	if s.EmitterTCEA.Sub(s.EmitterTCEAWithShield).GreaterThan(one) {
		b.WriteString("The tax shield softens the cost. ")
	}

	b.WriteString("Recommendation: ")
	switch {
	case !attractive && expensive:
		b.WriteString("lose-lose; the investor is not paid for the risk and the issuer overpays for funding.")
	case !attractive:
		b.WriteString("the issuer does well, but an investor should not accept a yield under the COK.")
	case expensive:
		b.WriteString("the investor does well, but the issuer should look for cheaper funding.")
	default:
		b.WriteString("a good deal for both investor and issuer.")
	}
	if !attractive && md.LessThan(num("2")) {
		b.WriteString(" Low volatility does not justify an insufficient yield.")
	} else if !attractive && md.GreaterThan(num("4")) {
		b.WriteString(" High rate sensitivity adds risk to an already unattractive bond.")
	}
	return b.String()
}
