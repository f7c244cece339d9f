// Package money keeps amounts in integer centavos and converts to decimal or
// display form only at the edges.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Cents is an amount in minor units (centavos).
type Cents int64

// MaxAmount bounds every amount and balance the ledger holds (R$ 10 trilhões).
const MaxAmount Cents = 1_000_000_000_000_000

// ErrOutOfRange is returned for amounts whose magnitude exceeds MaxAmount.
var ErrOutOfRange = errors.New("amount out of range")

var (
	hundred = decimal.NewFromInt(100)
	limit   = decimal.NewFromInt(int64(MaxAmount))
	printer = message.NewPrinter(language.BrazilianPortuguese)
)

// FromDecimal converts a decimal amount in reais to cents, rounding half away
// from zero.
func FromDecimal(d decimal.Decimal) (Cents, error) {
	c := d.Shift(2).Round(0)
	if c.Abs().GreaterThan(limit) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, d.String())
	}
	return Cents(c.IntPart()), nil
}

// Add returns a+b, or ErrOutOfRange when the sum leaves [-MaxAmount, MaxAmount].
func Add(a, b Cents) (Cents, error) {
	if a.outOfRange() || b.outOfRange() {
		return 0, ErrOutOfRange
	}
	sum := a + b
	if sum.outOfRange() {
		return 0, fmt.Errorf("%w: %d + %d", ErrOutOfRange, a, b)
	}
	return sum, nil
}

func (c Cents) outOfRange() bool { return c > MaxAmount || c < -MaxAmount }

// FromReais converts a whole-real amount to cents.
func FromReais(reais int64) Cents {
	return Cents(reais * 100)
}

// Parse reads a user supplied amount such as "1500", "1500.75" or "1.500,75".
func Parse(s string) (Cents, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "R$")
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ",") {
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	c, err := FromDecimal(d)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return c, nil
}

// Decimal returns the amount in reais.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Percent returns pct percent of c, rounded to the nearest centavo.
func (c Cents) Percent(pct decimal.Decimal) (Cents, error) {
	return FromDecimal(c.Decimal().Mul(pct).Div(hundred))
}

// Format renders the amount as Brazilian currency, e.g. "R$ 1.234,56".
func (c Cents) Format() string {
	if c < 0 {
		return "-R$ " + formatDecimal(c.Decimal().Neg())
	}
	return "R$ " + formatDecimal(c.Decimal())
}

func (c Cents) String() string { return c.Format() }

// FormatPercent renders a percentage with two decimals, e.g. "0,45%".
func FormatPercent(pct decimal.Decimal) string {
	return formatDecimal(pct) + "%"
}

// formatDecimal renders d with two decimals in pt-BR form. The integer and
// fractional parts are formatted separately so no float conversion is involved.
func formatDecimal(d decimal.Decimal) string {
	r := d.Round(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	whole := r.Truncate(0)
	frac := r.Sub(whole).Shift(2).IntPart()
	return sign + printer.Sprintf("%v,%02d", number.Decimal(whole.IntPart()), frac)
}
