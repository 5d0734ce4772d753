// Package money converts between display currency and integer cents and
// values chip stacks against a table's denominations.
//
// Rounding to cents is half away from zero everywhere in this package.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidDenomination = errors.New("invalid_denomination")
	ErrNegativeChipCount   = errors.New("negative_chip_count")
	ErrChipCountTooLarge   = errors.New("chip_count_too_large")
)

// MaxChipCount matches the INTEGER chip columns.
const MaxChipCount = 1<<31 - 1

var (
	hundred = decimal.NewFromInt(100)

	// MinDenomination is the smallest accepted per-chip value.
	MinDenomination = decimal.RequireFromString("0.01")
	// MaxDenomination is the largest value NUMERIC(12,2) can hold.
	MaxDenomination = decimal.RequireFromString("9999999999.99")
)

// Colors lists chip colors in display order.
var Colors = [5]string{"white", "blue", "red", "green", "black"}

type Denominations struct {
	White decimal.Decimal `json:"white"`
	Blue  decimal.Decimal `json:"blue"`
	Red   decimal.Decimal `json:"red"`
	Green decimal.Decimal `json:"green"`
	Black decimal.Decimal `json:"black"`
}

// FallbackDenominations values chips when a table was archived without
// configured denominations.
var FallbackDenominations = Denominations{
	White: decimal.RequireFromString("0.25"),
	Blue:  decimal.RequireFromString("0.50"),
	Red:   decimal.NewFromInt(1),
	Green: decimal.NewFromInt(2),
	Black: decimal.NewFromInt(5),
}

func (d Denominations) values() [5]decimal.Decimal {
	return [5]decimal.Decimal{d.White, d.Blue, d.Red, d.Green, d.Black}
}

func (d Denominations) Validate() error {
	for i, v := range d.values() {
		if v.LessThan(MinDenomination) {
			return fmt.Errorf("%w: %s must be at least %s", ErrInvalidDenomination, Colors[i], MinDenomination.StringFixed(2))
		}
		if v.GreaterThan(MaxDenomination) {
			return fmt.Errorf("%w: %s must be at most %s", ErrInvalidDenomination, Colors[i], MaxDenomination.StringFixed(2))
		}
		if !v.Equal(v.Round(2)) {
			return fmt.Errorf("%w: %s must be a whole number of cents", ErrInvalidDenomination, Colors[i])
		}
	}
	return nil
}

type ChipCounts struct {
	White int64 `json:"white"`
	Blue  int64 `json:"blue"`
	Red   int64 `json:"red"`
	Green int64 `json:"green"`
	Black int64 `json:"black"`
}

func (c ChipCounts) values() [5]int64 {
	return [5]int64{c.White, c.Blue, c.Red, c.Green, c.Black}
}

func (c ChipCounts) Validate() error {
	for i, v := range c.values() {
		if v < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeChipCount, Colors[i])
		}
		if v > MaxChipCount {
			return fmt.Errorf("%w: %s must be at most %d", ErrChipCountTooLarge, Colors[i], MaxChipCount)
		}
	}
	return nil
}

// Total is the number of physical chips in the stack.
func (c ChipCounts) Total() int64 {
	var n int64
	for _, v := range c.values() {
		n += v
	}
	return n
}

// ChipValue is sum(count × denomination) in display currency, unrounded.
func ChipValue(c ChipCounts, d Denominations) decimal.Decimal {
	counts := c.values()
	denoms := d.values()
	total := decimal.Zero
	for i := range counts {
		total = total.Add(decimal.NewFromInt(counts[i]).Mul(denoms[i]))
	}
	return total
}

// ToSubunits converts a display amount to cents. Amounts whose cent value
// does not fit in an int64 are rejected with ErrInvalidAmount.
func ToSubunits(amount decimal.Decimal) (int64, error) {
	cents := amount.Mul(hundred).Round(0)
	if !cents.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %s is out of range", ErrInvalidAmount, amount.String())
	}
	return cents.IntPart(), nil
}

// FromSubunits formats cents as a display amount with two decimals.
func FromSubunits(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// Dollars returns cents as a display-currency decimal.
func Dollars(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ParseDisplay parses a display amount such as "12.50" or "-3".
func ParseDisplay(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}
