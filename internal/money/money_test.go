package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestToSubunitsRounding(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"40", 4000},
		{"12.345", 1235},
		{"12.344", 1234},
		{"-12.345", -1235},
		{"0.005", 1},
		{"-0.005", -1},
		{"1e2", 10000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToSubunits(dec(tt.in))
			if err != nil {
				t.Fatalf("ToSubunits(%s): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ToSubunits(%s) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestToSubunitsRejectsOverflow(t *testing.T) {
	for _, in := range []string{"100000000000000000", "-100000000000000000", "92233720368547758.08", "1e30"} {
		if got, err := ToSubunits(dec(in)); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("ToSubunits(%s) = %d, %v; want ErrInvalidAmount", in, got, err)
		}
	}
	got, err := ToSubunits(dec("92233720368547758.07"))
	if err != nil {
		t.Fatalf("ToSubunits(max): %v", err)
	}
	if got != 1<<63-1 {
		t.Fatalf("ToSubunits(max) = %d", got)
	}
}

func TestFromSubunits(t *testing.T) {
	tests := map[int64]string{
		0:     "0.00",
		5:     "0.05",
		1200:  "12.00",
		-2800: "-28.00",
		-1:    "-0.01",
		4001:  "40.01",
	}
	for in, want := range tests {
		if got := FromSubunits(in); got != want {
			t.Fatalf("FromSubunits(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestSubunitsRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 99, -99, 100, 123456789, -987654321, 1 << 40} {
		d, err := ParseDisplay(FromSubunits(n))
		if err != nil {
			t.Fatalf("ParseDisplay(FromSubunits(%d)): %v", n, err)
		}
		if got, err := ToSubunits(d); err != nil || got != n {
			t.Fatalf("round trip %d -> %d (%v)", n, got, err)
		}
	}
}

func TestParseDisplayRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "  ", "abc", "1.2.3"} {
		if _, err := ParseDisplay(in); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("ParseDisplay(%q) err = %v, want ErrInvalidAmount", in, err)
		}
	}
}

func TestChipValueScenario(t *testing.T) {
	d := Denominations{White: dec("0.25"), Blue: dec("0.5"), Red: dec("1"), Green: dec("2"), Black: dec("5")}
	c := ChipCounts{White: 4, Blue: 2, Red: 10}
	got := ChipValue(c, d)
	if !got.Equal(dec("12")) {
		t.Fatalf("ChipValue = %s, want 12", got)
	}
	if cents, err := ToSubunits(got); err != nil || cents != 1200 {
		t.Fatalf("cash out = %d (%v), want 1200", cents, err)
	}
}

func TestChipValueLinearAndNonNegative(t *testing.T) {
	d := Denominations{White: dec("0.01"), Blue: dec("0.33"), Red: dec("1.10"), Green: dec("2.5"), Black: dec("25")}
	base := ChipCounts{White: 7, Blue: 3, Red: 11, Green: 2, Black: 1}
	baseValue := ChipValue(base, d)
	if baseValue.IsNegative() {
		t.Fatalf("ChipValue negative: %s", baseValue)
	}
	for i, unit := range []ChipCounts{{White: 1}, {Blue: 1}, {Red: 1}, {Green: 1}, {Black: 1}} {
		for _, k := range []int64{1, 2, 10} {
			bumped := base
			bumped.White += unit.White * k
			bumped.Blue += unit.Blue * k
			bumped.Red += unit.Red * k
			bumped.Green += unit.Green * k
			bumped.Black += unit.Black * k
			want := baseValue.Add(ChipValue(unit, d).Mul(decimal.NewFromInt(k)))
			if got := ChipValue(bumped, d); !got.Equal(want) {
				t.Fatalf("color %s k=%d: got %s want %s", Colors[i], k, got, want)
			}
		}
	}
	if !ChipValue(ChipCounts{}, d).IsZero() {
		t.Fatal("empty stack should be worth zero")
	}
}

func TestDenominationsValidate(t *testing.T) {
	if err := FallbackDenominations.Validate(); err != nil {
		t.Fatalf("fallback denominations invalid: %v", err)
	}
	bad := FallbackDenominations
	bad.Green = decimal.Zero
	if err := bad.Validate(); !errors.Is(err, ErrInvalidDenomination) {
		t.Fatalf("zero denomination err = %v", err)
	}
	bad = FallbackDenominations
	bad.White = dec("-1")
	if err := bad.Validate(); !errors.Is(err, ErrInvalidDenomination) {
		t.Fatalf("negative denomination err = %v", err)
	}
	bad = FallbackDenominations
	bad.Black = dec("0.009")
	if err := bad.Validate(); !errors.Is(err, ErrInvalidDenomination) {
		t.Fatalf("sub-cent denomination err = %v", err)
	}
	bad = FallbackDenominations
	bad.Red = dec("1.005")
	if err := bad.Validate(); !errors.Is(err, ErrInvalidDenomination) {
		t.Fatalf("fractional cent denomination err = %v", err)
	}
	ok := FallbackDenominations
	ok.Black = MaxDenomination
	if err := ok.Validate(); err != nil {
		t.Fatalf("max denomination rejected: %v", err)
	}
	bad = FallbackDenominations
	bad.Black = dec("10000000000")
	if err := bad.Validate(); !errors.Is(err, ErrInvalidDenomination) {
		t.Fatalf("oversized denomination err = %v", err)
	}
}

func TestChipCountsValidate(t *testing.T) {
	if err := (ChipCounts{White: 1}).Validate(); err != nil {
		t.Fatalf("valid counts rejected: %v", err)
	}
	if err := (ChipCounts{Red: -1}).Validate(); !errors.Is(err, ErrNegativeChipCount) {
		t.Fatalf("negative count err = %v", err)
	}
	if err := (ChipCounts{Black: MaxChipCount}).Validate(); err != nil {
		t.Fatalf("max count rejected: %v", err)
	}
	if err := (ChipCounts{Green: MaxChipCount + 1}).Validate(); !errors.Is(err, ErrChipCountTooLarge) {
		t.Fatalf("oversized count err = %v", err)
	}
	if got := (ChipCounts{White: 1, Blue: 2, Red: 3, Green: 4, Black: 5}).Total(); got != 15 {
		t.Fatalf("Total = %d, want 15", got)
	}
}
