package ledger

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

// Arithmetic is the amount algebra a Ledger is generic over.
type Arithmetic[A any] interface {
	Zero() A
	Add(a, b A) A
	Sub(a, b A) A
	// Fits reports amount <= available.
	Fits(amount, available A) bool
	// Validate checks an amount being reserved.
	Validate(amount A) error
	// ValidateDelta checks a total adjustment, which may be negative.
	ValidateDelta(delta A) error
	// Negative reports whether a total is below zero anywhere.
	Negative(total A) bool
}

// Money is currency arithmetic. Amounts must be finite and non-negative.
type Money struct{}

func (Money) Zero() float64                       { return 0 }
func (Money) Add(a, b float64) float64            { return a + b }
func (Money) Sub(a, b float64) float64            { return a - b }
func (Money) Fits(amount, available float64) bool { return amount <= available }
func (Money) Negative(total float64) bool         { return total < 0 }

func (Money) Validate(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return fmt.Errorf("%w: money %v", ErrInvalidAmount, amount)
	}
	return nil
}

func (Money) ValidateDelta(delta float64) error {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return fmt.Errorf("%w: money delta %v", ErrInvalidAmount, delta)
	}
	return nil
}

// Units is whole-unit arithmetic used for aggregate storage space.
type Units struct{}

func (Units) Zero() int                       { return 0 }
func (Units) Add(a, b int) int                { return a + b }
func (Units) Sub(a, b int) int                { return a - b }
func (Units) Fits(amount, available int) bool { return amount <= available }
func (Units) Negative(total int) bool         { return total < 0 }
func (Units) ValidateDelta(int) error         { return nil }

func (Units) Validate(amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: quantity %d", ErrInvalidAmount, amount)
	}
	return nil
}

// Commodity names a tradable ware.
type Commodity string

// Cargo is a per-commodity quantity map. Missing commodities count as zero.
type Cargo map[Commodity]int

// Total sums every commodity.
func (c Cargo) Total() int {
	n := 0
	for _, q := range c {
		n += q
	}
	return n
}

func (c Cargo) String() string {
	keys := slices.Sorted(maps.Keys(c))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s:%d", k, c[k])
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// CargoArithmetic is per-commodity arithmetic. Fits checks every commodity
// independently, so headroom in one ware never covers another.
type CargoArithmetic struct{}

func (CargoArithmetic) Zero() Cargo { return Cargo{} }

func (CargoArithmetic) Add(a, b Cargo) Cargo {
	out := maps.Clone(a)
	if out == nil {
		out = Cargo{}
	}
	for k, q := range b {
		out[k] += q
	}
	return compact(out)
}

func (CargoArithmetic) Sub(a, b Cargo) Cargo {
	out := maps.Clone(a)
	if out == nil {
		out = Cargo{}
	}
	for k, q := range b {
		out[k] -= q
	}
	return compact(out)
}

func (CargoArithmetic) Fits(amount, available Cargo) bool {
	for k, q := range amount {
		if q > available[k] {
			return false
		}
	}
	return true
}

func (CargoArithmetic) Validate(amount Cargo) error {
	for k, q := range amount {
		if q < 0 {
			return fmt.Errorf("%w: %s quantity %d", ErrInvalidAmount, k, q)
		}
	}
	return nil
}

func (CargoArithmetic) ValidateDelta(Cargo) error { return nil }

func (CargoArithmetic) Negative(total Cargo) bool {
	for _, q := range total {
		if q < 0 {
			return true
		}
	}
	return false
}

func compact(c Cargo) Cargo {
	maps.DeleteFunc(c, func(_ Commodity, q int) bool { return q == 0 })
	return c
}
