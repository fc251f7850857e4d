package shop

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Parsed amounts are limited so that price × quantity and the sums of those
// stay finite under moneyContext.
const (
	maxIntegerDigits = 15
	maxScale         = 8
)

// moneyContext bounds precision far above any realistic cart total so Add and
// Mul are exact in practice.
var moneyContext = apd.BaseContext.WithPrecision(34)

// Money is an exact decimal amount in the store currency.
// The zero value is 0.
type Money struct {
	d apd.Decimal
}

// ParseMoney parses a decimal string such as "20", "20.5" or "7.00".
// Amounts must be non-negative, below 10^15 and have at most 8 significant
// decimal places.
func ParseMoney(s string) (Money, error) {
	var m Money
	if _, _, err := m.d.SetString(strings.TrimSpace(s)); err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	if m.d.Form != apd.Finite {
		return Money{}, fmt.Errorf("parse money %q: not a finite number", s)
	}
	if m.Sign() < 0 {
		return Money{}, fmt.Errorf("parse money %q: negative amount", s)
	}
	if err := checkRange(&m.d); err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return m, nil
}

func checkRange(d *apd.Decimal) error {
	if d.IsZero() {
		return nil
	}
	var r apd.Decimal
	r.Reduce(d)
	if int64(r.Exponent) < -maxScale {
		return fmt.Errorf("more than %d decimal places", maxScale)
	}
	if r.NumDigits()+int64(r.Exponent) > maxIntegerDigits {
		return fmt.Errorf("exceeds %d integer digits", maxIntegerDigits)
	}
	return nil
}

// MustMoney is like ParseMoney but panics on error.
// Use only in tests or for constants.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Cents returns the amount c/100.
func Cents(c int64) Money {
	var m Money
	m.d.SetFinite(c, -2)
	return m
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	var out Money
	if _, err := moneyContext.Add(&out.d, &m.d, &o.d); err != nil {
		panic(fmt.Sprintf("money add: %v", err))
	}
	return out
}

// Mul returns m × qty.
func (m Money) Mul(qty int) Money {
	var out Money
	q := apd.New(int64(qty), 0)
	if _, err := moneyContext.Mul(&out.d, &m.d, q); err != nil {
		panic(fmt.Sprintf("money mul: %v", err))
	}
	return out
}

// Cmp compares m and o numerically: -1, 0 or +1.
func (m Money) Cmp(o Money) int {
	return m.d.Cmp(&o.d)
}

// Equal reports numeric equality, so 40 equals 40.00.
func (m Money) Equal(o Money) bool {
	return m.Cmp(o) == 0
}

// IsZero reports whether m is numerically zero.
func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// Sign returns -1, 0 or +1.
func (m Money) Sign() int {
	return m.d.Sign()
}

// Exact returns the unrounded decimal representation.
func (m Money) Exact() string {
	return m.d.Text('f')
}

// String returns the amount with exactly two decimal places.
func (m Money) String() string {
	var out apd.Decimal
	if _, err := moneyContext.Quantize(&out, &m.d, -2); err != nil {
		return m.d.Text('f')
	}
	return out.Text('f')
}

// MarshalJSON emits the exact amount as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.Text('f')), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("money: %w", err)
		}
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
