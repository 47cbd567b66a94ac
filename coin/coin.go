package coin

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/iov-one/autoshare/errors"
)

// IsCC is the RegExp to ensure valid currency codes
var IsCC = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

// Coin is an amount of a single token, counted in its smallest units.
type Coin struct {
	Ticker string `json:"ticker"`
	Amount int64  `json:"amount"`
}

// NewCoin creates a new coin object
func NewCoin(amount int64, ticker string) Coin {
	return Coin{Ticker: ticker, Amount: amount}
}

// NewCoinp returns a pointer to a new coin.
func NewCoinp(amount int64, ticker string) *Coin {
	c := NewCoin(amount, ticker)
	return &c
}

// ID returns a coin ticker name.
func (c Coin) ID() string {
	return c.Ticker
}

// Multiply returns the result of a coin value multiplication. This method can
// fail if the result would overflow maximum coin value.
func (c Coin) Multiply(times int64) (Coin, error) {
	amount, err := mul64(c.Amount, times)
	if err != nil {
		return Coin{}, err
	}
	return Coin{Ticker: c.Ticker, Amount: amount}, nil
}

// mul64 multiplies two int64 numbers. If the result overflows the int64 size
// the ErrOverflow is returned.
func mul64(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	c := a * b
	if c/a != b || (a == -1 && b == minInt64) || (b == -1 && a == minInt64) {
		return c, errors.Wrapf(errors.ErrOverflow, "%d x %d", a, b)
	}
	return c, nil
}

const minInt64 = -1 << 63

// Add combines two coins.
// Returns error if they are of different
// currencies, or if the combination would cause
// an overflow
func (c Coin) Add(o Coin) (Coin, error) {
	// A zero value without a ticker does not influence the result.
	if c.Ticker == "" && c.IsZero() {
		return o, nil
	}
	if o.Ticker == "" && o.IsZero() {
		return c, nil
	}
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "adding %s to %s", c.Ticker, o.Ticker)
	}
	sum := c.Amount + o.Amount
	if (o.Amount > 0 && sum < c.Amount) || (o.Amount < 0 && sum > c.Amount) {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "%s + %s", c, o)
	}
	c.Amount = sum
	return c, nil
}

// Negative returns the opposite coins value
//   c.Add(c.Negative()).IsZero() == true
func (c Coin) Negative() Coin {
	return Coin{Ticker: c.Ticker, Amount: -c.Amount}
}

// Subtract given amount.
func (c Coin) Subtract(amount Coin) (Coin, error) {
	if amount.Amount == minInt64 {
		return Coin{}, errors.Wrap(errors.ErrOverflow, "cannot negate")
	}
	return c.Add(amount.Negative())
}

// Compare will check values of two coins, without
// inspecting the currency code.
//
// Returns 1 if c is larger, -1 if o is larger, 0 if equal
func (c Coin) Compare(o Coin) int {
	switch {
	case c.Amount > o.Amount:
		return 1
	case c.Amount < o.Amount:
		return -1
	}
	return 0
}

// Equals returns true if all fields are identical
func (c Coin) Equals(o Coin) bool {
	return c.Ticker == o.Ticker && c.Amount == o.Amount
}

// IsEmpty returns true on null or zero amount
func IsEmpty(c *Coin) bool {
	return c == nil || c.IsZero()
}

// IsZero returns true amounts are 0
func (c Coin) IsZero() bool {
	return c.Amount == 0
}

// IsPositive returns true if the value is greater than 0
func (c Coin) IsPositive() bool {
	return c.Amount > 0
}

// IsNonNegative returns true if the value is 0 or higher
func (c Coin) IsNonNegative() bool {
	return c.Amount >= 0
}

// IsGTE returns true if c is same type and at least
// as large as o.
func (c Coin) IsGTE(o Coin) bool {
	return c.SameType(o) && c.Amount >= o.Amount
}

// SameType returns true if they have the same currency
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// Clone provides an independent copy of a coin pointer
func (c *Coin) Clone() *Coin {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Validate ensures that the coin has a valid currency code. It accepts
// negative values, so you may want to make other checks in your business
// logic
func (c Coin) Validate() error {
	if !IsCC(c.Ticker) {
		return errors.Wrapf(errors.ErrCurrency, "invalid currency: %q", c.Ticker)
	}
	return nil
}

func (c *Coin) UnmarshalJSON(raw []byte) error {
	// Human readable format "<amount> <ticker>" goes first.
	var human string
	if err := json.Unmarshal(raw, &human); err == nil {
		parsed, err := ParseHumanFormat(human)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	// Coin has its own UnmarshalJSON so an alias type is needed for the
	// default decoding.
	type plain Coin
	var p plain
	if err := json.Unmarshal(raw, &p); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	*c = Coin(p)
	return nil
}

// String provides a human readable representation of the coin. For a valid
// coin the result can be parsed back with ParseHumanFormat.
func (c Coin) String() string {
	s := strconv.FormatInt(c.Amount, 10)
	if c.Ticker != "" {
		s += " " + c.Ticker
	}
	return s
}

var humanCoinFormatRx = regexp.MustCompile(`^(\-?\d+)\s*([A-Z]{3,4})$`)

// ParseHumanFormat parse a human readable coin representation. Accepted format
// is a string:
//   "<amount> <ticker>"
func ParseHumanFormat(h string) (Coin, error) {
	m := humanCoinFormatRx.FindStringSubmatch(h)
	if m == nil {
		return Coin{}, errors.Wrapf(errors.ErrInput, "invalid coin format %q", h)
	}
	amount, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return Coin{}, errors.Wrap(errors.ErrInput, fmt.Sprintf("invalid amount: %s", err))
	}
	return Coin{Ticker: m[2], Amount: amount}, nil
}

// Set updates this coin value to what is provided. This method implements
// the flag.Value interface.
func (c *Coin) Set(raw string) error {
	val, err := ParseHumanFormat(raw)
	if err != nil {
		return err
	}
	*c = val
	return nil
}

// Type implements the pflag.Value interface.
func (c *Coin) Type() string {
	return "coin"
}
