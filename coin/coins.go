package coin

import (
	"strings"

	"github.com/iov-one/autoshare/errors"
)

// Coins represents a set of coins, sorted by ticker, with at most one coin
// per ticker and no zero values.
type Coins []*Coin

// CombineCoins creates a Coins containing all given coins.
// It will sort them and combine duplicates to produce
// a normalized form regardless of input.
func CombineCoins(cs ...Coin) (Coins, error) {
	var err error
	coins := make(Coins, 0, len(cs))
	for _, c := range cs {
		coins, err = coins.Add(c)
		if err != nil {
			return nil, err
		}
	}
	if err := coins.Validate(); err != nil {
		return nil, err
	}
	return coins, nil
}

// Clone returns a copy that can be safely modified
func (cs Coins) Clone() Coins {
	if cs == nil {
		return nil
	}
	res := make(Coins, len(cs))
	for i, c := range cs {
		res[i] = c.Clone()
	}
	return res
}

// Add returns a set with the holdings increased by c. The receiver must not
// be used afterwards.
func (cs Coins) Add(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs, nil
	}

	has, i := cs.findCoin(c.ID())
	if has != nil {
		sum, err := has.Add(c)
		if err != nil {
			return nil, err
		}
		if sum.IsZero() {
			return append(cs[:i], cs[i+1:]...), nil
		}
		cs[i] = &sum
		return cs, nil
	}
	if i == len(cs) {
		return append(cs, &c), nil
	}
	// insert in beginning or middle (with one alloc)
	res := append(cs, nil)
	copy(res[i+1:], res[i:])
	res[i] = &c
	return res, nil
}

// Subtract returns a set with the holdings decreased by c.
// The resulting Coins may have negative amounts
func (cs Coins) Subtract(c Coin) (Coins, error) {
	if c.Amount == minInt64 {
		return nil, errors.Wrap(errors.ErrOverflow, "cannot negate")
	}
	return cs.Add(c.Negative())
}

// Combine will create a new Coins adding all the coins
// of s and o together.
func (cs Coins) Combine(o Coins) (Coins, error) {
	var err error
	res := cs.Clone()
	for _, c := range o {
		res, err = res.Add(*c)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Contains returns true if there is at least that much
// coin in the Coins. If it returns true, then:
//   s.Subtract(c).IsNonNegative() == true
func (cs Coins) Contains(c Coin) bool {
	has, _ := cs.findCoin(c.ID())
	if has == nil {
		return !c.IsPositive()
	}
	return has.IsGTE(c)
}

// Balance returns the amount held of given ticker.
func (cs Coins) Balance(ticker string) Coin {
	if has, _ := cs.findCoin(ticker); has != nil {
		return *has
	}
	return Coin{Ticker: ticker}
}

// findCoin returns a coin and index that have this
// currency code.
//
// If there was a match, then result is non-nil, and the
// index is where it was. If there was no match, then
// result is nil, and index is where it should be
// (which may be between 0 and len(cs)).
func (cs Coins) findCoin(id string) (*Coin, int) {
	for i, c := range cs {
		switch strings.Compare(id, c.ID()) {
		case -1:
			return nil, i
		case 0:
			return c, i
		}
	}
	return nil, len(cs)
}

// IsEmpty returns if nothing is in the Coins
func (cs Coins) IsEmpty() bool {
	return len(cs) == 0
}

// IsNonNegative returns true if all coins are zero or positive.
func (cs Coins) IsNonNegative() bool {
	for _, c := range cs {
		if !c.IsNonNegative() {
			return false
		}
	}
	return true
}

// Equals returns true if both sets hold the same coins.
func (cs Coins) Equals(o Coins) bool {
	if len(cs) != len(o) {
		return false
	}
	for i := range cs {
		if !cs[i].Equals(*o[i]) {
			return false
		}
	}
	return true
}

// Validate requires that all coins are valid, sorted by ticker, unique and
// not zero.
func (cs Coins) Validate() error {
	for i, c := range cs {
		if c == nil {
			return errors.Wrapf(errors.ErrEmpty, "coin %d", i)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if c.IsZero() {
			return errors.Wrapf(errors.ErrAmount, "zero %s", c.Ticker)
		}
		if i > 0 && cs[i-1].Ticker >= c.Ticker {
			return errors.Wrap(errors.ErrState, "coins not sorted or not unique")
		}
	}
	return nil
}
