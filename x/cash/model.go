package cash

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Wallet holds the coins of a single account.
type Wallet struct {
	Coins coin.Coins `json:"coins"`
}

var _ orm.Model = (*Wallet)(nil)

// Validate requires that all coins are in alphabetical order, unique and not
// negative.
func (w *Wallet) Validate() error {
	if err := w.Coins.Validate(); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	if !w.Coins.IsNonNegative() {
		return errors.Wrap(errors.ErrModel, "negative balance")
	}
	return nil
}

// NewWalletBucket returns a bucket keeping wallets under their owner
// address.
func NewWalletBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Wallet{},
		orm.WithTTL(autoshare.DefaultTTL),
	)
}
