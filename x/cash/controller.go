package cash

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/orm"
)

// Controller is the token transfer capability used by other extensions.
type Controller interface {
	// Balance returns the amount of given ticker held by the account.
	Balance(db autoshare.ReadOnlyKVStore, holder autoshare.Address, ticker string) (coin.Coin, error)

	// MoveCoins moves the given amount from src to dest. If src does not
	// hold enough coins, it fails.
	MoveCoins(db autoshare.KVStore, src, dest autoshare.Address, amount coin.Coin) error

	// IssueCoins adds the given amount to the destination account.
	IssueCoins(db autoshare.KVStore, dest autoshare.Address, amount coin.Coin) error
}

// BaseController is the default Controller, keeping wallets in the store.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller using given bucket.
func NewController(bucket orm.ModelBucket) BaseController {
	return BaseController{bucket: bucket}
}

func (c BaseController) load(db autoshare.ReadOnlyKVStore, addr autoshare.Address) (*Wallet, error) {
	var w Wallet
	switch err := c.bucket.One(db, addr, &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		return &Wallet{}, nil
	default:
		return nil, errors.Wrap(err, "load wallet")
	}
}

func (c BaseController) save(db autoshare.KVStore, addr autoshare.Address, w *Wallet) error {
	if w.Coins.IsEmpty() {
		switch err := c.bucket.Delete(db, addr); {
		case err == nil, errors.ErrNotFound.Is(err):
			return nil
		default:
			return err
		}
	}
	_, err := c.bucket.Put(db, addr, w)
	return err
}

func (c BaseController) Balance(db autoshare.ReadOnlyKVStore, holder autoshare.Address, ticker string) (coin.Coin, error) {
	if err := holder.Validate(); err != nil {
		return coin.Coin{}, errors.Wrap(err, "holder")
	}
	w, err := c.load(db, holder)
	if err != nil {
		return coin.Coin{}, err
	}
	return w.Coins.Balance(ticker), nil
}

func (c BaseController) MoveCoins(db autoshare.KVStore, src, dest autoshare.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive amount %s", amount)
	}
	if err := amount.Validate(); err != nil {
		return err
	}
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}

	sender, err := c.load(db, src)
	if err != nil {
		return err
	}
	if !sender.Coins.Contains(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "%s has %s, needs %s",
			src, sender.Coins.Balance(amount.Ticker), amount)
	}
	if sender.Coins, err = sender.Coins.Subtract(amount); err != nil {
		return err
	}
	if err := c.save(db, src, sender); err != nil {
		return errors.Wrap(err, "save sender")
	}

	// Load the recipient after the sender is saved, src and dest can be
	// the same account.
	recipient, err := c.load(db, dest)
	if err != nil {
		return err
	}
	if recipient.Coins, err = recipient.Coins.Add(amount); err != nil {
		return err
	}
	return errors.Wrap(c.save(db, dest, recipient), "save recipient")
}

// IssueCoins attempts to add the given amount of coins to
// the destination address. Fails if it overflows the wallet.
//
// Note the amount may also be negative, as long as the balance stays
// non-negative.
func (c BaseController) IssueCoins(db autoshare.KVStore, dest autoshare.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	w, err := c.load(db, dest)
	if err != nil {
		return err
	}
	if w.Coins, err = w.Coins.Add(amount); err != nil {
		return err
	}
	if !w.Coins.IsNonNegative() {
		return errors.Wrapf(errors.ErrInsufficientAmount, "cannot take %s", amount.Negative())
	}
	return c.save(db, dest, w)
}
