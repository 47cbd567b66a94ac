package admin

import (
	"math"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/gconf"
	"github.com/iov-one/autoshare/x/cash"
)

// CustodyAccount holds all tokens paid for usages and passing through
// distributions.
var CustodyAccount = autoshare.NewCondition("share", "custody", []byte("ledger")).Address()

// Controller exposes the global settings to other extensions.
type Controller interface {
	// RequireNotPaused fails with ErrContractPaused while the ledger is
	// paused.
	RequireNotPaused(db gconf.ReadStore) error

	// IsAdmin returns true if given address is the current admin.
	IsAdmin(db gconf.ReadStore, addr autoshare.Address) (bool, error)

	// RequireSupportedToken fails with ErrUnsupportedToken unless the
	// ticker is accepted as payment.
	RequireSupportedToken(db gconf.ReadStore, ticker string) error

	// Cost returns the price of given number of usages, paid in ticker.
	Cost(db gconf.ReadStore, ticker string, usages uint32) (coin.Coin, error)

	// Custody returns the account holding the paid tokens.
	Custody() autoshare.Address
}

// BaseController reads the settings from the gconf record.
type BaseController struct{}

var _ Controller = BaseController{}

// NewController returns the default controller.
func NewController() BaseController {
	return BaseController{}
}

func (BaseController) RequireNotPaused(db gconf.ReadStore) error {
	paused, err := IsPaused(db)
	if err != nil {
		return errors.Wrap(err, "pause flag")
	}
	if paused {
		return errors.Wrap(ErrContractPaused, "state changes are disabled")
	}
	return nil
}

func (BaseController) IsAdmin(db gconf.ReadStore, addr autoshare.Address) (bool, error) {
	admin, err := Admin(db)
	switch {
	case err == nil:
		return admin.Equals(addr), nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}

func (BaseController) RequireSupportedToken(db gconf.ReadStore, ticker string) error {
	ok, err := IsTokenSupported(db, ticker)
	if err != nil {
		return errors.Wrap(err, "supported tokens")
	}
	if !ok {
		return errors.Wrapf(ErrUnsupportedToken, "%q", ticker)
	}
	return nil
}

func (BaseController) Cost(db gconf.ReadStore, ticker string, usages uint32) (coin.Coin, error) {
	fee, err := UsageFee(db)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "usage fee")
	}
	return cost(ticker, fee, usages)
}

// cost multiplies in 64 bits, two 32 bit factors cannot overflow it.
func cost(ticker string, fee, usages uint32) (coin.Coin, error) {
	total := uint64(fee) * uint64(usages)
	if total > math.MaxInt64 {
		return coin.Coin{}, errors.Wrapf(errors.ErrOverflow, "%d usages at %d", usages, fee)
	}
	return coin.NewCoin(int64(total), ticker), nil
}

func (BaseController) Custody() autoshare.Address {
	return CustodyAccount
}

// ContractBalance returns the amount of given ticker held in custody.
func ContractBalance(db autoshare.ReadOnlyKVStore, ctrl cash.Controller, ticker string) (coin.Coin, error) {
	return ctrl.Balance(db, CustodyAccount, ticker)
}
