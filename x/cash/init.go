package cash

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file.
type GenesisAccount struct {
	Address autoshare.Address `json:"address"`
	Coins   []coin.Coin       `json:"coins"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ autoshare.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts autoshare.Options, db autoshare.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	ctrl := NewController(NewWalletBucket())
	for i, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		for _, c := range acct.Coins {
			if !c.IsPositive() {
				return errors.Wrapf(errors.ErrAmount, "account %d: %s", i, c)
			}
			if err := ctrl.IssueCoins(db, acct.Address, c); err != nil {
				return errors.Wrapf(err, "account %d", i)
			}
		}
	}
	return nil
}
