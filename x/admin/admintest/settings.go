/*
Package admintest provides an admin.Controller with settings kept in memory,
for testing extensions that depend on the global settings.
*/
package admintest

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/gconf"
	"github.com/iov-one/autoshare/x/admin"
)

// Settings ignores the store and answers using its fields.
type Settings struct {
	Admin  autoshare.Address
	Paused bool
	Fee    uint32
	Tokens []string
}

var _ admin.Controller = (*Settings)(nil)

func (s *Settings) RequireNotPaused(gconf.ReadStore) error {
	if s.Paused {
		return admin.ErrContractPaused
	}
	return nil
}

func (s *Settings) IsAdmin(_ gconf.ReadStore, addr autoshare.Address) (bool, error) {
	return s.Admin.Equals(addr), nil
}

func (s *Settings) RequireSupportedToken(_ gconf.ReadStore, ticker string) error {
	for _, t := range s.Tokens {
		if t == ticker {
			return nil
		}
	}
	return errors.Wrap(admin.ErrUnsupportedToken, ticker)
}

func (s *Settings) Cost(_ gconf.ReadStore, ticker string, usages uint32) (coin.Coin, error) {
	return coin.NewCoin(int64(s.Fee)*int64(usages), ticker), nil
}

func (s *Settings) Custody() autoshare.Address {
	return admin.CustodyAccount
}
