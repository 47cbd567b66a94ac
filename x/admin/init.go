package admin

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/gconf"
)

// Initializer loads the settings from the "conf.admin" genesis section.
// Without that section the admin must be set with InitAdminMsg.
type Initializer struct{}

var _ autoshare.Initializer = Initializer{}

func (Initializer) FromGenesis(opts autoshare.Options, db autoshare.KVStore) error {
	conf := Configuration{UsageFee: DefaultUsageFee}
	err := gconf.InitConfig(db, opts, confPkg, &conf)
	if errors.ErrNotFound.Is(err) {
		return nil
	}
	return err
}
