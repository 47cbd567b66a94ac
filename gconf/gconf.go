package gconf

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/codec"
	"github.com/iov-one/autoshare/errors"
)

// ReadStore is a subset of autoshare.ReadOnlyKVStore.
type ReadStore = autoshare.ReadOnlyKVStore

// Store is a subset of autoshare.KVStore.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// Configuration is implemented by any configuration type. Configurations
// are serialized with the codec package, so they must be pointers to
// structures with exported fields.
type Configuration interface {
	Validate() error
}

func configKey(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save validates the configuration before writing it to the singleton record
// of given package.
func Save(db Store, pkg string, src Configuration) error {
	key := configKey(pkg)
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "validation: key %q", key)
	}
	raw, err := codec.Marshal(src)
	if err != nil {
		return errors.Wrapf(err, "marshal: key %q", key)
	}
	if err := db.Set(key, raw); err != nil {
		return errors.Wrapf(err, "set: key %q", key)
	}
	return autoshare.Renew(db, key, autoshare.DefaultTTL)
}

// Load reads the configuration of given package into dst. ErrNotFound is
// returned if the configuration was never saved.
func Load(db ReadStore, pkg string, dst Configuration) error {
	key := configKey(pkg)
	raw, err := db.Get(key)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "key %q", key)
	}
	if err := codec.Unmarshal(raw, dst); err != nil {
		return errors.Wrapf(err, "unmarshal: key %q", key)
	}
	return autoshare.Renew(db, key, autoshare.DefaultTTL)
}

// Exists returns true if a configuration of given package was saved.
func Exists(db ReadStore, pkg string) (bool, error) {
	return db.Has(configKey(pkg))
}

// InitConfig takes opts["conf"][pkg], parses it into the given configuration,
// validates it and stores it under the configuration key of the package.
func InitConfig(db Store, opts autoshare.Options, pkg string, conf Configuration) error {
	var confOptions autoshare.Options
	if err := opts.ReadOptions("conf", &confOptions); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if confOptions[pkg] == nil {
		return errors.Wrapf(errors.ErrNotFound, "no configuration in genesis for %q package", pkg)
	}
	if err := confOptions.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(errors.ErrInput, "read configuration for %s: %s", pkg, err)
	}
	if err := Save(db, pkg, conf); err != nil {
		return errors.Wrapf(err, "save configuration for %s", pkg)
	}
	return nil
}
