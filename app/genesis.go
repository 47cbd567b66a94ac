package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
)

// Genesis is the content of a genesis file. Each extension looks up its own
// key of the app state.
type Genesis struct {
	ChainID  string            `json:"chain_id"`
	AppState autoshare.Options `json:"app_state"`
}

// Validate returns an error if the chain id cannot be used.
func (g Genesis) Validate() error {
	if !autoshare.IsValidChainID(g.ChainID) {
		return errors.Wrapf(errors.ErrInput, "invalid chain id %q", g.ChainID)
	}
	return nil
}

// LoadGenesis reads and parses a genesis file.
func LoadGenesis(path string) (Genesis, error) {
	var gen Genesis
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return gen, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "genesis file: %s", err)
	}
	return gen, gen.Validate()
}

// ChainInitializers lets you initialize many extensions with one function.
func ChainInitializers(inits ...autoshare.Initializer) autoshare.Initializer {
	return chainInitializer(inits)
}

type chainInitializer []autoshare.Initializer

// FromGenesis passes opts to all initializers in the list, aborting at the
// first error.
func (c chainInitializer) FromGenesis(opts autoshare.Options, db autoshare.KVStore) error {
	for _, i := range c {
		if err := i.FromGenesis(opts, db); err != nil {
			return err
		}
	}
	return nil
}

const chainIDKey = "_meta:chain_id"

// loadChainID returns the stored chain id. An empty string is returned for
// a ledger that was never initialized.
func loadChainID(db autoshare.ReadOnlyKVStore) (string, error) {
	v, err := db.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id. It fails if one is already set.
func saveChainID(db autoshare.KVStore, chainID string) error {
	if !autoshare.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "invalid chain id %q", chainID)
	}
	k := []byte(chainIDKey)
	switch ok, err := db.Has(k); {
	case err != nil:
		return errors.Wrap(err, "load chain id")
	case ok:
		return errors.Wrap(errors.ErrState, "chain id already set")
	}
	return db.Set(k, []byte(chainID))
}
