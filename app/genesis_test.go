package app

import (
	"testing"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dummyKey = "dummy"

type dummyInit struct{}

func (dummyInit) FromGenesis(opts autoshare.Options, db autoshare.KVStore) error {
	var value string
	if err := opts.ReadOptions(dummyKey, &value); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return db.Set([]byte(dummyKey), []byte(value))
}

type countInit struct {
	called int
}

func (c *countInit) FromGenesis(autoshare.Options, autoshare.KVStore) error {
	c.called++
	return nil
}

func TestLoadGenesis(t *testing.T) {
	cases := map[string]struct {
		file        string
		wantLoadErr *errors.Error
		wantInitErr *errors.Error
		wantChain   string
		wantCalled  int
		wantValue   []byte
	}{
		"no such file": {
			file:        "testdata/missing.json",
			wantLoadErr: errors.ErrInput,
		},
		"invalid chain id": {
			file:        "testdata/bad_chain.json",
			wantLoadErr: errors.ErrInput,
		},
		"valid genesis": {
			file:       "testdata/genesis.json",
			wantChain:  "test-chain-67",
			wantCalled: 1,
			wantValue:  []byte("secret"),
		},
		"initializer rejects the state": {
			file:        "testdata/bad_genesis.json",
			wantChain:   "super-chain-22",
			wantInitErr: errors.ErrInput,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			gen, err := LoadGenesis(tc.file)
			if tc.wantLoadErr != nil {
				require.True(t, tc.wantLoadErr.Is(err), "%+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantChain, gen.ChainID)

			db := store.MemStore()
			counter := &countInit{}
			err = ChainInitializers(dummyInit{}, counter).FromGenesis(gen.AppState, db)
			if tc.wantInitErr != nil {
				require.True(t, tc.wantInitErr.Is(err), "%+v", err)
				assert.Equal(t, 0, counter.called)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantCalled, counter.called)
			value, err := db.Get([]byte(dummyKey))
			require.NoError(t, err)
			assert.Equal(t, tc.wantValue, value)
		})
	}
}

func TestChainID(t *testing.T) {
	db := store.MemStore()

	id, err := loadChainID(db)
	require.NoError(t, err)
	assert.Equal(t, "", id)

	assert.True(t, errors.ErrInput.Is(saveChainID(db, "bad")))
	require.NoError(t, saveChainID(db, "autoshare-dev"))
	assert.True(t, errors.ErrState.Is(saveChainID(db, "autoshare-dev2")))

	id, err = loadChainID(db)
	require.NoError(t, err)
	assert.Equal(t, "autoshare-dev", id)
}
