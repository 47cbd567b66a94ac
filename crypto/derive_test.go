package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/iov-one/autoshare/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePrivKeyEd25519(t *testing.T) {
	seed, err := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	require.NoError(t, err)

	cases := map[string]struct {
		seed    []byte
		path    string
		wantKey string
		wantPub string
		wantErr *errors.Error
	}{
		"first hardened child": {
			seed:    seed,
			path:    "m/0'",
			wantKey: "68e0fe46dfb67e368c75379acec591dad19df3cde26e63b93a8e704f1dade7a3",
			wantPub: "8c8a13df77a28f3445213a0f432fde644acaa215fc72dcdf300d5efaa85d350c",
		},
		"master key": {
			seed:    seed,
			path:    "m",
			wantErr: errors.ErrInput,
		},
		"unhardened segment": {
			seed:    seed,
			path:    "m/44'/234/0'",
			wantErr: errors.ErrInput,
		},
		"short seed": {
			seed:    seed[:8],
			path:    DefaultDerivationPath,
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			key, err := DerivePrivKeyEd25519(tc.seed, tc.path)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantKey, hex.EncodeToString(key[:32]))
			assert.Equal(t, tc.wantPub, hex.EncodeToString(key.PublicKey()))
		})
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	seed := make([]byte, 32)
	a, err := DerivePrivKeyEd25519(seed, DefaultDerivationPath)
	require.NoError(t, err)
	b, err := DerivePrivKeyEd25519(seed, DefaultDerivationPath)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := DerivePrivKeyEd25519(seed, "m/44'/234'/1'")
	require.NoError(t, err)
	assert.NotEqual(t, a.PublicKey().Address(), other.PublicKey().Address())
}
