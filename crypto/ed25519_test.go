package crypto

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/iov-one/autoshare/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	priv := GenPrivKeyEd25519()
	other := GenPrivKeyEd25519()
	pub := priv.PublicKey()

	msg := []byte("distribute 1000 IOV")
	sig, err := priv.Sign(msg)
	require.NoError(t, err)

	assert.True(t, pub.Verify(msg, sig))
	assert.False(t, pub.Verify([]byte("distribute 1001 IOV"), sig))
	assert.False(t, other.PublicKey().Verify(msg, sig))
	assert.False(t, pub.Verify(msg, sig[:10]))

	assert.NoError(t, pub.Condition().Validate())
	assert.NotEqual(t, pub.Address(), other.PublicKey().Address())

	_, err = PrivateKey([]byte{1, 2, 3}).Sign(msg)
	assert.True(t, errors.ErrInput.Is(err))
}

func TestPrivKeyEd25519FromSeed(t *testing.T) {
	cases := map[string]struct {
		seed     []byte
		expected []byte
	}{
		"success 1": {
			seed:     make([]byte, 32),
			expected: []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 59, 106, 39, 188, 206, 182, 164, 45, 98, 163, 168, 208, 42, 111, 13, 115, 101, 50, 21, 119, 29, 226, 67, 166, 58, 192, 72, 161, 139, 89, 218, 41},
		},
		"failure no seed": {
			seed: nil,
		},
		"failure wrong seed size (n<32)": {
			seed: []byte{0},
		},
		"failure wrong seed size (n>32)": {
			seed: make([]byte, 33),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if tc.expected == nil {
				assert.Panics(t, func() { PrivKeyEd25519FromSeed(tc.seed) })
				return
			}
			assert.Equal(t, tc.expected, []byte(PrivKeyEd25519FromSeed(tc.seed)))
		})
	}
}

func TestParsePublicKey(t *testing.T) {
	pub := GenPrivKeyEd25519().PublicKey()
	got, err := ParsePublicKey(pub.String())
	require.NoError(t, err)
	assert.Equal(t, pub, got)

	_, err = ParsePublicKey("zz")
	assert.True(t, errors.ErrInput.Is(err))
	_, err = ParsePublicKey("abcd")
	assert.True(t, errors.ErrInput.Is(err))
}

func TestKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.json")
	priv := GenPrivKeyEd25519()

	require.NoError(t, SaveKey(path, priv))
	// never overwrite an existing key
	assert.Error(t, SaveKey(path, GenPrivKeyEd25519()))

	loaded, err := LoadKey(path)
	require.NoError(t, err)
	assert.Equal(t, priv, loaded)
	assert.Equal(t, priv.PublicKey().Address(), NewKeyFile(loaded).Address)
}

func TestPublicKeyJSON(t *testing.T) {
	pub := GenPrivKeyEd25519().PublicKey()
	raw, err := json.Marshal(pub)
	require.NoError(t, err)
	assert.Equal(t, `"`+pub.String()+`"`, string(raw))

	var got PublicKey
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, pub, got)

	assert.Error(t, json.Unmarshal([]byte(`"abcd"`), &got))
	assert.Error(t, json.Unmarshal([]byte(`12`), &got))
}
