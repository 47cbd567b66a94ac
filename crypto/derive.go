package crypto

import (
	"github.com/iov-one/autoshare/errors"
	"github.com/stellar/go/exp/crypto/derivation"
)

// DefaultDerivationPath is the bip44 path of the first account.
const DefaultDerivationPath = "m/44'/234'/0'"

// DerivePrivKeyEd25519 returns the key found at given SLIP-10 path of the
// seed. Only hardened path segments are supported.
func DerivePrivKeyEd25519(seed []byte, path string) (PrivateKey, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, errors.Wrapf(errors.ErrInput, "seed must be 16 to 64 bytes, got %d", len(seed))
	}
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "path %q: %s", path, err)
	}
	return PrivKeyEd25519FromSeed(k.Key), nil
}
