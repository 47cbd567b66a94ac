package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
	"golang.org/x/crypto/ed25519"
)

const (
	// ExtensionName is used for the condition of all signature based
	// identities.
	ExtensionName = "sigs"

	algoEd25519 = "ed25519"
)

// PublicKey is an ed25519 public key.
type PublicKey []byte

// PrivateKey is an ed25519 private key. The first 32 bytes are the seed.
type PrivateKey []byte

// GenPrivKeyEd25519 creates a new key from the system randomness.
func GenPrivKeyEd25519() PrivateKey {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return PrivateKey(priv)
}

// PrivKeyEd25519FromSeed will make a deterministic key from a 32 byte seed.
// It panics when the seed has a wrong size.
func PrivKeyEd25519FromSeed(seed []byte) PrivateKey {
	if len(seed) != ed25519.SeedSize {
		panic(fmt.Sprintf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed)))
	}
	return PrivateKey(ed25519.NewKeyFromSeed(seed))
}

// PublicKey returns the matching public key.
func (p PrivateKey) PublicKey() PublicKey {
	pub := ed25519.PrivateKey(p).Public().(ed25519.PublicKey)
	return PublicKey(pub)
}

// Sign returns the signature of message.
func (p PrivateKey) Sign(message []byte) ([]byte, error) {
	if len(p) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "private key size %d", len(p))
	}
	return ed25519.Sign(ed25519.PrivateKey(p), message), nil
}

// Verify checks that signature was made over message by the owner of this
// key.
func (p PublicKey) Verify(message, signature []byte) bool {
	if len(p) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p), message, signature)
}

// Condition encodes the public key into a condition. The key itself is
// hashed so that the condition has a fixed size.
func (p PublicKey) Condition() autoshare.Condition {
	h := sha256.Sum256(p)
	return autoshare.NewCondition(ExtensionName, algoEd25519, h[:])
}

// Address is the address of the key condition.
func (p PublicKey) Address() autoshare.Address {
	return p.Condition().Address()
}

// String returns the hex form of the key.
func (p PublicKey) String() string {
	return hex.EncodeToString(p)
}

// ParsePublicKey decodes a hex encoded public key.
func ParsePublicKey(s string) (PublicKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "public key size %d", len(raw))
	}
	return PublicKey(raw), nil
}

// MarshalJSON encodes the key in its hex form.
func (p PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts the hex form of a key.
func (p *PublicKey) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	key, err := ParsePublicKey(s)
	if err != nil {
		return err
	}
	*p = key
	return nil
}
