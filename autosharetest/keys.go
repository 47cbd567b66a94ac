package autosharetest

import (
	"crypto/rand"
	"testing"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/crypto"
)

// NewKey returns a fresh ed25519 key.
func NewKey() crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the condition of a fresh key.
func NewCondition() autoshare.Condition {
	return NewKey().PublicKey().Condition()
}

// RandomAddr returns a valid random address.
func RandomAddr(t testing.TB) autoshare.Address {
	t.Helper()
	raw := make([]byte, autoshare.AddressLength)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("cannot generate a random address: %s", err)
	}
	return autoshare.Address(raw)
}

// ParseAddress decodes an address in any of the accepted human readable
// forms and fails the test if it is not valid.
func ParseAddress(t testing.TB, encoded string) autoshare.Address {
	t.Helper()
	addr, err := autoshare.ParseAddress(encoded)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encoded, err)
	}
	return addr
}

// SequenceID returns the 32 byte identifier with n in its last byte. Use it
// for readable group ids.
func SequenceID(n byte) [32]byte {
	var id [32]byte
	id[31] = n
	return id
}
