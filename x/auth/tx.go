package auth

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/crypto"
	"github.com/iov-one/autoshare/errors"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the auth.Decorator
type SignedTx interface {
	autoshare.Tx

	// GetSignBytes returns the canonical byte representation of the Msg.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signature of signers who signed the Msg.
	GetSignatures() []*Signature
}

// Signature is a signature over the sign bytes of a transaction, bound to
// the chain and to the next sequence of the signer.
type Signature struct {
	PubKey    crypto.PublicKey `json:"pubkey"`
	Sequence  int64            `json:"sequence"`
	Signature []byte           `json:"signature"`
}

// Validate ensures the Signature meets basic standards
func (s *Signature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if len(s.PubKey) == 0 {
		return errors.Wrap(errors.ErrEmpty, "public key")
	}
	if len(s.Signature) == 0 {
		return ErrMissingSignature
	}
	return nil
}
