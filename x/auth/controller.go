package auth

import (
	"encoding/binary"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/crypto"
	"github.com/iov-one/autoshare/errors"
)

// signCodeV1 prefixes all sign bytes so that they cannot be mistaken for
// any other signed content.
var signCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// VerifySignatures checks all the signatures on the tx, which must have
// at least one. Sequences of all signers are incremented.
//
// Returns a context with the verified signers on success.
func VerifySignatures(ctx autoshare.Context, db autoshare.KVStore, tx SignedTx) (autoshare.Context, error) {
	sigs := tx.GetSignatures()
	if len(sigs) == 0 {
		return nil, ErrMissingSignature
	}
	bz, err := tx.GetSignBytes()
	if err != nil {
		return nil, errors.Wrap(err, "sign bytes")
	}
	chainID := autoshare.GetChainID(ctx)

	users := NewUserBucket()
	signers := make([]autoshare.Condition, 0, len(sigs))
	for i, sig := range sigs {
		if err := verifySignature(db, users, sig, bz, chainID); err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
		signers = append(signers, sig.PubKey.Condition())
	}
	return withSigners(ctx, signers), nil
}

func verifySignature(db autoshare.KVStore, users UserBucket, sig *Signature, signBytes []byte, chainID string) error {
	if err := sig.Validate(); err != nil {
		return err
	}
	user, err := users.GetOrCreate(db, sig.PubKey)
	if err != nil {
		return err
	}
	toSign, err := BuildSignBytes(signBytes, chainID, sig.Sequence)
	if err != nil {
		return err
	}
	if !sig.PubKey.Verify(toSign, sig.Signature) {
		return ErrInvalidSignature
	}
	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return err
	}
	_, err = users.Put(db, sig.PubKey.Address(), user)
	return errors.Wrap(err, "save user")
}

// BuildSignBytes combines all info on the actual tx before signing.
func BuildSignBytes(signBytes []byte, chainID string, seq int64) ([]byte, error) {
	if len(chainID) > 255 {
		return nil, errors.Wrap(errors.ErrInput, "chain id too long")
	}
	if seq < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative")
	}
	res := make([]byte, 0, len(signCodeV1)+1+len(chainID)+8+len(signBytes))
	res = append(res, signCodeV1...)
	res = append(res, byte(len(chainID)))
	res = append(res, chainID...)
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(seq))
	res = append(res, n[:]...)
	return append(res, signBytes...), nil
}

// SignTx signs the transaction for given chain with the given sequence.
func SignTx(key crypto.PrivateKey, tx SignedTx, chainID string, seq int64) (*Signature, error) {
	bz, err := tx.GetSignBytes()
	if err != nil {
		return nil, errors.Wrap(err, "sign bytes")
	}
	toSign, err := BuildSignBytes(bz, chainID, seq)
	if err != nil {
		return nil, err
	}
	raw, err := key.Sign(toSign)
	if err != nil {
		return nil, err
	}
	return &Signature{PubKey: key.PublicKey(), Sequence: seq, Signature: raw}, nil
}

// NextSequence returns the sequence the next signature of given address
// must use.
func NextSequence(db autoshare.ReadOnlyKVStore, addr autoshare.Address) (int64, error) {
	var u UserData
	switch err := NewUserBucket().One(db, addr, &u); {
	case err == nil:
		return u.Sequence, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, errors.Wrap(err, "load user")
	}
}
