package auth

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/crypto"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/orm"
)

// UserData keeps the public key of a signer and the sequence its next
// signature must use.
type UserData struct {
	PubKey   crypto.PublicKey `json:"pubkey"`
	Sequence int64            `json:"sequence"`
}

var _ orm.Model = (*UserData)(nil)

func (u *UserData) Validate() error {
	if len(u.PubKey) == 0 {
		return errors.Wrap(errors.ErrModel, "missing public key")
	}
	if u.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	return nil
}

// CheckAndIncrementSequence accepts only the expected sequence, so every
// signature can be used once.
func (u *UserData) CheckAndIncrementSequence(seq int64) error {
	if u.Sequence != seq {
		return errors.Wrapf(ErrInvalidSequence, "expected %d, got %d", u.Sequence, seq)
	}
	u.Sequence++
	return nil
}

// UserBucket keeps UserData under the signer address.
type UserBucket struct {
	orm.ModelBucket
}

func NewUserBucket() UserBucket {
	b := orm.NewModelBucket("user", &UserData{},
		orm.WithTTL(autoshare.DefaultTTL),
	)
	return UserBucket{ModelBucket: b}
}

// GetOrCreate returns the data of given key, initialized with sequence zero
// if the key has not signed anything yet.
func (b UserBucket) GetOrCreate(db autoshare.ReadOnlyKVStore, pub crypto.PublicKey) (*UserData, error) {
	var u UserData
	switch err := b.One(db, pub.Address(), &u); {
	case err == nil:
		return &u, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{PubKey: pub}, nil
	default:
		return nil, errors.Wrap(err, "load user")
	}
}
