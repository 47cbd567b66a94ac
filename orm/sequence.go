package orm

import (
	"encoding/binary"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
)

// Sequence maintains a counter, and generates a
// series of keys. Each key is greater than the last,
// both NextInt() as well as bytes.Compare() on NextVal().
type Sequence struct {
	id  []byte
	ttl *autoshare.TTLPolicy
}

// NewSequence returns a sequence counter. Sequence is using following pattern
// to construct a key:
//    _s.<bucket>:<name>
func NewSequence(bucket, name string) Sequence {
	id := "_s." + bucket + ":" + name
	return Sequence{
		id: []byte(id),
	}
}

// NextVal increments the sequence and returns its state as 8 bytes.
func (s *Sequence) NextVal(db autoshare.KVStore) ([]byte, error) {
	_, bz, err := s.increment(db, 1)
	return bz, err
}

// NextInt increments the sequence and returns its state as int.
func (s *Sequence) NextInt(db autoshare.KVStore) (int64, error) {
	val, _, err := s.increment(db, 1)
	return val, err
}

// Latest returns the recently returned value of the sequence. This method does
// not modify the sequence state. Use NextVal or NextInt to acquire a sequence
// value that was not given to anyone else.
func (s *Sequence) Latest(db autoshare.ReadOnlyKVStore) (int64, error) {
	raw, err := db.Get(s.id)
	if err != nil {
		return 0, errors.Wrap(err, "load sequence")
	}
	return DecodeSequence(raw)
}

func (s *Sequence) increment(db autoshare.KVStore, inc int64) (int64, []byte, error) {
	val, err := s.Latest(db)
	if err != nil {
		return 0, nil, err
	}
	val += inc
	raw := EncodeSequence(val)
	if err := db.Set(s.id, raw); err != nil {
		return 0, nil, errors.Wrap(err, "save sequence")
	}
	if s.ttl != nil {
		if err := autoshare.Renew(db, s.id, *s.ttl); err != nil {
			return 0, nil, errors.Wrap(err, "renew sequence")
		}
	}
	return val, raw, nil
}

// DecodeSequence decodes the value of a sequence. A missing value is zero.
func DecodeSequence(bz []byte) (int64, error) {
	if bz == nil {
		return 0, nil
	}
	if len(bz) != 8 {
		return 0, errors.Wrap(errors.ErrInput, "sequence must be 8 bytes")
	}
	return int64(binary.BigEndian.Uint64(bz)), nil
}

// EncodeSequence encodes a sequence value so that byte order matches the
// numeric order.
func EncodeSequence(val int64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(val))
	return bz
}
