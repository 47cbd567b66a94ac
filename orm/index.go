package orm

import (
	"bytes"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/codec"
	"github.com/iov-one/autoshare/errors"
)

const compactIdxPrefix = "_i."

// Indexer calculates the secondary index key for a given model. Returning
// nil key means the model is not indexed.
type Indexer func(Model) ([]byte, error)

// MultiKeyIndexer calculates the secondary index keys for a given model
type MultiKeyIndexer func(Model) ([][]byte, error)

func asMultiKeyIndexer(indexer Indexer) MultiKeyIndexer {
	return func(m Model) ([][]byte, error) {
		key, err := indexer(m)
		switch {
		case err != nil:
			return nil, err
		case key == nil:
			return nil, nil
		}
		return [][]byte{key}, nil
	}
}

// compactIndex is an index implementation that stores all indexed entities as
// a set, serialized and stored under single key. This implementation should
// be used only for small sized index collections.
type compactIndex struct {
	name   string
	id     []byte
	unique bool
	index  MultiKeyIndexer
	ttl    *autoshare.TTLPolicy
}

func newCompactIndex(bucket, name string, indexer MultiKeyIndexer, unique bool) *compactIndex {
	return &compactIndex{
		name:   name,
		id:     []byte(compactIdxPrefix + bucket + "_" + name + ":"),
		index:  indexer,
		unique: unique,
	}
}

// indexKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (i *compactIndex) indexKey(value []byte) []byte {
	l := len(i.id)
	out := make([]byte, l+len(value))
	copy(out, i.id)
	copy(out[l:], value)
	return out
}

func (i *compactIndex) refs(db autoshare.ReadOnlyKVStore, value []byte) (*MultiRef, error) {
	raw, err := db.Get(i.indexKey(value))
	if err != nil {
		return nil, errors.Wrap(err, "load index")
	}
	var refs MultiRef
	if raw == nil {
		return &refs, nil
	}
	if err := codec.Unmarshal(raw, &refs); err != nil {
		return nil, errors.Wrapf(err, "index %s", i.name)
	}
	return &refs, nil
}

// Keys returns all primary keys indexed under given value, in byte order.
func (i *compactIndex) Keys(db autoshare.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	refs, err := i.refs(db, value)
	if err != nil {
		return nil, err
	}
	if len(refs.Refs) > 0 {
		if err := i.renew(db, value); err != nil {
			return nil, err
		}
	}
	return refs.Refs, nil
}

func (i *compactIndex) renew(db autoshare.ReadOnlyKVStore, value []byte) error {
	if i.ttl == nil {
		return nil
	}
	return autoshare.Renew(db, i.indexKey(value), *i.ttl)
}

// Update makes sure the primary key is stored under all index values of
// save, and under none of the values of prev that save does not have.
//
// prev == nil means insert
// save == nil means delete
func (i *compactIndex) Update(db autoshare.KVStore, pk []byte, prev, save Model) error {
	if prev == nil && save == nil {
		return errors.Wrap(errors.ErrHuman, "update requires at least one non-nil model")
	}
	var before, after [][]byte
	var err error
	if prev != nil {
		if before, err = i.index(prev); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}
	if save != nil {
		if after, err = i.index(save); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}
	for _, v := range before {
		if !contains(after, v) {
			if err := i.remove(db, v, pk); err != nil {
				return err
			}
		}
	}
	for _, v := range after {
		if !contains(before, v) {
			if err := i.insert(db, v, pk); err != nil {
				return err
			}
		}
	}
	return nil
}

func contains(set [][]byte, v []byte) bool {
	for _, s := range set {
		if bytes.Equal(s, v) {
			return true
		}
	}
	return false
}

func (i *compactIndex) insert(db autoshare.KVStore, value, pk []byte) error {
	refs, err := i.refs(db, value)
	if err != nil {
		return err
	}
	if i.unique && len(refs.Refs) > 0 {
		return errors.Wrapf(ErrUniqueConstraint, "index %s", i.name)
	}
	if err := refs.Add(pk); err != nil {
		return errors.Wrapf(err, "index %s", i.name)
	}
	return i.save(db, value, refs)
}

func (i *compactIndex) remove(db autoshare.KVStore, value, pk []byte) error {
	refs, err := i.refs(db, value)
	if err != nil {
		return err
	}
	if err := refs.Remove(pk); err != nil {
		return errors.Wrapf(err, "index %s", i.name)
	}
	if len(refs.Refs) == 0 {
		return db.Delete(i.indexKey(value))
	}
	return i.save(db, value, refs)
}

func (i *compactIndex) save(db autoshare.KVStore, value []byte, refs *MultiRef) error {
	raw, err := codec.Marshal(refs)
	if err != nil {
		return err
	}
	if err := db.Set(i.indexKey(value), raw); err != nil {
		return errors.Wrap(err, "save index")
	}
	return i.renew(db, value)
}
