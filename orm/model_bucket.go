package orm

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/codec"
	"github.com/iov-one/autoshare/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Model is implemented by any entity that can be stored using ModelBucket.
// Models are serialized with the codec package.
type Model interface {
	Validate() error
}

// ModelSlicePtr is a pointer to a slice of models, for example
// *[]*group.Group or *[]group.Group.
type ModelSlicePtr interface{}

// ModelBucket is implemented by buckets that operates on Models.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db autoshare.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key value exists. It
	// returns ErrNotFound if no entity can be found.
	Has(db autoshare.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database. If key is nil, a new one is
	// taken from the id sequence. The key used is returned.
	Put(db autoshare.KVStore, key []byte, m Model) ([]byte, error)

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db autoshare.KVStore, key []byte) error

	// ByIndex loads all entities indexed under given value of the named
	// index into destination. Entities are ordered by their primary key.
	// The primary keys are returned.
	ByIndex(db autoshare.ReadOnlyKVStore, indexName string, value []byte, dest ModelSlicePtr) ([][]byte, error)
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIndex configures the bucket to build an index with given name. All
// entities stored in the bucket are indexed using value returned by the
// indexer function. If an index is unique, there can be only one entity
// referenced per index value.
func WithIndex(name string, indexer Indexer, unique bool) ModelBucketOption {
	return WithMultiKeyIndex(name, asMultiKeyIndexer(indexer), unique)
}

// WithMultiKeyIndex configures the bucket to build an index under which an
// entity is referenced by every value returned by the indexer.
func WithMultiKeyIndex(name string, indexer MultiKeyIndexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		if _, ok := mb.indexes[name]; ok {
			panic(fmt.Sprintf("Index %s registered twice", name))
		}
		mb.indexes[name] = newCompactIndex(mb.name, name, indexer, unique)
	}
}

// WithIDSequence configures the bucket to use the given sequence instance
// for generating ID.
func WithIDSequence(s Sequence) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.idSeq = s
	}
}

// WithTTL keeps the entities of the bucket, their index records and the id
// sequence alive. Every successful read and write renews them using given
// policy when the store supports expiration.
func WithTTL(p autoshare.TTLPolicy) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.ttl = &p
	}
}

// NewModelBucket returns a ModelBucket instance storing models of the same
// type as given one. The model must be a pointer to a struct.
func NewModelBucket(name string, m Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	tp := reflect.TypeOf(m)
	if tp.Kind() != reflect.Ptr || tp.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("model must be a pointer to a struct, got %T", m))
	}
	mb := &modelBucket{
		name:    name,
		prefix:  []byte(name + ":"),
		model:   tp,
		idSeq:   NewSequence(name, "id"),
		indexes: make(map[string]*compactIndex),
	}
	for _, fn := range opts {
		fn(mb)
	}
	mb.idSeq.ttl = mb.ttl
	for _, idx := range mb.indexes {
		idx.ttl = mb.ttl
	}
	return mb
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	idSeq   Sequence
	indexes map[string]*compactIndex
	ttl     *autoshare.TTLPolicy
}

var _ ModelBucket = (*modelBucket)(nil)

// dbKey is the full key we store in the db, including prefix
func (mb *modelBucket) dbKey(key []byte) []byte {
	l := len(mb.prefix)
	out := make([]byte, l+len(key))
	copy(out, mb.prefix)
	copy(out[l:], key)
	return out
}

func (mb *modelBucket) renew(db autoshare.ReadOnlyKVStore, key []byte) error {
	if mb.ttl == nil {
		return nil
	}
	return autoshare.Renew(db, mb.dbKey(key), *mb.ttl)
}

// load returns a new model instance or nil if not found.
func (mb *modelBucket) load(db autoshare.ReadOnlyKVStore, key []byte) (Model, error) {
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return nil, errors.Wrap(err, "cannot load from the database")
	}
	if raw == nil {
		return nil, nil
	}
	m := reflect.New(mb.model.Elem()).Interface().(Model)
	if err := codec.Unmarshal(raw, m); err != nil {
		return nil, errors.Wrapf(err, "%s bucket", mb.name)
	}
	return m, nil
}

func (mb *modelBucket) One(db autoshare.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest) != mb.model {
		return errors.Wrapf(errors.ErrType, "%s cannot be represented as %T", mb.model, dest)
	}
	m, err := mb.load(db, key)
	if err != nil {
		return err
	}
	if m == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := mb.renew(db, key); err != nil {
		return err
	}
	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(m).Elem())
	return nil
}

func (mb *modelBucket) Has(db autoshare.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot query the database")
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s not in the store", mb.name)
	}
	return nil
}

func (mb *modelBucket) Put(db autoshare.KVStore, key []byte, m Model) ([]byte, error) {
	if reflect.TypeOf(m) != mb.model {
		return nil, errors.Wrapf(errors.ErrType, "cannot store %T in %s bucket", m, mb.name)
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}
	if len(key) == 0 {
		var err error
		key, err = mb.idSeq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "id sequence")
		}
	}
	raw, err := codec.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "cannot serialize model")
	}
	if len(mb.indexes) > 0 {
		prev, err := mb.load(db, key)
		if err != nil {
			return nil, err
		}
		for _, idx := range mb.indexes {
			if err := idx.Update(db, key, prev, m); err != nil {
				return nil, errors.Wrap(err, "cannot update index")
			}
		}
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return nil, errors.Wrap(err, "cannot store in the database")
	}
	if err := mb.renew(db, key); err != nil {
		return nil, err
	}
	return key, nil
}

func (mb *modelBucket) Delete(db autoshare.KVStore, key []byte) error {
	prev, err := mb.load(db, key)
	if err != nil {
		return err
	}
	if prev == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s not in the store", mb.name)
	}
	for _, idx := range mb.indexes {
		if err := idx.Update(db, key, prev, nil); err != nil {
			return errors.Wrap(err, "cannot update index")
		}
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrap(err, "cannot delete from the database")
	}
	return nil
}

func (mb *modelBucket) ByIndex(db autoshare.ReadOnlyKVStore, indexName string, value []byte, dest ModelSlicePtr) ([][]byte, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidIndex, "name %q", indexName)
	}

	slice := reflect.ValueOf(dest)
	if slice.Kind() != reflect.Ptr || slice.Elem().Kind() != reflect.Slice {
		return nil, errors.Wrap(errors.ErrType, "destination must be a pointer to a slice of models")
	}
	elem := slice.Elem().Type().Elem()
	byPtr := elem == mb.model
	if !byPtr && reflect.PtrTo(elem) != mb.model {
		return nil, errors.Wrapf(errors.ErrType, "cannot load %s into %s", mb.model, slice.Type())
	}

	keys, err := idx.Keys(db, value)
	if err != nil {
		return nil, err
	}
	out := slice.Elem()
	for _, key := range keys {
		m, err := mb.load(db, key)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, errors.Wrapf(errors.ErrHuman, "index %s references missing %X", indexName, key)
		}
		if err := mb.renew(db, key); err != nil {
			return nil, err
		}
		v := reflect.ValueOf(m)
		if !byPtr {
			v = v.Elem()
		}
		out = reflect.Append(out, v)
	}
	slice.Elem().Set(out)
	return keys, nil
}
