/*
Package leveldb provides a durable KVStore backed by goleveldb. Batches are
written atomically, which makes it a suitable base for store.CommitStore.
*/
package leveldb

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// DB is a KVStore persisting data with leveldb.
type DB struct {
	db *leveldb.DB
}

var _ autoshare.KVStore = (*DB)(nil)

// Open opens or creates a database in given directory.
func Open(path string) (*DB, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open %q: %s", path, err)
	}
	return &DB{db: db}, nil
}

// NewMem returns an in-memory database. Useful for tests.
func NewMem() (*DB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open memory: %s", err)
	}
	return &DB{db: db}, nil
}

// Close releases the database files.
func (d *DB) Close() error {
	return d.db.Close()
}

// Get returns nil iff key doesn't exist.
func (d *DB) Get(key []byte) ([]byte, error) {
	val, err := d.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "get: %s", err)
	}
	return val, nil
}

// Has checks if a key exists.
func (d *DB) Has(key []byte) (bool, error) {
	ok, err := d.db.Has(key, nil)
	if err != nil {
		return false, errors.Wrapf(errors.ErrDatabase, "has: %s", err)
	}
	return ok, nil
}

// Set writes the value synchronously.
func (d *DB) Set(key, value []byte) error {
	if err := d.db.Put(key, value, &opt.WriteOptions{Sync: true}); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "set: %s", err)
	}
	return nil
}

// Delete removes the key synchronously.
func (d *DB) Delete(key []byte) error {
	if err := d.db.Delete(key, &opt.WriteOptions{Sync: true}); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "delete: %s", err)
	}
	return nil
}

// NewBatch returns a batch that is written atomically.
func (d *DB) NewBatch() autoshare.Batch {
	return &batch{db: d.db, b: new(leveldb.Batch)}
}

type batch struct {
	db *leveldb.DB
	b  *leveldb.Batch
}

func (b *batch) Set(key, value []byte) error {
	b.b.Put(key, value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.b.Delete(key)
	return nil
}

func (b *batch) Write() error {
	if err := b.db.Write(b.b, &opt.WriteOptions{Sync: true}); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "write batch: %s", err)
	}
	b.b.Reset()
	return nil
}
