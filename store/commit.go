package store

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"

	"github.com/iov-one/autoshare/errors"
)

var versionKey = []byte("_meta:version")

// CommitStore persists ledger state in a durable store. Every block is
// prepared in a cache wrap obtained from CacheWrapAt and written at once by
// Commit. Expiration of entries is handled by a TTLStore view.
type CommitStore struct {
	db     KVStore
	minTTL uint32
	latest CommitID
}

var _ CommitKVStore = (*CommitStore)(nil)

// NewCommitStore loads the latest committed version from db.
func NewCommitStore(db KVStore, minTTL uint32) (*CommitStore, error) {
	s := &CommitStore{db: db, minTTL: minTTL}
	raw, err := db.Get(versionKey)
	if err != nil {
		return nil, errors.Wrap(err, "load version")
	}
	if raw != nil {
		if len(raw) != 8+sha256.Size {
			return nil, errors.Wrap(errors.ErrDatabase, "corrupted version record")
		}
		s.latest = CommitID{
			Version: int64(binary.BigEndian.Uint64(raw[:8])),
			Hash:    raw[8:],
		}
	}
	return s, nil
}

// LatestVersion returns the last committed version.
func (s *CommitStore) LatestVersion() CommitID {
	return s.latest
}

// ReadOnly returns a view of the committed state at given ledger sequence.
// Reads through the view never renew entries.
func (s *CommitStore) ReadOnly(ledger uint32) ReadOnlyKVStore {
	return readOnly{NewTTLStore(s.db, ledger, s.minTTL)}
}

type readOnly struct {
	ReadOnlyKVStore
}

// CacheWrapAt returns a scratch-pad over the committed state at given
// ledger sequence. Pass it to Commit to persist it.
func (s *CommitStore) CacheWrapAt(ledger uint32) KVCacheWrap {
	h := sha256.New()
	h.Write(s.latest.Hash)
	ttl := NewTTLStore(&hashingStore{KVStore: s.db, h: h}, ledger, s.minTTL)
	return &commitCache{KVCacheWrap: ttl.CacheWrap(), h: h}
}

// Commit writes given cache as the next version. The version record is
// written in the same batch as the data.
func (s *CommitStore) Commit(cache KVCacheWrap) (CommitID, error) {
	c, ok := cache.(*commitCache)
	if !ok {
		return CommitID{}, errors.Wrapf(errors.ErrType, "cache %T not created by this store", cache)
	}
	next := CommitID{Version: s.latest.Version + 1}
	var ver [8]byte
	binary.BigEndian.PutUint64(ver[:], uint64(next.Version))
	c.h.Write(ver[:])
	next.Hash = c.h.Sum(nil)

	if err := c.Set(versionKey, append(ver[:], next.Hash...)); err != nil {
		return CommitID{}, errors.Wrap(err, "set version")
	}
	if err := c.Write(); err != nil {
		return CommitID{}, errors.Wrap(err, "write block")
	}
	s.latest = next
	return next, nil
}

type commitCache struct {
	KVCacheWrap
	h hash.Hash
}

// Renew is forwarded to the embedded cache.
func (c *commitCache) Renew(key []byte, threshold, extendTo uint32) error {
	if r, ok := c.KVCacheWrap.(Renewer); ok {
		return r.Renew(key, threshold, extendTo)
	}
	return nil
}

// hashingStore feeds every write of its batches into the version hash.
type hashingStore struct {
	KVStore
	h hash.Hash
}

func (s *hashingStore) NewBatch() Batch {
	return &hashingBatch{Batch: s.KVStore.NewBatch(), h: s.h}
}

type hashingBatch struct {
	Batch
	h hash.Hash
}

func (b *hashingBatch) Set(key, value []byte) error {
	b.h.Write([]byte{'s'})
	b.write(key)
	b.write(value)
	return b.Batch.Set(key, value)
}

func (b *hashingBatch) Delete(key []byte) error {
	b.h.Write([]byte{'d'})
	b.write(key)
	return b.Batch.Delete(key)
}

func (b *hashingBatch) write(data []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(data)))
	b.h.Write(n[:])
	b.h.Write(data)
}
