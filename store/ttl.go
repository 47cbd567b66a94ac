package store

import (
	"bytes"
	"encoding/binary"

	"github.com/iov-one/autoshare/errors"
)

var (
	ttlPrefix  = []byte("_ttl:")
	metaPrefix = []byte("_meta:")
)

// TTLStore keeps entries of the wrapped store alive for a limited number of
// ledgers. Every written entry has a companion record holding the last
// ledger it is live at. Entries past that ledger read as absent until they
// are written again.
//
// Keys starting with _meta: are bookkeeping of the store itself and never
// expire.
type TTLStore struct {
	db     KVStore
	ledger uint32
	minTTL uint32
}

var (
	_ CacheableKVStore = (*TTLStore)(nil)
	_ Renewer          = (*TTLStore)(nil)
)

// NewTTLStore returns a view of db at given ledger sequence. New entries
// live for minTTL ledgers unless renewed.
func NewTTLStore(db KVStore, ledger, minTTL uint32) *TTLStore {
	return &TTLStore{db: db, ledger: ledger, minTTL: minTTL}
}

// Ledger returns the ledger sequence this view is at.
func (s *TTLStore) Ledger() uint32 {
	return s.ledger
}

func ttlKey(key []byte) []byte {
	return append(append([]byte{}, ttlPrefix...), key...)
}

func expires(key []byte) bool {
	return !bytes.HasPrefix(key, metaPrefix) && !bytes.HasPrefix(key, ttlPrefix)
}

func encodeLedger(n uint32) []byte {
	raw := make([]byte, 4)
	binary.BigEndian.PutUint32(raw, n)
	return raw
}

// LiveUntil returns the last ledger given key is live at. The second value
// is false if the entry has no expiration record.
func (s *TTLStore) LiveUntil(key []byte) (uint32, bool, error) {
	raw, err := s.db.Get(ttlKey(key))
	if err != nil {
		return 0, false, err
	}
	if raw == nil {
		return 0, false, nil
	}
	if len(raw) != 4 {
		return 0, false, errors.Wrapf(errors.ErrDatabase, "invalid ttl record for %X", key)
	}
	return binary.BigEndian.Uint32(raw), true, nil
}

func (s *TTLStore) expired(key []byte) (bool, error) {
	if !expires(key) {
		return false, nil
	}
	until, ok, err := s.LiveUntil(key)
	if err != nil {
		return false, err
	}
	return ok && until < s.ledger, nil
}

// Get returns nil for missing and expired entries.
func (s *TTLStore) Get(key []byte) ([]byte, error) {
	if gone, err := s.expired(key); err != nil || gone {
		return nil, err
	}
	return s.db.Get(key)
}

// Has returns false for missing and expired entries.
func (s *TTLStore) Has(key []byte) (bool, error) {
	if gone, err := s.expired(key); err != nil || gone {
		return false, err
	}
	return s.db.Has(key)
}

// Set writes the entry and makes sure it is live for at least the minimal
// number of ledgers.
func (s *TTLStore) Set(key, value []byte) error {
	b := s.NewBatch()
	if err := b.Set(key, value); err != nil {
		return err
	}
	return b.Write()
}

// Delete removes the entry together with its expiration record.
func (s *TTLStore) Delete(key []byte) error {
	b := s.NewBatch()
	if err := b.Delete(key); err != nil {
		return err
	}
	return b.Write()
}

// Renew extends the life of an existing entry to extendTo ledgers from now
// if it has less than threshold ledgers left.
func (s *TTLStore) Renew(key []byte, threshold, extendTo uint32) error {
	b := s.NewBatch().(*ttlBatch)
	if err := b.Renew(key, threshold, extendTo); err != nil {
		return err
	}
	return b.Write()
}

// NewBatch returns a batch writing to the wrapped store. Atomicity is the
// one of the wrapped store batch.
func (s *TTLStore) NewBatch() Batch {
	return &ttlBatch{
		store:   s,
		batch:   s.db.NewBatch(),
		until:   make(map[string]uint32),
		written: make(map[string]bool),
	}
}

// CacheWrap returns a btree cache over this view.
func (s *TTLStore) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(s, s.NewBatch(), nil)
}

// ttlBatch tracks expiration records changed by the batch so that later
// operations of the same batch see them.
type ttlBatch struct {
	store   *TTLStore
	batch   Batch
	until   map[string]uint32
	written map[string]bool
}

var _ Renewer = (*ttlBatch)(nil)

func (b *ttlBatch) liveUntil(key []byte) (uint32, bool, error) {
	if n, ok := b.until[string(key)]; ok {
		return n, n != 0, nil
	}
	return b.store.LiveUntil(key)
}

func (b *ttlBatch) present(key []byte) (bool, error) {
	if ok, seen := b.written[string(key)]; seen {
		return ok, nil
	}
	return b.store.Has(key)
}

func (b *ttlBatch) setUntil(key []byte, n uint32) error {
	b.until[string(key)] = n
	return b.batch.Set(ttlKey(key), encodeLedger(n))
}

func (b *ttlBatch) Set(key, value []byte) error {
	if err := b.batch.Set(key, value); err != nil {
		return err
	}
	if !expires(key) {
		return nil
	}
	b.written[string(key)] = true
	until, ok, err := b.liveUntil(key)
	if err != nil {
		return err
	}
	min := b.store.ledger + max(b.store.minTTL, 1) - 1
	if ok && until >= min {
		return nil
	}
	return b.setUntil(key, min)
}

func (b *ttlBatch) Delete(key []byte) error {
	if err := b.batch.Delete(key); err != nil {
		return err
	}
	if !expires(key) {
		return nil
	}
	b.written[string(key)] = false
	b.until[string(key)] = 0
	return b.batch.Delete(ttlKey(key))
}

func (b *ttlBatch) Renew(key []byte, threshold, extendTo uint32) error {
	if !expires(key) {
		return nil
	}
	ok, err := b.present(key)
	if err != nil || !ok {
		return err
	}
	until, _, err := b.liveUntil(key)
	if err != nil {
		return err
	}
	ledger := b.store.ledger
	if until >= ledger && until-ledger >= threshold {
		return nil
	}
	if want := ledger + extendTo; want > until {
		return b.setUntil(key, want)
	}
	return nil
}

func (b *ttlBatch) Write() error {
	if err := b.batch.Write(); err != nil {
		return errors.Wrap(err, "write ttl batch")
	}
	b.until = make(map[string]uint32)
	b.written = make(map[string]bool)
	return nil
}
