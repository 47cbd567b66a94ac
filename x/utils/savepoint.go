package utils

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
)

// Savepoint will isolate all data inside of the call,
// and commit/rollback to savepoint based on if error
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ autoshare.Decorator = Savepoint{}

// NewSavepoint creates a Savepoint decorator,
// but you must call OnCheck/OnDeliver so it will be triggered
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck returns a savepoint that will trigger on CheckTx
func (s Savepoint) OnCheck() Savepoint {
	return Savepoint{
		onCheck:   true,
		onDeliver: s.onDeliver,
	}
}

// OnDeliver returns a savepoint that will trigger on DeliverTx
func (s Savepoint) OnDeliver() Savepoint {
	return Savepoint{
		onCheck:   s.onCheck,
		onDeliver: true,
	}
}

// Check will optionally set a checkpoint
func (s Savepoint) Check(ctx autoshare.Context, store autoshare.KVStore, tx autoshare.Tx, next autoshare.Checker) (*autoshare.CheckResult, error) {
	if !s.onCheck {
		return next.Check(ctx, store, tx)
	}
	cache, ok := cacheWrap(store)
	if !ok {
		return next.Check(ctx, store, tx)
	}
	res, err := next.Check(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "writing savepoint")
	}
	return res, nil
}

// Deliver will optionally set a checkpoint. Writes of a failed call,
// including token moves, are dropped together.
func (s Savepoint) Deliver(ctx autoshare.Context, store autoshare.KVStore, tx autoshare.Tx, next autoshare.Deliverer) (*autoshare.DeliverResult, error) {
	if !s.onDeliver {
		return next.Deliver(ctx, store, tx)
	}
	cache, ok := cacheWrap(store)
	if !ok {
		return next.Deliver(ctx, store, tx)
	}
	res, err := next.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "writing savepoint")
	}
	return res, nil
}

func cacheWrap(store autoshare.KVStore) (autoshare.KVCacheWrap, bool) {
	cstore, ok := store.(autoshare.CacheableKVStore)
	if !ok {
		return nil, false
	}
	return cstore.CacheWrap(), true
}
