package app

import (
	"context"
	"sync"
	"time"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/store"
	"github.com/tendermint/tendermint/libs/log"
)

// Ledger hosts the handler stack on top of a committed store. Transactions
// are delivered in blocks: BeginBlock opens a block, Deliver applies
// transactions to it and Commit persists it. Events of delivered
// transactions are published to the sink only after the block is
// committed.
//
// The handler must discard the writes of a failed Deliver, see
// utils.Savepoint. All methods are safe for concurrent use.
type Ledger struct {
	mu sync.Mutex

	committed   *store.CommitStore
	handler     autoshare.Handler
	initializer autoshare.Initializer
	sink        autoshare.EventSink
	logger      log.Logger

	chainID   string
	block     autoshare.KVCacheWrap
	blockTime time.Time
	pending   []autoshare.Event
}

// NewLedger loads the ledger state from db. Sink and logger are optional.
func NewLedger(
	db autoshare.KVStore,
	minTTL uint32,
	handler autoshare.Handler,
	initializer autoshare.Initializer,
	sink autoshare.EventSink,
	logger log.Logger,
) (*Ledger, error) {
	committed, err := store.NewCommitStore(db, minTTL)
	if err != nil {
		return nil, errors.Wrap(err, "commit store")
	}
	chainID, err := loadChainID(db)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Ledger{
		committed:   committed,
		handler:     handler,
		initializer: initializer,
		sink:        sink,
		logger:      logger.With("module", "ledger"),
		chainID:     chainID,
	}, nil
}

// InitChain writes the genesis state as the first version of the ledger.
// It fails for a ledger that was already initialized.
func (l *Ledger) InitChain(gen Genesis) (autoshare.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.chainID != "" {
		return autoshare.CommitID{}, errors.Wrapf(errors.ErrState, "chain %q already initialized", l.chainID)
	}
	if err := gen.Validate(); err != nil {
		return autoshare.CommitID{}, err
	}
	cache := l.committed.CacheWrapAt(l.nextSequence())
	if err := saveChainID(cache, gen.ChainID); err != nil {
		cache.Discard()
		return autoshare.CommitID{}, err
	}
	if l.initializer != nil {
		if err := l.initializer.FromGenesis(gen.AppState, cache); err != nil {
			cache.Discard()
			return autoshare.CommitID{}, errors.Wrap(err, "genesis")
		}
	}
	id, err := l.committed.Commit(cache)
	if err != nil {
		return autoshare.CommitID{}, err
	}
	l.chainID = gen.ChainID
	l.logger.Info("chain initialized", "chain_id", gen.ChainID, "hash", id.Hash)
	return id, nil
}

// BeginBlock opens the next block. Only one block can be open at a time.
func (l *Ledger) BeginBlock(t time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.beginBlock(t)
}

func (l *Ledger) beginBlock(t time.Time) error {
	if l.chainID == "" {
		return errors.Wrap(errors.ErrState, "chain not initialized")
	}
	if l.block != nil {
		return errors.Wrap(errors.ErrState, "block already open")
	}
	l.block = l.committed.CacheWrapAt(l.nextSequence())
	l.blockTime = t.UTC()
	return nil
}

// Check runs the Check of the handler against a throwaway copy of the
// current state. If a block is open, its pending writes are visible.
func (l *Ledger) Check(tx autoshare.Tx) (*autoshare.CheckResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.chainID == "" {
		return nil, errors.Wrap(errors.ErrState, "chain not initialized")
	}
	var (
		cache autoshare.KVCacheWrap
		now   = l.blockTime
	)
	if l.block != nil {
		cache = l.block.CacheWrap()
	} else {
		cache = l.committed.CacheWrapAt(l.nextSequence())
		now = time.Now().UTC()
	}
	defer cache.Discard()
	return l.handler.Check(l.context(now), cache, tx)
}

// Deliver applies the transaction to the open block.
func (l *Ledger) Deliver(tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deliver(tx)
}

func (l *Ledger) deliver(tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	if l.block == nil {
		return nil, errors.Wrap(errors.ErrState, "no open block")
	}
	res, err := l.handler.Deliver(l.context(l.blockTime), l.block, tx)
	if err != nil {
		return nil, err
	}
	l.pending = append(l.pending, res.Events...)
	return res, nil
}

// Commit persists the open block and publishes the events collected while
// it was open.
func (l *Ledger) Commit() (autoshare.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commit()
}

func (l *Ledger) commit() (autoshare.CommitID, error) {
	if l.block == nil {
		return autoshare.CommitID{}, errors.Wrap(errors.ErrState, "no open block")
	}
	id, err := l.committed.Commit(l.block)
	if err != nil {
		return autoshare.CommitID{}, err
	}
	events := l.pending
	l.block = nil
	l.pending = nil

	l.logger.Debug("block committed", "height", id.Version, "events", len(events))
	if l.sink != nil && len(events) != 0 {
		ctx := autoshare.WithHeight(context.Background(), id.Version)
		ctx = autoshare.WithLogger(ctx, l.logger)
		if err := l.publish(ctx, events); err != nil {
			l.logger.Error("cannot publish events", "height", id.Version, "err", err)
		}
	}
	return id, nil
}

// publish shields the committed block from a failing sink.
func (l *Ledger) publish(ctx autoshare.Context, events []autoshare.Event) (err error) {
	defer errors.Recover(&err)
	l.sink.Publish(ctx, events)
	return nil
}

// Abort drops the open block together with its events.
func (l *Ledger) Abort() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.abort()
}

func (l *Ledger) abort() {
	if l.block != nil {
		l.block.Discard()
	}
	l.block = nil
	l.pending = nil
}

// Apply delivers a single transaction in its own block. The block is
// committed only if the transaction succeeds. It fails if another block is
// open.
func (l *Ledger) Apply(tx autoshare.Tx, t time.Time) (*autoshare.DeliverResult, autoshare.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.beginBlock(t); err != nil {
		return nil, autoshare.CommitID{}, err
	}
	res, err := l.deliver(tx)
	if err != nil {
		l.abort()
		return nil, autoshare.CommitID{}, err
	}
	id, err := l.commit()
	if err != nil {
		l.abort()
		return nil, autoshare.CommitID{}, err
	}
	return res, id, nil
}

// ReadStore returns a view of the last committed state.
func (l *Ledger) ReadStore() autoshare.ReadOnlyKVStore {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.committed.ReadOnly(uint32(l.committed.LatestVersion().Version))
}

// LatestCommit returns the version and hash of the last committed block.
func (l *Ledger) LatestCommit() autoshare.CommitID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.committed.LatestVersion()
}

// ChainID returns the chain id, empty before InitChain.
func (l *Ledger) ChainID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chainID
}

// nextSequence is the ledger sequence of the block that is built next.
func (l *Ledger) nextSequence() uint32 {
	return uint32(l.committed.LatestVersion().Version + 1)
}

func (l *Ledger) context(now time.Time) autoshare.Context {
	ctx := context.Background()
	ctx = autoshare.WithHeight(ctx, int64(l.nextSequence()))
	ctx = autoshare.WithBlockTime(ctx, now)
	ctx = autoshare.WithChainID(ctx, l.chainID)
	return autoshare.WithLogger(ctx, l.logger)
}
