package group

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/autosharetest"
	"github.com/iov-one/autoshare/autosharetest/assert"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/x/admin/admintest"
	"github.com/iov-one/autoshare/x/cash"
)

var blockTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type router struct {
	handlers map[string]autoshare.Handler
}

func (r *router) Handle(path string, h autoshare.Handler) {
	r.handlers[path] = h
}

type call struct {
	signer  autoshare.Condition
	msg     autoshare.Msg
	wantErr *errors.Error
}

type env struct {
	db       autoshare.CacheableKVStore
	auth     *autosharetest.CtxAuth
	settings *admintest.Settings
	bank     cash.Controller
	rt       *router
}

func newEnv(settings *admintest.Settings, db autoshare.CacheableKVStore) *env {
	e := &env{
		db:       db,
		auth:     &autosharetest.CtxAuth{Key: "auth"},
		settings: settings,
		bank:     cash.NewController(cash.NewWalletBucket()),
		rt:       &router{handlers: make(map[string]autoshare.Handler)},
	}
	RegisterRoutes(e.rt, e.auth, e.settings, e.bank)
	return e
}

// run checks and delivers all calls in order, committing the successful
// ones. Events of committed calls are returned.
func (e *env) run(t *testing.T, calls ...call) []autoshare.Event {
	t.Helper()
	var events []autoshare.Event
	for i, c := range calls {
		ctx := autoshare.WithBlockTime(context.Background(), blockTime)
		ctx = e.auth.SetConditions(ctx, c.signer)
		tx := &autosharetest.Tx{Msg: c.msg}
		h, ok := e.rt.handlers[c.msg.Path()]
		if !ok {
			t.Fatalf("no handler for %s", c.msg.Path())
		}

		// Check does not move tokens, a failing transfer is only
		// detected by Deliver.
		check := e.db.CacheWrap()
		if _, err := h.Check(ctx, check, tx); err != nil && !c.wantErr.Is(err) {
			t.Fatalf("call %d (%s) check: unexpected error: %+v", i, c.msg.Path(), err)
		}
		check.Discard()

		cache := e.db.CacheWrap()
		res, err := h.Deliver(ctx, cache, tx)
		if !c.wantErr.Is(err) {
			t.Fatalf("call %d (%s) deliver: unexpected error: %+v", i, c.msg.Path(), err)
		}
		if err != nil {
			cache.Discard()
			continue
		}
		assert.Nil(t, cache.Write())
		events = append(events, res.Events...)
	}
	return events
}

func (e *env) fund(t *testing.T, addr autoshare.Address, c coin.Coin) {
	t.Helper()
	assert.Nil(t, e.bank.IssueCoins(e.db, addr, c))
}

func (e *env) balance(t *testing.T, addr autoshare.Address, ticker string) int64 {
	t.Helper()
	c, err := e.bank.Balance(e.db, addr, ticker)
	assert.Nil(t, err)
	return c.Amount
}

func id(n byte) ID {
	return ID(autosharetest.SequenceID(n))
}
