package distribution

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/autosharetest"
	"github.com/iov-one/autoshare/autosharetest/assert"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/store"
	"github.com/iov-one/autoshare/x/admin/admintest"
	"github.com/iov-one/autoshare/x/cash"
	"github.com/iov-one/autoshare/x/group"
)

var blockTime = time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)

type router map[string]autoshare.Handler

func (r router) Handle(path string, h autoshare.Handler) {
	r[path] = h
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
	rt       router
}

// newEnv returns an environment with both group and distribution handlers
// registered, accepting IOV at 10 per usage.
func newEnv() *env {
	e := &env{
		db:       store.MemStore(),
		auth:     &autosharetest.CtxAuth{Key: "auth"},
		settings: &admintest.Settings{Fee: 10, Tokens: []string{"IOV"}},
		bank:     cash.NewController(cash.NewWalletBucket()),
		rt:       make(router),
	}
	group.RegisterRoutes(e.rt, e.auth, e.settings, e.bank)
	RegisterRoutes(e.rt, e.auth, e.settings, e.bank)
	return e
}

func (e *env) run(t *testing.T, calls ...call) []autoshare.Event {
	t.Helper()
	var events []autoshare.Event
	for i, c := range calls {
		ctx := autoshare.WithBlockTime(context.Background(), blockTime)
		ctx = e.auth.SetConditions(ctx, c.signer)
		tx := &autosharetest.Tx{Msg: c.msg}
		h, ok := e.rt[c.msg.Path()]
		if !ok {
			t.Fatalf("no handler for %s", c.msg.Path())
		}

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

func (e *env) fund(t *testing.T, addr autoshare.Address, amount int64) {
	t.Helper()
	assert.Nil(t, e.bank.IssueCoins(e.db, addr, coin.NewCoin(amount, "IOV")))
}

func (e *env) balance(t *testing.T, addr autoshare.Address) int64 {
	t.Helper()
	c, err := e.bank.Balance(e.db, addr, "IOV")
	assert.Nil(t, err)
	return c.Amount
}

func (e *env) loadGroup(t *testing.T, id group.ID) *group.Group {
	t.Helper()
	g, err := group.Get(e.db, id)
	assert.Nil(t, err)
	return g
}

func gid(n byte) group.ID {
	return group.ID(autosharetest.SequenceID(n))
}

func iov(n int64) coin.Coin {
	return coin.NewCoin(n, "IOV")
}
