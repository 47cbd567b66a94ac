package admin

import (
	"context"
	"testing"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/autosharetest"
	"github.com/iov-one/autoshare/autosharetest/assert"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/gconf"
	"github.com/iov-one/autoshare/store"
	"github.com/iov-one/autoshare/x/cash"
)

type call struct {
	signer  autoshare.Condition
	msg     autoshare.Msg
	wantErr *errors.Error
}

func runCalls(t *testing.T, rt *router, db autoshare.CacheableKVStore, auth *autosharetest.CtxAuth, calls []call) []autoshare.Event {
	t.Helper()
	var events []autoshare.Event
	for i, c := range calls {
		ctx := auth.SetConditions(context.Background(), c.signer)
		tx := &autosharetest.Tx{Msg: c.msg}
		h := rt.handlers[c.msg.Path()]
		check := db.CacheWrap()
		if _, err := h.Check(ctx, check, tx); err != nil && !c.wantErr.Is(err) {
			t.Fatalf("call %d (%s) check: unexpected error: %+v", i, c.msg.Path(), err)
		}
		check.Discard()
		cache := db.CacheWrap()
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

type router struct {
	handlers map[string]autoshare.Handler
}

func (r *router) Handle(path string, h autoshare.Handler) {
	r.handlers[path] = h
}

func newRouter(auth *autosharetest.CtxAuth, bank cash.Controller) *router {
	rt := &router{handlers: make(map[string]autoshare.Handler)}
	RegisterRoutes(rt, auth, bank)
	return rt
}

func TestAdminLifecycle(t *testing.T) {
	alice := autosharetest.NewCondition()
	bob := autosharetest.NewCondition()

	cases := map[string]struct {
		calls      []call
		wantAdmin  autoshare.Condition
		wantPaused bool
		wantFee    uint32
		wantTokens []string
	}{
		"init sets defaults": {
			calls: []call{
				{signer: alice, msg: &InitAdminMsg{Admin: alice.Address()}},
			},
			wantAdmin:  alice,
			wantFee:    DefaultUsageFee,
			wantTokens: []string{},
		},
		"init must be signed by the admin": {
			calls: []call{
				{signer: bob, msg: &InitAdminMsg{Admin: alice.Address()}, wantErr: errors.ErrUnauthorized},
			},
			wantFee:    DefaultUsageFee,
			wantTokens: []string{},
		},
		"second init is ignored": {
			calls: []call{
				{signer: alice, msg: &InitAdminMsg{Admin: alice.Address()}},
				{signer: bob, msg: &InitAdminMsg{Admin: bob.Address()}},
			},
			wantAdmin:  alice,
			wantFee:    DefaultUsageFee,
			wantTokens: []string{},
		},
		"transfer": {
			calls: []call{
				{signer: alice, msg: &InitAdminMsg{Admin: alice.Address()}},
				{signer: bob, msg: &TransferAdminMsg{Current: alice.Address(), New: bob.Address()}, wantErr: errors.ErrUnauthorized},
				{signer: alice, msg: &TransferAdminMsg{Current: alice.Address(), New: bob.Address()}},
				{signer: alice, msg: &SetUsageFeeMsg{Admin: alice.Address(), Fee: 3}, wantErr: errors.ErrUnauthorized},
				{signer: bob, msg: &SetUsageFeeMsg{Admin: bob.Address(), Fee: 3}},
			},
			wantAdmin:  bob,
			wantFee:    3,
			wantTokens: []string{},
		},
		"pause twice": {
			calls: []call{
				{signer: alice, msg: &InitAdminMsg{Admin: alice.Address()}},
				{signer: bob, msg: &PauseMsg{Admin: bob.Address()}, wantErr: errors.ErrUnauthorized},
				{signer: alice, msg: &PauseMsg{Admin: alice.Address()}},
				{signer: alice, msg: &PauseMsg{Admin: alice.Address()}, wantErr: ErrAlreadyPaused},
			},
			wantAdmin:  alice,
			wantPaused: true,
			wantFee:    DefaultUsageFee,
			wantTokens: []string{},
		},
		"unpause when not paused": {
			calls: []call{
				{signer: alice, msg: &InitAdminMsg{Admin: alice.Address()}},
				{signer: alice, msg: &UnpauseMsg{Admin: alice.Address()}, wantErr: ErrNotPaused},
				{signer: alice, msg: &PauseMsg{Admin: alice.Address()}},
				{signer: alice, msg: &UnpauseMsg{Admin: alice.Address()}},
			},
			wantAdmin:  alice,
			wantFee:    DefaultUsageFee,
			wantTokens: []string{},
		},
		"paused blocks settings but not transfer": {
			calls: []call{
				{signer: alice, msg: &InitAdminMsg{Admin: alice.Address()}},
				{signer: alice, msg: &PauseMsg{Admin: alice.Address()}},
				{signer: alice, msg: &SetUsageFeeMsg{Admin: alice.Address(), Fee: 5}, wantErr: ErrContractPaused},
				{signer: alice, msg: &AddTokenMsg{Admin: alice.Address(), Ticker: "IOV"}, wantErr: ErrContractPaused},
				{signer: alice, msg: &TransferAdminMsg{Current: alice.Address(), New: bob.Address()}},
			},
			wantAdmin:  bob,
			wantPaused: true,
			wantFee:    DefaultUsageFee,
			wantTokens: []string{},
		},
		"token set": {
			calls: []call{
				{signer: alice, msg: &InitAdminMsg{Admin: alice.Address()}},
				{signer: alice, msg: &AddTokenMsg{Admin: alice.Address(), Ticker: "IOV"}},
				{signer: alice, msg: &AddTokenMsg{Admin: alice.Address(), Ticker: "USDC"}},
				{signer: alice, msg: &AddTokenMsg{Admin: alice.Address(), Ticker: "ETH"}},
				{signer: alice, msg: &AddTokenMsg{Admin: alice.Address(), Ticker: "IOV"}, wantErr: errors.ErrDuplicate},
				{signer: alice, msg: &RemoveTokenMsg{Admin: alice.Address(), Ticker: "USDC"}},
				{signer: alice, msg: &RemoveTokenMsg{Admin: alice.Address(), Ticker: "USDC"}, wantErr: errors.ErrNotFound},
				{signer: bob, msg: &AddTokenMsg{Admin: bob.Address(), Ticker: "BTC"}, wantErr: errors.ErrUnauthorized},
			},
			wantAdmin:  alice,
			wantFee:    DefaultUsageFee,
			wantTokens: []string{"IOV", "ETH"},
		},
		"zero fee": {
			calls: []call{
				{signer: alice, msg: &InitAdminMsg{Admin: alice.Address()}},
				{signer: alice, msg: &SetUsageFeeMsg{Admin: alice.Address(), Fee: 0}, wantErr: errors.ErrAmount},
			},
			wantAdmin:  alice,
			wantFee:    DefaultUsageFee,
			wantTokens: []string{},
		},
		"zero fee from a stranger is unauthorized": {
			calls: []call{
				{signer: alice, msg: &InitAdminMsg{Admin: alice.Address()}},
				{signer: bob, msg: &SetUsageFeeMsg{Admin: bob.Address(), Fee: 0}, wantErr: errors.ErrUnauthorized},
			},
			wantAdmin:  alice,
			wantFee:    DefaultUsageFee,
			wantTokens: []string{},
		},
		"zero fee while paused": {
			calls: []call{
				{signer: alice, msg: &InitAdminMsg{Admin: alice.Address()}},
				{signer: alice, msg: &PauseMsg{Admin: alice.Address()}},
				{signer: alice, msg: &SetUsageFeeMsg{Admin: alice.Address(), Fee: 0}, wantErr: ErrContractPaused},
			},
			wantAdmin:  alice,
			wantPaused: true,
			wantFee:    DefaultUsageFee,
			wantTokens: []string{},
		},
		"no admin yet": {
			calls: []call{
				{signer: alice, msg: &PauseMsg{Admin: alice.Address()}, wantErr: errors.ErrUnauthorized},
			},
			wantFee:    DefaultUsageFee,
			wantTokens: []string{},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			auth := &autosharetest.CtxAuth{Key: "auth"}
			rt := newRouter(auth, cash.NewController(cash.NewWalletBucket()))
			runCalls(t, rt, db, auth, tc.calls)

			admin, err := Admin(db)
			if tc.wantAdmin == nil {
				assert.IsErr(t, errors.ErrNotFound, err)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, tc.wantAdmin.Address(), admin)
			}
			paused, err := IsPaused(db)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantPaused, paused)
			fee, err := UsageFee(db)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantFee, fee)
			tokens, err := SupportedTokens(db)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantTokens, tokens)
		})
	}
}

func TestWithdraw(t *testing.T) {
	alice := autosharetest.NewCondition()
	bob := autosharetest.NewCondition()

	cases := map[string]struct {
		signer      autoshare.Condition
		paused      bool
		amount      coin.Coin
		wantErr     *errors.Error
		wantCustody int64
		wantBob     int64
	}{
		"withdraw part": {
			signer:      alice,
			amount:      coin.NewCoin(30, "IOV"),
			wantCustody: 70,
			wantBob:     30,
		},
		"withdraw all": {
			signer:      alice,
			amount:      coin.NewCoin(100, "IOV"),
			wantCustody: 0,
			wantBob:     100,
		},
		"more than held": {
			signer:      alice,
			amount:      coin.NewCoin(101, "IOV"),
			wantErr:     ErrInsufficientContractBalance,
			wantCustody: 100,
		},
		"other token": {
			signer:      alice,
			amount:      coin.NewCoin(1, "ETH"),
			wantErr:     ErrInsufficientContractBalance,
			wantCustody: 100,
		},
		"zero amount": {
			signer:      alice,
			amount:      coin.NewCoin(0, "IOV"),
			wantErr:     errors.ErrAmount,
			wantCustody: 100,
		},
		"not the admin": {
			signer:      bob,
			amount:      coin.NewCoin(1, "IOV"),
			wantErr:     errors.ErrUnauthorized,
			wantCustody: 100,
		},
		"zero amount by a stranger": {
			signer:      bob,
			amount:      coin.NewCoin(0, "IOV"),
			wantErr:     errors.ErrUnauthorized,
			wantCustody: 100,
		},
		"zero amount while paused": {
			signer:      alice,
			paused:      true,
			amount:      coin.NewCoin(0, "IOV"),
			wantErr:     ErrContractPaused,
			wantCustody: 100,
		},
		"negative amount": {
			signer:      alice,
			amount:      coin.NewCoin(-5, "IOV"),
			wantErr:     errors.ErrAmount,
			wantCustody: 100,
		},
		"paused": {
			signer:      alice,
			paused:      true,
			amount:      coin.NewCoin(1, "IOV"),
			wantErr:     ErrContractPaused,
			wantCustody: 100,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			bank := cash.NewController(cash.NewWalletBucket())
			assert.Nil(t, bank.IssueCoins(db, CustodyAccount, coin.NewCoin(100, "IOV")))
			conf := Configuration{Admin: alice.Address(), Paused: tc.paused, UsageFee: DefaultUsageFee}
			assert.Nil(t, gconf.Save(db, confPkg, &conf))

			auth := &autosharetest.CtxAuth{Key: "auth"}
			rt := newRouter(auth, bank)
			msg := &WithdrawMsg{Admin: tc.signer.Address(), Amount: tc.amount, Recipient: bob.Address()}
			events := runCalls(t, rt, db, auth, []call{{signer: tc.signer, msg: msg, wantErr: tc.wantErr}})
			if tc.wantErr == nil {
				assert.Equal(t, 1, len(events))
				assert.Equal(t, "withdrawal", events[0].Kind)
				assert.Equal(t, []string{"IOV", bob.Address().String()}, events[0].Topics)
			}

			custody, err := ContractBalance(db, bank, "IOV")
			assert.Nil(t, err)
			assert.Equal(t, tc.wantCustody, custody.Amount)
			got, err := bank.Balance(db, bob.Address(), "IOV")
			assert.Nil(t, err)
			assert.Equal(t, tc.wantBob, got.Amount)
		})
	}
}

func TestAdminEvents(t *testing.T) {
	alice := autosharetest.NewCondition()
	bob := autosharetest.NewCondition()

	db := store.MemStore()
	auth := &autosharetest.CtxAuth{Key: "auth"}
	rt := newRouter(auth, cash.NewController(cash.NewWalletBucket()))
	events := runCalls(t, rt, db, auth, []call{
		{signer: alice, msg: &InitAdminMsg{Admin: alice.Address()}},
		{signer: alice, msg: &PauseMsg{Admin: alice.Address()}},
		{signer: alice, msg: &UnpauseMsg{Admin: alice.Address()}},
		{signer: alice, msg: &TransferAdminMsg{Current: alice.Address(), New: bob.Address()}},
	})

	kinds := make([]string, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	assert.Equal(t, []string{"admin_initialized", "paused", "unpaused", "admin_transferred"}, kinds)
	assert.Equal(t, []string{alice.Address().String(), bob.Address().String()}, events[3].Topics)
}
