package group

import (
	"testing"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/autosharetest"
	"github.com/iov-one/autoshare/autosharetest/assert"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/store"
	"github.com/iov-one/autoshare/x/admin"
	"github.com/iov-one/autoshare/x/admin/admintest"
)

func TestCreateGroup(t *testing.T) {
	alice := autosharetest.NewCondition()
	bob := autosharetest.NewCondition()
	carol := autosharetest.RandomAddr(t)

	cases := map[string]struct {
		paused    bool
		prepare   []call
		msg       *CreateMsg
		signer    autoshare.Condition
		wantErr   *errors.Error
		wantAlice int64
	}{
		"create without members": {
			msg:       &CreateMsg{ID: id(1), Name: "team", Creator: alice.Address(), UsageCount: 3, Ticker: "IOV"},
			signer:    alice,
			wantAlice: 70,
		},
		"create with members": {
			msg: &CreateMsg{ID: id(1), Name: "team", Creator: alice.Address(), UsageCount: 3, Ticker: "IOV",
				Members: []Member{{Address: bob.Address(), Percentage: 60}, {Address: carol, Percentage: 40}}},
			signer:    alice,
			wantAlice: 70,
		},
		"not signed by the creator": {
			msg:       &CreateMsg{ID: id(1), Creator: alice.Address(), UsageCount: 3, Ticker: "IOV"},
			signer:    bob,
			wantErr:   errors.ErrUnauthorized,
			wantAlice: 100,
		},
		"paused": {
			paused:    true,
			msg:       &CreateMsg{ID: id(1), Creator: alice.Address(), UsageCount: 3, Ticker: "IOV"},
			signer:    alice,
			wantErr:   admin.ErrContractPaused,
			wantAlice: 100,
		},
		"id taken": {
			prepare: []call{
				{signer: bob, msg: &CreateMsg{ID: id(1), Creator: bob.Address(), UsageCount: 1, Ticker: "IOV"}},
			},
			msg:       &CreateMsg{ID: id(1), Creator: alice.Address(), UsageCount: 3, Ticker: "IOV"},
			signer:    alice,
			wantErr:   errors.ErrDuplicate,
			wantAlice: 100,
		},
		"zero usages": {
			msg:       &CreateMsg{ID: id(1), Creator: alice.Address(), UsageCount: 0, Ticker: "IOV"},
			signer:    alice,
			wantErr:   ErrInvalidUsageCount,
			wantAlice: 100,
		},
		"unsupported token": {
			msg:       &CreateMsg{ID: id(1), Creator: alice.Address(), UsageCount: 3, Ticker: "ETH"},
			signer:    alice,
			wantErr:   admin.ErrUnsupportedToken,
			wantAlice: 100,
		},
		"bad split": {
			msg: &CreateMsg{ID: id(1), Creator: alice.Address(), UsageCount: 3, Ticker: "IOV",
				Members: []Member{{Address: bob.Address(), Percentage: 60}}},
			signer:    alice,
			wantErr:   ErrInvalidTotalPercentage,
			wantAlice: 100,
		},
		"cannot pay": {
			msg:       &CreateMsg{ID: id(1), Creator: alice.Address(), UsageCount: 11, Ticker: "IOV"},
			signer:    alice,
			wantErr:   errors.ErrInsufficientAmount,
			wantAlice: 100,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			e := newEnv(&admintest.Settings{Paused: tc.paused, Fee: 10, Tokens: []string{"IOV"}}, store.MemStore())
			e.fund(t, alice.Address(), coin.NewCoin(100, "IOV"))
			e.fund(t, bob.Address(), coin.NewCoin(100, "IOV"))
			e.settings.Paused = false
			e.run(t, tc.prepare...)
			e.settings.Paused = tc.paused

			events := e.run(t, call{signer: tc.signer, msg: tc.msg, wantErr: tc.wantErr})
			assert.Equal(t, tc.wantAlice, e.balance(t, alice.Address(), "IOV"))
			if tc.wantErr != nil {
				return
			}

			g, err := Get(e.db, tc.msg.ID)
			assert.Nil(t, err)
			assert.Equal(t, tc.msg.UsageCount, g.UsageCount)
			assert.Equal(t, tc.msg.UsageCount, g.TotalUsagesPaid)
			assert.Equal(t, true, g.Active)
			assert.Equal(t, len(tc.msg.Members), len(g.Members))
			assert.Equal(t, int64(30), e.balance(t, admin.CustodyAccount, "IOV"))

			payments, err := PaymentsByGroup(e.db, tc.msg.ID)
			assert.Nil(t, err)
			assert.Equal(t, 1, len(payments))
			assert.Equal(t, coin.NewCoin(30, "IOV"), payments[0].AmountPaid)
			assert.Equal(t, autoshare.AsUnixTime(blockTime), payments[0].Timestamp)

			assert.Equal(t, 1, len(events))
			assert.Equal(t, "group_created", events[0].Kind)
			assert.Equal(t, []string{alice.Address().String(), tc.msg.ID.String()}, events[0].Topics)
		})
	}
}

func TestMembership(t *testing.T) {
	alice := autosharetest.NewCondition()
	bob := autosharetest.NewCondition()
	carol := autosharetest.RandomAddr(t)
	dave := autosharetest.RandomAddr(t)

	create := call{signer: alice, msg: &CreateMsg{ID: id(1), Creator: alice.Address(), UsageCount: 1, Ticker: "IOV"}}
	split := call{signer: alice, msg: &UpdateMembersMsg{GroupID: id(1), Caller: alice.Address(),
		Members: []Member{{Address: carol, Percentage: 60}, {Address: dave, Percentage: 40}}}}
	deactivate := call{signer: alice, msg: &DeactivateMsg{GroupID: id(1), Caller: alice.Address()}}

	cases := map[string]struct {
		calls       []call
		wantMembers []Member
	}{
		"replace the split": {
			calls:       []call{create, split},
			wantMembers: []Member{{Address: carol, Percentage: 60}, {Address: dave, Percentage: 40}},
		},
		"update requires the full split": {
			calls: []call{
				create,
				{signer: alice, msg: &UpdateMembersMsg{GroupID: id(1), Caller: alice.Address(),
					Members: []Member{{Address: carol, Percentage: 60}}}, wantErr: ErrInvalidTotalPercentage},
				{signer: alice, msg: &UpdateMembersMsg{GroupID: id(1), Caller: alice.Address(),
					Members: []Member{}}, wantErr: ErrEmptyMembers},
				{signer: alice, msg: &UpdateMembersMsg{GroupID: id(1), Caller: alice.Address(),
					Members: []Member{{Address: carol, Percentage: 50}, {Address: carol, Percentage: 50}}}, wantErr: ErrDuplicateMember},
			},
			wantMembers: []Member{},
		},
		"only the creator edits": {
			calls: []call{
				create,
				{signer: bob, msg: &UpdateMembersMsg{GroupID: id(1), Caller: bob.Address(),
					Members: []Member{{Address: carol, Percentage: 100}}}, wantErr: errors.ErrUnauthorized},
				{signer: bob, msg: &AddMemberMsg{GroupID: id(1), Caller: alice.Address(), Address: carol, Percentage: 100}, wantErr: errors.ErrUnauthorized},
			},
			wantMembers: []Member{},
		},
		"add to an empty group": {
			calls: []call{
				create,
				{signer: alice, msg: &AddMemberMsg{GroupID: id(1), Caller: alice.Address(), Address: carol, Percentage: 100}},
			},
			wantMembers: []Member{{Address: carol, Percentage: 100}},
		},
		"add must keep the full split": {
			calls: []call{
				create,
				{signer: alice, msg: &AddMemberMsg{GroupID: id(1), Caller: alice.Address(), Address: carol, Percentage: 50}, wantErr: ErrInvalidTotalPercentage},
			},
			wantMembers: []Member{},
		},
		"add a share above 100": {
			calls: []call{
				create,
				{signer: alice, msg: &AddMemberMsg{GroupID: id(1), Caller: alice.Address(), Address: carol, Percentage: 150}, wantErr: ErrInvalidTotalPercentage},
				{signer: bob, msg: &AddMemberMsg{GroupID: id(1), Caller: bob.Address(), Address: carol, Percentage: 150}, wantErr: errors.ErrUnauthorized},
			},
			wantMembers: []Member{},
		},
		"add an existing member": {
			calls: []call{
				create, split,
				{signer: alice, msg: &AddMemberMsg{GroupID: id(1), Caller: alice.Address(), Address: carol, Percentage: 0}, wantErr: errors.ErrDuplicate},
			},
			wantMembers: []Member{{Address: carol, Percentage: 60}, {Address: dave, Percentage: 40}},
		},
		"remove leaves a partial split": {
			calls: []call{
				create, split,
				{signer: alice, msg: &RemoveMemberMsg{GroupID: id(1), Caller: alice.Address(), Address: dave}},
			},
			wantMembers: []Member{{Address: carol, Percentage: 60}},
		},
		"add after remove restores the split": {
			calls: []call{
				create, split,
				{signer: alice, msg: &RemoveMemberMsg{GroupID: id(1), Caller: alice.Address(), Address: carol}},
				{signer: alice, msg: &AddMemberMsg{GroupID: id(1), Caller: alice.Address(), Address: carol, Percentage: 60}},
			},
			wantMembers: []Member{{Address: dave, Percentage: 40}, {Address: carol, Percentage: 60}},
		},
		"remove unknown member": {
			calls: []call{
				create, split,
				{signer: alice, msg: &RemoveMemberMsg{GroupID: id(1), Caller: alice.Address(), Address: bob.Address()}, wantErr: ErrMemberNotFound},
			},
			wantMembers: []Member{{Address: carol, Percentage: 60}, {Address: dave, Percentage: 40}},
		},
		"inactive group is frozen": {
			calls: []call{
				create, split, deactivate,
				{signer: alice, msg: &RemoveMemberMsg{GroupID: id(1), Caller: alice.Address(), Address: carol}, wantErr: ErrGroupInactive},
				{signer: alice, msg: &AddMemberMsg{GroupID: id(1), Caller: alice.Address(), Address: bob.Address(), Percentage: 0}, wantErr: ErrGroupInactive},
				{signer: alice, msg: &UpdateMembersMsg{GroupID: id(1), Caller: alice.Address(),
					Members: []Member{{Address: carol, Percentage: 100}}}, wantErr: ErrGroupInactive},
			},
			wantMembers: []Member{{Address: carol, Percentage: 60}, {Address: dave, Percentage: 40}},
		},
		"unknown group": {
			calls: []call{
				create,
				{signer: alice, msg: &AddMemberMsg{GroupID: id(2), Caller: alice.Address(), Address: carol, Percentage: 100}, wantErr: errors.ErrNotFound},
			},
			wantMembers: []Member{},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			e := newEnv(&admintest.Settings{Fee: 10, Tokens: []string{"IOV"}}, store.MemStore())
			e.fund(t, alice.Address(), coin.NewCoin(100, "IOV"))
			e.run(t, tc.calls...)

			members, err := Members(e.db, id(1))
			assert.Nil(t, err)
			assert.Equal(t, tc.wantMembers, members)
		})
	}
}

func TestMembershipPaused(t *testing.T) {
	alice := autosharetest.NewCondition()
	carol := autosharetest.RandomAddr(t)
	split := []Member{{Address: carol, Percentage: 100}}

	e := newEnv(&admintest.Settings{Fee: 10, Tokens: []string{"IOV"}}, store.MemStore())
	e.fund(t, alice.Address(), coin.NewCoin(100, "IOV"))
	e.run(t,
		call{signer: alice, msg: &CreateMsg{ID: id(1), Creator: alice.Address(), UsageCount: 1, Ticker: "IOV", Members: split}},
		call{signer: alice, msg: &CreateMsg{ID: id(2), Creator: alice.Address(), UsageCount: 1, Ticker: "IOV"}},
		call{signer: alice, msg: &DeactivateMsg{GroupID: id(2), Caller: alice.Address()}},
	)

	e.settings.Paused = true
	e.run(t,
		call{signer: alice, msg: &AddMemberMsg{GroupID: id(1), Caller: alice.Address(), Address: carol, Percentage: 100}, wantErr: admin.ErrContractPaused},
		call{signer: alice, msg: &AddMemberMsg{GroupID: id(2), Caller: alice.Address(), Address: carol, Percentage: 150}, wantErr: admin.ErrContractPaused},
		call{signer: alice, msg: &RemoveMemberMsg{GroupID: id(1), Caller: alice.Address(), Address: carol}, wantErr: admin.ErrContractPaused},
		call{signer: alice, msg: &UpdateMembersMsg{GroupID: id(1), Caller: alice.Address(), Members: split}, wantErr: admin.ErrContractPaused},
		call{signer: alice, msg: &ActivateMsg{GroupID: id(2), Caller: alice.Address()}, wantErr: admin.ErrContractPaused},
		call{signer: alice, msg: &DeactivateMsg{GroupID: id(1), Caller: alice.Address()}, wantErr: admin.ErrContractPaused},
		call{signer: alice, msg: &TopUpMsg{GroupID: id(1), Payer: alice.Address(), Usages: 1, Ticker: "IOV"}, wantErr: admin.ErrContractPaused},
		call{signer: alice, msg: &DeleteMsg{GroupID: id(1), Caller: alice.Address()}, wantErr: admin.ErrContractPaused},
	)

	// Reads are not affected.
	active, err := IsActive(e.db, id(1))
	assert.Nil(t, err)
	assert.Equal(t, true, active)
	active, err = IsActive(e.db, id(2))
	assert.Nil(t, err)
	assert.Equal(t, false, active)
	members, err := Members(e.db, id(1))
	assert.Nil(t, err)
	assert.Equal(t, split, members)
}

func TestActivation(t *testing.T) {
	alice := autosharetest.NewCondition()
	bob := autosharetest.NewCondition()

	e := newEnv(&admintest.Settings{Fee: 10, Tokens: []string{"IOV"}}, store.MemStore())
	e.fund(t, alice.Address(), coin.NewCoin(100, "IOV"))
	events := e.run(t,
		call{signer: alice, msg: &CreateMsg{ID: id(1), Creator: alice.Address(), UsageCount: 1, Ticker: "IOV"}},
		call{signer: alice, msg: &ActivateMsg{GroupID: id(1), Caller: alice.Address()}, wantErr: ErrGroupAlreadyActive},
		call{signer: bob, msg: &DeactivateMsg{GroupID: id(1), Caller: bob.Address()}, wantErr: errors.ErrUnauthorized},
		call{signer: alice, msg: &DeactivateMsg{GroupID: id(1), Caller: alice.Address()}},
		call{signer: alice, msg: &DeactivateMsg{GroupID: id(1), Caller: alice.Address()}, wantErr: ErrGroupAlreadyInactive},
		call{signer: alice, msg: &ActivateMsg{GroupID: id(2), Caller: alice.Address()}, wantErr: errors.ErrNotFound},
	)
	active, err := IsActive(e.db, id(1))
	assert.Nil(t, err)
	assert.Equal(t, false, active)

	events = append(events, e.run(t, call{signer: alice, msg: &ActivateMsg{GroupID: id(1), Caller: alice.Address()}})...)
	active, err = IsActive(e.db, id(1))
	assert.Nil(t, err)
	assert.Equal(t, true, active)

	kinds := make([]string, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
	}
	assert.Equal(t, []string{"group_created", "group_deactivated", "group_activated"}, kinds)
}

func TestTopUp(t *testing.T) {
	alice := autosharetest.NewCondition()
	bob := autosharetest.NewCondition()

	cases := map[string]struct {
		msg       *TopUpMsg
		signer    autoshare.Condition
		wantErr   *errors.Error
		wantUsage uint32
		wantTotal uint32
		wantBob   int64
	}{
		"anyone can pay": {
			msg:       &TopUpMsg{GroupID: id(1), Payer: bob.Address(), Usages: 4, Ticker: "IOV"},
			signer:    bob,
			wantUsage: 6,
			wantTotal: 6,
			wantBob:   60,
		},
		"zero usages": {
			msg:       &TopUpMsg{GroupID: id(1), Payer: bob.Address(), Usages: 0, Ticker: "IOV"},
			signer:    bob,
			wantErr:   ErrInvalidUsageCount,
			wantUsage: 2,
			wantTotal: 2,
			wantBob:   100,
		},
		"unknown group": {
			msg:       &TopUpMsg{GroupID: id(9), Payer: bob.Address(), Usages: 1, Ticker: "IOV"},
			signer:    bob,
			wantErr:   errors.ErrNotFound,
			wantUsage: 2,
			wantTotal: 2,
			wantBob:   100,
		},
		"unsupported token": {
			msg:       &TopUpMsg{GroupID: id(1), Payer: bob.Address(), Usages: 1, Ticker: "ETH"},
			signer:    bob,
			wantErr:   admin.ErrUnsupportedToken,
			wantUsage: 2,
			wantTotal: 2,
			wantBob:   100,
		},
		"not signed by payer": {
			msg:       &TopUpMsg{GroupID: id(1), Payer: bob.Address(), Usages: 1, Ticker: "IOV"},
			signer:    alice,
			wantErr:   errors.ErrUnauthorized,
			wantUsage: 2,
			wantTotal: 2,
			wantBob:   100,
		},
		"cannot pay": {
			msg:       &TopUpMsg{GroupID: id(1), Payer: bob.Address(), Usages: 11, Ticker: "IOV"},
			signer:    bob,
			wantErr:   errors.ErrInsufficientAmount,
			wantUsage: 2,
			wantTotal: 2,
			wantBob:   100,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			e := newEnv(&admintest.Settings{Fee: 10, Tokens: []string{"IOV"}}, store.MemStore())
			e.fund(t, alice.Address(), coin.NewCoin(100, "IOV"))
			e.fund(t, bob.Address(), coin.NewCoin(100, "IOV"))
			e.run(t, call{signer: alice, msg: &CreateMsg{ID: id(1), Creator: alice.Address(), UsageCount: 2, Ticker: "IOV"}})

			e.run(t, call{signer: tc.signer, msg: tc.msg, wantErr: tc.wantErr})

			usage, err := RemainingUsages(e.db, id(1))
			assert.Nil(t, err)
			assert.Equal(t, tc.wantUsage, usage)
			total, err := TotalUsagesPaid(e.db, id(1))
			assert.Nil(t, err)
			assert.Equal(t, tc.wantTotal, total)
			assert.Equal(t, tc.wantBob, e.balance(t, bob.Address(), "IOV"))

			payments, err := PaymentsByUser(e.db, bob.Address())
			assert.Nil(t, err)
			if tc.wantErr == nil {
				assert.Equal(t, 1, len(payments))
				assert.Equal(t, tc.msg.Usages, payments[0].UsagesPurchased)
			} else {
				assert.Equal(t, 0, len(payments))
			}
		})
	}
}

func TestDeleteGroup(t *testing.T) {
	alice := autosharetest.NewCondition()
	bob := autosharetest.NewCondition()
	boss := autosharetest.NewCondition()

	e := newEnv(&admintest.Settings{Admin: boss.Address(), Fee: 10, Tokens: []string{"IOV"}}, store.MemStore())
	e.fund(t, alice.Address(), coin.NewCoin(100, "IOV"))
	e.run(t,
		call{signer: alice, msg: &CreateMsg{ID: id(1), Creator: alice.Address(), UsageCount: 1, Ticker: "IOV"}},
		call{signer: alice, msg: &CreateMsg{ID: id(2), Creator: alice.Address(), UsageCount: 1, Ticker: "IOV"}},
		call{signer: alice, msg: &CreateMsg{ID: id(3), Creator: alice.Address(), UsageCount: 1, Ticker: "IOV"}},
	)

	events := e.run(t,
		call{signer: alice, msg: &DeleteMsg{GroupID: id(1), Caller: alice.Address()}, wantErr: ErrGroupNotDeactivated},
		call{signer: alice, msg: &DeactivateMsg{GroupID: id(1), Caller: alice.Address()}},
		call{signer: alice, msg: &DeactivateMsg{GroupID: id(2), Caller: alice.Address()}},
		call{signer: bob, msg: &DeleteMsg{GroupID: id(1), Caller: bob.Address()}, wantErr: errors.ErrUnauthorized},
		call{signer: alice, msg: &DeleteMsg{GroupID: id(1), Caller: alice.Address()}},
		call{signer: boss, msg: &DeleteMsg{GroupID: id(2), Caller: boss.Address()}},
		call{signer: alice, msg: &DeleteMsg{GroupID: id(2), Caller: alice.Address()}, wantErr: errors.ErrNotFound},
	)
	assert.Equal(t, "group_deleted", events[len(events)-1].Kind)

	_, err := Get(e.db, id(1))
	assert.IsErr(t, errors.ErrNotFound, err)
	all, err := All(e.db)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(all))
	assert.Equal(t, id(3), all[0].ID)

	// Payments outlive the group.
	payments, err := PaymentsByGroup(e.db, id(1))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(payments))

	// The ID can be used again.
	e.fund(t, bob.Address(), coin.NewCoin(10, "IOV"))
	e.run(t, call{signer: bob, msg: &CreateMsg{ID: id(1), Creator: bob.Address(), UsageCount: 1, Ticker: "IOV"}})
	all, err = All(e.db)
	assert.Nil(t, err)
	assert.Equal(t, []ID{id(3), id(1)}, []ID{all[0].ID, all[1].ID})
	payments, err = PaymentsByGroup(e.db, id(1))
	assert.Nil(t, err)
	assert.Equal(t, 2, len(payments))
}

func TestCreateAfterExpiry(t *testing.T) {
	alice := autosharetest.NewCondition()
	settings := &admintest.Settings{Fee: 10, Tokens: []string{"IOV"}}
	life := autoshare.DefaultTTL.ExtendTo
	base := store.MemStore()

	create := func(n byte) call {
		return call{signer: alice, msg: &CreateMsg{ID: id(n), Creator: alice.Address(), UsageCount: 1, Ticker: "IOV"}}
	}

	e := newEnv(settings, store.NewTTLStore(base, 1, 1))
	e.fund(t, alice.Address(), coin.NewCoin(100, "IOV"))
	e.run(t, create(1))

	// The second group renews the index record but not the first group.
	e = newEnv(settings, store.NewTTLStore(base, life-10, 1))
	e.run(t, create(2))

	e = newEnv(settings, store.NewTTLStore(base, life+5, 1))
	if _, err := NewGroupBucket().GetGroup(e.db, id(1)); !errors.ErrNotFound.Is(err) {
		t.Fatalf("group must be expired: %+v", err)
	}
	e.run(t, create(1))

	index, err := NewIndexBucket().Load(e.db)
	assert.Nil(t, err)
	assert.Equal(t, []ID{id(2), id(1)}, index.IDs)

	all, err := All(e.db)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(all))
	assert.Equal(t, id(2), all[0].ID)
	assert.Equal(t, id(1), all[1].ID)
}
