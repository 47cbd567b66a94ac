package group

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/x"
	"github.com/iov-one/autoshare/x/admin"
	"github.com/iov-one/autoshare/x/cash"
)

// RegisterRoutes registers handlers for all group messages.
func RegisterRoutes(r autoshare.Registry, auth x.Authenticator, settings admin.Controller, bank cash.Controller) {
	groups := NewGroupBucket()
	index := NewIndexBucket()
	payments := NewPaymentBucket()

	r.Handle(CreateMsg{}.Path(), &createHandler{auth: auth, settings: settings, bank: bank, groups: groups, index: index, payments: payments})
	r.Handle(AddMemberMsg{}.Path(), &addMemberHandler{auth: auth, settings: settings, groups: groups})
	r.Handle(RemoveMemberMsg{}.Path(), &removeMemberHandler{auth: auth, settings: settings, groups: groups})
	r.Handle(UpdateMembersMsg{}.Path(), &updateMembersHandler{auth: auth, settings: settings, groups: groups})
	r.Handle(ActivateMsg{}.Path(), &activationHandler{auth: auth, settings: settings, groups: groups, activate: true})
	r.Handle(DeactivateMsg{}.Path(), &activationHandler{auth: auth, settings: settings, groups: groups, activate: false})
	r.Handle(TopUpMsg{}.Path(), &topUpHandler{auth: auth, settings: settings, bank: bank, groups: groups, payments: payments})
	r.Handle(DeleteMsg{}.Path(), &deleteHandler{auth: auth, settings: settings, groups: groups, index: index})
}

// preflight runs the checks shared by every state change: the caller
// signature and the pause flag.
func preflight(ctx autoshare.Context, auth x.Authenticator, settings admin.Controller, db autoshare.ReadOnlyKVStore, caller autoshare.Address) error {
	if err := x.RequireAddress(ctx, auth, caller); err != nil {
		return err
	}
	return settings.RequireNotPaused(db)
}

// loadOwned returns the group if the caller is its creator. Unless
// anyState is set, the group must be active.
func loadOwned(db autoshare.ReadOnlyKVStore, groups GroupBucket, id ID, caller autoshare.Address, anyState bool) (*Group, error) {
	g, err := groups.GetGroup(db, id)
	if err != nil {
		return nil, err
	}
	if !g.Creator.Equals(caller) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "creator only")
	}
	if !anyState && !g.Active {
		return nil, errors.Wrapf(ErrGroupInactive, "group %s", id)
	}
	return g, nil
}

func recordPayment(ctx autoshare.Context, db autoshare.KVStore, payments PaymentBucket, payer autoshare.Address, id ID, usages uint32, paid coin.Coin) error {
	now, err := autoshare.BlockUnixTime(ctx)
	if err != nil {
		return errors.Wrap(err, "block time")
	}
	return payments.Record(db, &PaymentRecord{
		Payer:           payer,
		GroupID:         id,
		UsagesPurchased: usages,
		AmountPaid:      paid,
		Timestamp:       now,
	})
}

type createHandler struct {
	auth     x.Authenticator
	settings admin.Controller
	bank     cash.Controller
	groups   GroupBucket
	index    IndexBucket
	payments PaymentBucket
}

func (h *createHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &autoshare.CheckResult{}, nil
}

// Deliver takes the payment, stores the group and records the payment. The
// call runs in a single savepoint, a failure of any step reverts all of
// them.
func (h *createHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	msg, cost, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bank.MoveCoins(db, msg.Creator, h.settings.Custody(), cost); err != nil {
		return nil, errors.Wrap(err, "usage payment")
	}
	g := &Group{
		ID:              msg.ID,
		Name:            msg.Name,
		Creator:         msg.Creator,
		UsageCount:      msg.UsageCount,
		TotalUsagesPaid: msg.UsageCount,
		Members:         msg.Members,
		Active:          true,
	}
	if g.Members == nil {
		g.Members = []Member{}
	}
	if err := h.groups.Save(db, g); err != nil {
		return nil, errors.Wrap(err, "save group")
	}
	if err := h.index.Append(db, g.ID); err != nil {
		return nil, errors.Wrap(err, "index group")
	}
	if err := recordPayment(ctx, db, h.payments, msg.Creator, g.ID, msg.UsageCount, cost); err != nil {
		return nil, err
	}
	ev := autoshare.NewEvent("group_created", g, g.Creator.String(), g.ID.String())
	return &autoshare.DeliverResult{Data: g.ID[:], Events: []autoshare.Event{ev}}, nil
}

func (h *createHandler) validate(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*CreateMsg, coin.Coin, error) {
	var msg CreateMsg
	if err := autoshare.LoadMsg(tx, &msg); err != nil {
		return nil, coin.Coin{}, errors.Wrap(err, "load msg")
	}
	if err := preflight(ctx, h.auth, h.settings, db, msg.Creator); err != nil {
		return nil, coin.Coin{}, err
	}
	switch err := h.groups.Has(db, msg.ID[:]); {
	case err == nil:
		return nil, coin.Coin{}, errors.Wrapf(errors.ErrDuplicate, "group %s exists", msg.ID)
	case !errors.ErrNotFound.Is(err):
		return nil, coin.Coin{}, err
	}
	if msg.UsageCount == 0 {
		return nil, coin.Coin{}, errors.Wrap(ErrInvalidUsageCount, "at least one usage must be paid")
	}
	if err := h.settings.RequireSupportedToken(db, msg.Ticker); err != nil {
		return nil, coin.Coin{}, err
	}
	if len(msg.Members) > 0 {
		if err := ValidateMembers(msg.Members); err != nil {
			return nil, coin.Coin{}, err
		}
	}
	cost, err := h.settings.Cost(db, msg.Ticker, msg.UsageCount)
	if err != nil {
		return nil, coin.Coin{}, err
	}
	return &msg, cost, nil
}

type addMemberHandler struct {
	auth     x.Authenticator
	settings admin.Controller
	groups   GroupBucket
}

func (h *addMemberHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &autoshare.CheckResult{}, nil
}

func (h *addMemberHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	msg, g, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.groups.Save(db, g); err != nil {
		return nil, errors.Wrap(err, "save group")
	}
	ev := autoshare.NewEvent("group_updated", g, msg.Caller.String(), g.ID.String())
	return &autoshare.DeliverResult{Events: []autoshare.Event{ev}}, nil
}

// validate returns the group with the new member appended.
func (h *addMemberHandler) validate(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*AddMemberMsg, *Group, error) {
	var msg AddMemberMsg
	if err := autoshare.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if err := preflight(ctx, h.auth, h.settings, db, msg.Caller); err != nil {
		return nil, nil, err
	}
	g, err := loadOwned(db, h.groups, msg.GroupID, msg.Caller, false)
	if err != nil {
		return nil, nil, err
	}
	if g.HasMember(msg.Address) {
		return nil, nil, errors.Wrapf(errors.ErrDuplicate, "%s is a member", msg.Address)
	}
	g.Members = append(g.Members, Member{Address: msg.Address, Percentage: msg.Percentage})
	if err := ValidateMembers(g.Members); err != nil {
		return nil, nil, err
	}
	return &msg, g, nil
}

type removeMemberHandler struct {
	auth     x.Authenticator
	settings admin.Controller
	groups   GroupBucket
}

func (h *removeMemberHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &autoshare.CheckResult{}, nil
}

func (h *removeMemberHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	msg, g, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.groups.Save(db, g); err != nil {
		return nil, errors.Wrap(err, "save group")
	}
	ev := autoshare.NewEvent("group_updated", g, msg.Caller.String(), g.ID.String())
	return &autoshare.DeliverResult{Events: []autoshare.Event{ev}}, nil
}

// validate returns the group without the member. The remaining split is
// not required to sum up to 100.
func (h *removeMemberHandler) validate(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*RemoveMemberMsg, *Group, error) {
	var msg RemoveMemberMsg
	if err := autoshare.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if err := preflight(ctx, h.auth, h.settings, db, msg.Caller); err != nil {
		return nil, nil, err
	}
	g, err := loadOwned(db, h.groups, msg.GroupID, msg.Caller, false)
	if err != nil {
		return nil, nil, err
	}
	pos := memberIndex(g.Members, msg.Address)
	if pos < 0 {
		return nil, nil, errors.Wrapf(ErrMemberNotFound, "%s", msg.Address)
	}
	members := make([]Member, 0, len(g.Members)-1)
	members = append(members, g.Members[:pos]...)
	g.Members = append(members, g.Members[pos+1:]...)
	return &msg, g, nil
}

type updateMembersHandler struct {
	auth     x.Authenticator
	settings admin.Controller
	groups   GroupBucket
}

func (h *updateMembersHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &autoshare.CheckResult{}, nil
}

func (h *updateMembersHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	msg, g, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	g.Members = msg.Members
	if err := h.groups.Save(db, g); err != nil {
		return nil, errors.Wrap(err, "save group")
	}
	ev := autoshare.NewEvent("group_updated", g, msg.Caller.String(), g.ID.String())
	return &autoshare.DeliverResult{Events: []autoshare.Event{ev}}, nil
}

func (h *updateMembersHandler) validate(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*UpdateMembersMsg, *Group, error) {
	var msg UpdateMembersMsg
	if err := autoshare.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if err := preflight(ctx, h.auth, h.settings, db, msg.Caller); err != nil {
		return nil, nil, err
	}
	g, err := loadOwned(db, h.groups, msg.GroupID, msg.Caller, false)
	if err != nil {
		return nil, nil, err
	}
	if err := ValidateMembers(msg.Members); err != nil {
		return nil, nil, err
	}
	return &msg, g, nil
}

// activationHandler moves a group between the active and inactive state.
type activationHandler struct {
	auth     x.Authenticator
	settings admin.Controller
	groups   GroupBucket
	activate bool
}

func (h *activationHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &autoshare.CheckResult{}, nil
}

func (h *activationHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	caller, g, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	g.Active = h.activate
	if err := h.groups.Save(db, g); err != nil {
		return nil, errors.Wrap(err, "save group")
	}
	kind := "group_deactivated"
	if h.activate {
		kind = "group_activated"
	}
	ev := autoshare.NewEvent(kind, g, caller.String(), g.ID.String())
	return &autoshare.DeliverResult{Events: []autoshare.Event{ev}}, nil
}

func (h *activationHandler) validate(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (autoshare.Address, *Group, error) {
	var (
		id     ID
		caller autoshare.Address
	)
	if h.activate {
		var msg ActivateMsg
		if err := autoshare.LoadMsg(tx, &msg); err != nil {
			return nil, nil, errors.Wrap(err, "load msg")
		}
		id, caller = msg.GroupID, msg.Caller
	} else {
		var msg DeactivateMsg
		if err := autoshare.LoadMsg(tx, &msg); err != nil {
			return nil, nil, errors.Wrap(err, "load msg")
		}
		id, caller = msg.GroupID, msg.Caller
	}
	if err := preflight(ctx, h.auth, h.settings, db, caller); err != nil {
		return nil, nil, err
	}
	g, err := loadOwned(db, h.groups, id, caller, true)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case h.activate && g.Active:
		return nil, nil, errors.Wrapf(ErrGroupAlreadyActive, "group %s", id)
	case !h.activate && !g.Active:
		return nil, nil, errors.Wrapf(ErrGroupAlreadyInactive, "group %s", id)
	}
	return caller, g, nil
}

type topUpHandler struct {
	auth     x.Authenticator
	settings admin.Controller
	bank     cash.Controller
	groups   GroupBucket
	payments PaymentBucket
}

func (h *topUpHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &autoshare.CheckResult{}, nil
}

func (h *topUpHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	msg, g, cost, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bank.MoveCoins(db, msg.Payer, h.settings.Custody(), cost); err != nil {
		return nil, errors.Wrap(err, "usage payment")
	}
	g.UsageCount += msg.Usages
	g.TotalUsagesPaid += msg.Usages
	if err := h.groups.Save(db, g); err != nil {
		return nil, errors.Wrap(err, "save group")
	}
	if err := recordPayment(ctx, db, h.payments, msg.Payer, g.ID, msg.Usages, cost); err != nil {
		return nil, err
	}
	ev := autoshare.NewEvent("subscription_topped_up", msg, msg.Payer.String(), g.ID.String())
	return &autoshare.DeliverResult{Events: []autoshare.Event{ev}}, nil
}

func (h *topUpHandler) validate(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*TopUpMsg, *Group, coin.Coin, error) {
	var msg TopUpMsg
	if err := autoshare.LoadMsg(tx, &msg); err != nil {
		return nil, nil, coin.Coin{}, errors.Wrap(err, "load msg")
	}
	if err := preflight(ctx, h.auth, h.settings, db, msg.Payer); err != nil {
		return nil, nil, coin.Coin{}, err
	}
	if msg.Usages == 0 {
		return nil, nil, coin.Coin{}, errors.Wrap(ErrInvalidUsageCount, "at least one usage must be paid")
	}
	g, err := h.groups.GetGroup(db, msg.GroupID)
	if err != nil {
		return nil, nil, coin.Coin{}, err
	}
	if err := h.settings.RequireSupportedToken(db, msg.Ticker); err != nil {
		return nil, nil, coin.Coin{}, err
	}
	if uint64(g.TotalUsagesPaid)+uint64(msg.Usages) > maxUsages {
		return nil, nil, coin.Coin{}, errors.Wrapf(errors.ErrOverflow, "%d usages paid already", g.TotalUsagesPaid)
	}
	cost, err := h.settings.Cost(db, msg.Ticker, msg.Usages)
	if err != nil {
		return nil, nil, coin.Coin{}, err
	}
	return &msg, g, cost, nil
}

const maxUsages = 1<<32 - 1

type deleteHandler struct {
	auth     x.Authenticator
	settings admin.Controller
	groups   GroupBucket
	index    IndexBucket
}

func (h *deleteHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &autoshare.CheckResult{}, nil
}

// Deliver removes the group and its index entry. Payment and distribution
// records stay.
func (h *deleteHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.index.Remove(db, msg.GroupID); err != nil {
		return nil, errors.Wrap(err, "unindex group")
	}
	if err := h.groups.Delete(db, msg.GroupID[:]); err != nil {
		return nil, errors.Wrap(err, "delete group")
	}
	ev := autoshare.NewEvent("group_deleted", msg, msg.Caller.String(), msg.GroupID.String())
	return &autoshare.DeliverResult{Events: []autoshare.Event{ev}}, nil
}

func (h *deleteHandler) validate(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*DeleteMsg, error) {
	var msg DeleteMsg
	if err := autoshare.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := preflight(ctx, h.auth, h.settings, db, msg.Caller); err != nil {
		return nil, err
	}
	g, err := h.groups.GetGroup(db, msg.GroupID)
	if err != nil {
		return nil, err
	}
	if !g.Creator.Equals(msg.Caller) {
		isAdmin, err := h.settings.IsAdmin(db, msg.Caller)
		if err != nil {
			return nil, err
		}
		if !isAdmin {
			return nil, errors.Wrap(errors.ErrUnauthorized, "creator or admin only")
		}
	}
	if g.Active {
		return nil, errors.Wrapf(ErrGroupNotDeactivated, "group %s", msg.GroupID)
	}
	return &msg, nil
}
