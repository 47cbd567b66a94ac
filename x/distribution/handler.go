package distribution

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/x"
	"github.com/iov-one/autoshare/x/admin"
	"github.com/iov-one/autoshare/x/cash"
	"github.com/iov-one/autoshare/x/group"
)

// RegisterRoutes registers the distribute handler.
func RegisterRoutes(r autoshare.Registry, auth x.Authenticator, settings admin.Controller, bank cash.Controller) {
	r.Handle(DistributeMsg{}.Path(), &distributeHandler{
		auth:     auth,
		settings: settings,
		bank:     bank,
		groups:   group.NewGroupBucket(),
		records:  NewRecordBucket(),
	})
}

type distributeHandler struct {
	auth     x.Authenticator
	settings admin.Controller
	bank     cash.Controller
	groups   group.GroupBucket
	records  RecordBucket
}

var _ autoshare.Handler = (*distributeHandler)(nil)

func (h *distributeHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &autoshare.CheckResult{}, nil
}

// Deliver collects the amount into custody and pays every member its
// share. One usage of the group is consumed.
func (h *distributeHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	msg, g, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := autoshare.BlockUnixTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}

	custody := h.settings.Custody()
	if err := h.bank.MoveCoins(db, msg.Sender, custody, msg.Amount); err != nil {
		return nil, errors.Wrap(err, "collect")
	}
	shares := Split(msg.Amount.Amount, g.Members)
	for _, s := range shares {
		amount := msg.Amount
		amount.Amount = s.Amount
		if err := h.bank.MoveCoins(db, custody, s.Address, amount); err != nil {
			return nil, errors.Wrapf(err, "pay %s", s.Address)
		}
	}

	record := &DistributionRecord{
		GroupID:            g.ID,
		Sender:             msg.Sender,
		TotalAmount:        msg.Amount,
		MemberAmounts:      shares,
		Timestamp:          now,
		DistributionNumber: g.TotalUsagesPaid - g.UsageCount,
	}
	if err := h.records.Record(db, record); err != nil {
		return nil, err
	}

	g.UsageCount--
	if err := h.groups.Save(db, g); err != nil {
		return nil, errors.Wrap(err, "save group")
	}

	ev := autoshare.NewEvent("distribution", msg, g.ID.String(), msg.Amount.Ticker, msg.Sender.String())
	return &autoshare.DeliverResult{Events: []autoshare.Event{ev}}, nil
}

func (h *distributeHandler) validate(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*DistributeMsg, *group.Group, error) {
	var msg DistributeMsg
	if err := autoshare.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if err := x.RequireAddress(ctx, h.auth, msg.Sender); err != nil {
		return nil, nil, err
	}
	if err := h.settings.RequireNotPaused(db); err != nil {
		return nil, nil, err
	}
	if !msg.Amount.IsPositive() {
		return nil, nil, errors.Wrapf(errors.ErrAmount, "cannot distribute %s", msg.Amount)
	}
	if err := h.settings.RequireSupportedToken(db, msg.Amount.Ticker); err != nil {
		return nil, nil, err
	}
	g, err := h.groups.GetGroup(db, msg.GroupID)
	if err != nil {
		return nil, nil, err
	}
	if !g.Active {
		return nil, nil, errors.Wrapf(group.ErrGroupInactive, "group %s", g.ID)
	}
	if g.UsageCount == 0 {
		return nil, nil, errors.Wrapf(group.ErrNoUsagesRemaining, "group %s", g.ID)
	}
	if err := group.ValidatePayout(g.Members); err != nil {
		return nil, nil, errors.Wrap(err, "member split")
	}
	return &msg, g, nil
}
