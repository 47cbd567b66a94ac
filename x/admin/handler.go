package admin

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/gconf"
	"github.com/iov-one/autoshare/x"
	"github.com/iov-one/autoshare/x/cash"
)

// RegisterRoutes registers handlers for all admin messages.
func RegisterRoutes(r autoshare.Registry, auth x.Authenticator, bank cash.Controller) {
	r.Handle(InitAdminMsg{}.Path(), &initHandler{auth: auth})
	r.Handle(TransferAdminMsg{}.Path(), &transferHandler{auth: auth})
	r.Handle(PauseMsg{}.Path(), &pauseHandler{auth: auth})
	r.Handle(UnpauseMsg{}.Path(), &unpauseHandler{auth: auth})
	r.Handle(SetUsageFeeMsg{}.Path(), &usageFeeHandler{auth: auth})
	r.Handle(AddTokenMsg{}.Path(), &addTokenHandler{auth: auth})
	r.Handle(RemoveTokenMsg{}.Path(), &removeTokenHandler{auth: auth})
	r.Handle(WithdrawMsg{}.Path(), &withdrawHandler{auth: auth, bank: bank})
}

// authorize loads the configuration and ensures that the call was signed by
// the admin. Unless ignorePause is set, a paused ledger rejects the call
// before the admin is compared.
func authorize(ctx autoshare.Context, auth x.Authenticator, db gconf.ReadStore, caller autoshare.Address, ignorePause bool) (*Configuration, error) {
	if err := x.RequireAddress(ctx, auth, caller); err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	switch {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrap(errors.ErrUnauthorized, "admin not initialized")
	default:
		return nil, errors.Wrap(err, "load configuration")
	}
	if !ignorePause && conf.Paused {
		return nil, errors.Wrap(ErrContractPaused, "state changes are disabled")
	}
	if !conf.Admin.Equals(caller) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "admin only")
	}
	return conf, nil
}

type initHandler struct {
	auth x.Authenticator
}

func (h *initHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &autoshare.CheckResult{}, nil
}

func (h *initHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	exists, err := gconf.Exists(db, confPkg)
	if err != nil {
		return nil, err
	}
	if exists {
		// The first admin stays, repeated calls succeed without effect.
		if _, err := loadConf(db); err != nil {
			return nil, err
		}
		return &autoshare.DeliverResult{Log: "admin already initialized"}, nil
	}
	conf := Configuration{
		Admin:           msg.Admin,
		UsageFee:        DefaultUsageFee,
		SupportedTokens: []string{},
	}
	if err := gconf.Save(db, confPkg, &conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}
	ev := autoshare.NewEvent("admin_initialized", msg, msg.Admin.String())
	return &autoshare.DeliverResult{Events: []autoshare.Event{ev}}, nil
}

func (h *initHandler) validate(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*InitAdminMsg, error) {
	var msg InitAdminMsg
	if err := autoshare.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := x.RequireAddress(ctx, h.auth, msg.Admin); err != nil {
		return nil, err
	}
	return &msg, nil
}

type transferHandler struct {
	auth x.Authenticator
}

func (h *transferHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &autoshare.CheckResult{}, nil
}

func (h *transferHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	conf.Admin = msg.New
	if err := gconf.Save(db, confPkg, conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}
	ev := autoshare.NewEvent("admin_transferred", msg, msg.Current.String(), msg.New.String())
	return &autoshare.DeliverResult{Events: []autoshare.Event{ev}}, nil
}

func (h *transferHandler) validate(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*TransferAdminMsg, *Configuration, error) {
	var msg TransferAdminMsg
	if err := autoshare.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := authorize(ctx, h.auth, db, msg.Current, true)
	if err != nil {
		return nil, nil, err
	}
	return &msg, conf, nil
}

type pauseHandler struct {
	auth x.Authenticator
}

func (h *pauseHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &autoshare.CheckResult{}, nil
}

func (h *pauseHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	conf.Paused = true
	if err := gconf.Save(db, confPkg, conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}
	ev := autoshare.NewEvent("paused", msg, msg.Admin.String())
	return &autoshare.DeliverResult{Events: []autoshare.Event{ev}}, nil
}

func (h *pauseHandler) validate(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*PauseMsg, *Configuration, error) {
	var msg PauseMsg
	if err := autoshare.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := authorize(ctx, h.auth, db, msg.Admin, true)
	if err != nil {
		return nil, nil, err
	}
	if conf.Paused {
		return nil, nil, ErrAlreadyPaused
	}
	return &msg, conf, nil
}

type unpauseHandler struct {
	auth x.Authenticator
}

func (h *unpauseHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &autoshare.CheckResult{}, nil
}

func (h *unpauseHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	conf.Paused = false
	if err := gconf.Save(db, confPkg, conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}
	ev := autoshare.NewEvent("unpaused", msg, msg.Admin.String())
	return &autoshare.DeliverResult{Events: []autoshare.Event{ev}}, nil
}

func (h *unpauseHandler) validate(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*UnpauseMsg, *Configuration, error) {
	var msg UnpauseMsg
	if err := autoshare.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := authorize(ctx, h.auth, db, msg.Admin, true)
	if err != nil {
		return nil, nil, err
	}
	if !conf.Paused {
		return nil, nil, ErrNotPaused
	}
	return &msg, conf, nil
}

type usageFeeHandler struct {
	auth x.Authenticator
}

func (h *usageFeeHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &autoshare.CheckResult{}, nil
}

func (h *usageFeeHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	conf.UsageFee = msg.Fee
	if err := gconf.Save(db, confPkg, conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}
	ev := autoshare.NewEvent("usage_fee_updated", msg, msg.Admin.String())
	return &autoshare.DeliverResult{Events: []autoshare.Event{ev}}, nil
}

func (h *usageFeeHandler) validate(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*SetUsageFeeMsg, *Configuration, error) {
	var msg SetUsageFeeMsg
	if err := autoshare.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := authorize(ctx, h.auth, db, msg.Admin, false)
	if err != nil {
		return nil, nil, err
	}
	if msg.Fee == 0 {
		return nil, nil, errors.Wrap(errors.ErrAmount, "zero fee")
	}
	return &msg, conf, nil
}

type addTokenHandler struct {
	auth x.Authenticator
}

func (h *addTokenHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &autoshare.CheckResult{}, nil
}

func (h *addTokenHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	conf.SupportedTokens = append(conf.SupportedTokens, msg.Ticker)
	if err := gconf.Save(db, confPkg, conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}
	ev := autoshare.NewEvent("token_added", msg, msg.Ticker)
	return &autoshare.DeliverResult{Events: []autoshare.Event{ev}}, nil
}

func (h *addTokenHandler) validate(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*AddTokenMsg, *Configuration, error) {
	var msg AddTokenMsg
	if err := autoshare.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := authorize(ctx, h.auth, db, msg.Admin, false)
	if err != nil {
		return nil, nil, err
	}
	if conf.hasToken(msg.Ticker) >= 0 {
		return nil, nil, errors.Wrapf(errors.ErrDuplicate, "%q already supported", msg.Ticker)
	}
	return &msg, conf, nil
}

type removeTokenHandler struct {
	auth x.Authenticator
}

func (h *removeTokenHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &autoshare.CheckResult{}, nil
}

func (h *removeTokenHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	msg, conf, pos, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	tokens := make([]string, 0, len(conf.SupportedTokens)-1)
	tokens = append(tokens, conf.SupportedTokens[:pos]...)
	conf.SupportedTokens = append(tokens, conf.SupportedTokens[pos+1:]...)
	if err := gconf.Save(db, confPkg, conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}
	ev := autoshare.NewEvent("token_removed", msg, msg.Ticker)
	return &autoshare.DeliverResult{Events: []autoshare.Event{ev}}, nil
}

func (h *removeTokenHandler) validate(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*RemoveTokenMsg, *Configuration, int, error) {
	var msg RemoveTokenMsg
	if err := autoshare.LoadMsg(tx, &msg); err != nil {
		return nil, nil, 0, errors.Wrap(err, "load msg")
	}
	conf, err := authorize(ctx, h.auth, db, msg.Admin, false)
	if err != nil {
		return nil, nil, 0, err
	}
	pos := conf.hasToken(msg.Ticker)
	if pos < 0 {
		return nil, nil, 0, errors.Wrapf(errors.ErrNotFound, "%q not supported", msg.Ticker)
	}
	return &msg, conf, pos, nil
}

type withdrawHandler struct {
	auth x.Authenticator
	bank cash.Controller
}

func (h *withdrawHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &autoshare.CheckResult{}, nil
}

func (h *withdrawHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bank.MoveCoins(db, CustodyAccount, msg.Recipient, msg.Amount); err != nil {
		return nil, errors.Wrap(err, "withdraw")
	}
	ev := autoshare.NewEvent("withdrawal", msg, msg.Amount.Ticker, msg.Recipient.String())
	return &autoshare.DeliverResult{Events: []autoshare.Event{ev}}, nil
}

func (h *withdrawHandler) validate(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*WithdrawMsg, error) {
	var msg WithdrawMsg
	if err := autoshare.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := authorize(ctx, h.auth, db, msg.Admin, false); err != nil {
		return nil, err
	}
	if !msg.Amount.IsPositive() {
		return nil, errors.Wrapf(errors.ErrAmount, "non-positive %s", msg.Amount)
	}
	balance, err := ContractBalance(db, h.bank, msg.Amount.Ticker)
	if err != nil {
		return nil, errors.Wrap(err, "contract balance")
	}
	if !balance.IsGTE(msg.Amount) {
		return nil, errors.Wrapf(ErrInsufficientContractBalance, "holds %s", balance)
	}
	return &msg, nil
}
