package cash

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/x"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r autoshare.Registry, auth x.Authenticator, control Controller) {
	r.Handle(SendMsg{}.Path(), NewSendHandler(auth, control))
}

// SendHandler will handle sending coins
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ autoshare.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check verifies the message is properly formed and signed by the source.
func (h SendHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &autoshare.CheckResult{}, nil
}

// Deliver moves the tokens from source to receiver if
// all preconditions are met
func (h SendHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.MoveCoins(db, msg.Source, msg.Destination, msg.Amount); err != nil {
		return nil, err
	}
	ev := autoshare.NewEvent("transfer", msg, msg.Source.String(), msg.Destination.String())
	return &autoshare.DeliverResult{Events: []autoshare.Event{ev}}, nil
}

func (h SendHandler) validate(ctx autoshare.Context, tx autoshare.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := autoshare.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := x.RequireAddress(ctx, h.auth, msg.Source); err != nil {
		return nil, errors.Wrap(err, "account owner signature missing")
	}
	return &msg, nil
}
