package utils

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
)

// Recovery turns a panic of the wrapped handler into an ErrPanic result.
// The ledger state is left to the savepoint below it, which discards the
// writes of the failed call.
type Recovery struct{}

var _ autoshare.Decorator = Recovery{}

func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx, next autoshare.Checker) (_ *autoshare.CheckResult, err error) {
	defer recoverCall(ctx, tx, &err)
	return next.Check(ctx, db, tx)
}

func (Recovery) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx, next autoshare.Deliverer) (_ *autoshare.DeliverResult, err error) {
	defer recoverCall(ctx, tx, &err)
	return next.Deliver(ctx, db, tx)
}

// recoverCall must be called directly by a deferred statement.
func recoverCall(ctx autoshare.Context, tx autoshare.Tx, err *error) {
	r := recover()
	if r == nil {
		return
	}
	*err = errors.Wrapf(errors.ErrPanic, "%v", r)
	autoshare.GetLogger(ctx).Error("call panicked", "path", autoshare.GetPath(tx), "panic", r)
}
