package autosharetest

import "github.com/iov-one/autoshare"

// Decorator is a mock implementation of the autoshare.Decorator interface.
//
// Set CheckErr or DeliverErr to force an error response. Otherwise the
// wrapped handler is called. Every call is counted, whatever its result.
type Decorator struct {
	checkCall int
	// CheckErr if set is returned by Check before calling the wrapped
	// handler.
	CheckErr error

	deliverCall int
	// DeliverErr if set is returned by Deliver before calling the wrapped
	// handler.
	DeliverErr error
}

var _ autoshare.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx, next autoshare.Checker) (*autoshare.CheckResult, error) {
	d.checkCall++
	if d.CheckErr != nil {
		return &autoshare.CheckResult{}, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx, next autoshare.Deliverer) (*autoshare.DeliverResult, error) {
	d.deliverCall++
	if d.DeliverErr != nil {
		return &autoshare.DeliverResult{}, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CheckCallCount() int {
	return d.checkCall
}

func (d *Decorator) DeliverCallCount() int {
	return d.deliverCall
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}

// Decorate returns a handler that calls h through d.
func Decorate(h autoshare.Handler, d autoshare.Decorator) autoshare.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn autoshare.Handler
	dc autoshare.Decorator
}

var _ autoshare.Handler = (*decoratedHandler)(nil)

func (d *decoratedHandler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	return d.dc.Check(ctx, db, tx, d.hn)
}

func (d *decoratedHandler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, tx, d.hn)
}
