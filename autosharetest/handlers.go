package autosharetest

import "github.com/iov-one/autoshare"

// Handler is a mock implementation of the autoshare.Handler interface.
// Configured results are returned by every call.
//
// WriteKey, when set, is written with WriteValue on every call before the
// result is returned. Use it to test that failed calls leave no trace.
type Handler struct {
	checkCall   int
	CheckResult autoshare.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult autoshare.DeliverResult
	DeliverErr    error

	WriteKey   []byte
	WriteValue []byte
}

var _ autoshare.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.CheckResult, error) {
	h.checkCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	res := h.CheckResult
	return &res, h.CheckErr
}

func (h *Handler) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx) (*autoshare.DeliverResult, error) {
	h.deliverCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	res := h.DeliverResult
	return &res, h.DeliverErr
}

func (h *Handler) write(db autoshare.KVStore) error {
	if h.WriteKey == nil {
		return nil
	}
	return db.Set(h.WriteKey, h.WriteValue)
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
