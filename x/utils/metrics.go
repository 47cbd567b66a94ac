package utils

import (
	"strconv"
	"time"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a decorator counting calls and measuring their duration, per
// message path and result.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ autoshare.Decorator = (*Metrics)(nil)

// NewMetrics creates a Metrics decorator and registers its collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autoshare",
			Name:      "calls_total",
			Help:      "Number of processed calls.",
		}, []string{"phase", "path", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "autoshare",
			Name:      "call_duration_seconds",
			Help:      "Time spent processing a call.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"phase", "path"}),
	}
	for _, c := range []prometheus.Collector{m.calls, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(errors.ErrHuman, err.Error())
		}
	}
	return m, nil
}

func (m *Metrics) Check(ctx autoshare.Context, store autoshare.KVStore, tx autoshare.Tx, next autoshare.Checker) (*autoshare.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	m.observe("check", tx, start, err)
	return res, err
}

func (m *Metrics) Deliver(ctx autoshare.Context, store autoshare.KVStore, tx autoshare.Tx, next autoshare.Deliverer) (*autoshare.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	m.observe("deliver", tx, start, err)
	return res, err
}

func (m *Metrics) observe(phase string, tx autoshare.Tx, start time.Time, err error) {
	path := autoshare.GetPath(tx)
	code := "ok"
	if err != nil {
		code = errorCode(err)
	}
	m.calls.WithLabelValues(phase, path, code).Inc()
	m.duration.WithLabelValues(phase, path).Observe(time.Since(start).Seconds())
}

func errorCode(err error) string {
	code, _ := errors.Info(err, false)
	return strconv.FormatUint(uint64(code), 10)
}
