package utils

import (
	"time"

	"github.com/iov-one/autoshare"
)

// Logging is a decorator to log messages as they pass through
type Logging struct{}

var _ autoshare.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> info, success -> debug
func (r Logging) Check(ctx autoshare.Context, store autoshare.KVStore, tx autoshare.Tx, next autoshare.Checker) (*autoshare.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, true, 0)
	return res, err
}

// Deliver logs error -> error, success -> info
func (r Logging) Deliver(ctx autoshare.Context, store autoshare.KVStore, tx autoshare.Tx, next autoshare.Deliverer) (*autoshare.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	var (
		resLog string
		events int
	)
	if err == nil {
		resLog = res.Log
		events = len(res.Events)
	}
	logDuration(ctx, tx, start, resLog, err, false, events)
	return res, err
}

// logDuration writes information about the time and result to the logger
func logDuration(ctx autoshare.Context, tx autoshare.Tx, start time.Time, msg string, err error, lowPrio bool, events int) {
	delta := time.Since(start)
	logger := autoshare.GetLogger(ctx).With(
		"path", autoshare.GetPath(tx),
		"duration", delta/time.Microsecond,
	)

	if err != nil {
		logger = logger.With("err", err)
	}
	if events > 0 {
		logger = logger.With("events", events)
	}

	// Although message can be empty, we still want to emit a log entry
	// because it contains other relevant information beside the message.

	switch {
	case err != nil:
		logger.Error(msg)
	case lowPrio:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}
