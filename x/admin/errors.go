package admin

import (
	"github.com/iov-one/autoshare/errors"
)

var (
	ErrContractPaused              = errors.Register(210, "contract paused")
	ErrAlreadyPaused               = errors.Register(211, "already paused")
	ErrNotPaused                   = errors.Register(212, "not paused")
	ErrUnsupportedToken            = errors.Register(213, "unsupported token")
	ErrInsufficientContractBalance = errors.Register(214, "insufficient contract balance")
)
