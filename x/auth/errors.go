package auth

import "github.com/iov-one/autoshare/errors"

var (
	ErrMissingSignature = errors.Register(120, "missing signature")
	ErrInvalidSignature = errors.Register(121, "invalid signature")
	ErrInvalidSequence  = errors.Register(122, "invalid sequence")
)
