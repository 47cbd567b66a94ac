package app

import "github.com/iov-one/autoshare/errors"

// ErrNoSuchPath is returned for a message that no handler is registered for.
var ErrNoSuchPath = errors.Register(50, "no such path")
