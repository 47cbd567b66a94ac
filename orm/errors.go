package orm

import (
	"github.com/iov-one/autoshare/errors"
)

// Orm reserves 100~109 error codes

// ErrInvalidIndex is returned when an index specified is invalid
var ErrInvalidIndex = errors.Register(100, "invalid index")

// ErrUniqueConstraint is returned when saving a model would index two
// entities under the same value of a unique index
var ErrUniqueConstraint = errors.Register(101, "duplicate unique key")
