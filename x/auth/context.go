package auth

import (
	"context"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/x"
)

type contextKey int // local to the auth module

const (
	contextKeySigners contextKey = iota
)

// withSigners is a private method, as only this module
// can add a signer
func withSigners(ctx autoshare.Context, signers []autoshare.Condition) autoshare.Context {
	return context.WithValue(ctx, contextKeySigners, signers)
}

// Authenticate exposes the signers verified by the Decorator.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns who signed the current Context. May be empty.
func (Authenticate) GetConditions(ctx autoshare.Context) []autoshare.Condition {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeySigners).([]autoshare.Condition)
	return val
}

// HasAddress returns true if the address signed the current Context.
func (a Authenticate) HasAddress(ctx autoshare.Context, addr autoshare.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
