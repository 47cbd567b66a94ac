package autosharetest

import (
	"context"
	"fmt"

	"github.com/iov-one/autoshare"
)

// Auth authenticates a fixed set of conditions, regardless of the context.
// Signer and Signers are considered together.
type Auth struct {
	// Signer is a shortcut when only a single condition is authenticated.
	Signer autoshare.Condition

	// Signers lists all authenticated conditions.
	Signers []autoshare.Condition
}

func (a *Auth) GetConditions(autoshare.Context) []autoshare.Condition {
	if a.Signer != nil {
		return append(a.Signers, a.Signer)
	}
	return a.Signers
}

func (a *Auth) HasAddress(ctx autoshare.Context, addr autoshare.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

// CtxAuth keeps the authenticated conditions in the context, so that a
// single handler instance can be called by different signers.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context.
	Key string
}

// SetConditions returns a context authenticated by given conditions only.
func (a *CtxAuth) SetConditions(ctx autoshare.Context, conds ...autoshare.Condition) autoshare.Context {
	return context.WithValue(ctx, a.Key, conds)
}

func (a *CtxAuth) GetConditions(ctx autoshare.Context) []autoshare.Condition {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil
	}
	conds, ok := val.([]autoshare.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []autoshare.Condition got %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx autoshare.Context, addr autoshare.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
