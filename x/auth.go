package x

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system,
// rather than hard-coding x/auth for all extensions.
type Authenticator interface {
	// GetConditions reveals all Conditions fulfilled,
	// you may want GetAddresses helper
	GetConditions(autoshare.Context) []autoshare.Condition
	// HasAddress checks if any condition matches this address
	HasAddress(autoshare.Context, autoshare.Address) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetConditions combines all Conditions from all Authenticators
func (m MultiAuth) GetConditions(ctx autoshare.Context) []autoshare.Condition {
	var res []autoshare.Condition
	for _, impl := range m.impls {
		for _, c := range impl.GetConditions(ctx) {
			if !hasPerm(res, c) {
				res = append(res, c)
			}
		}
	}
	return res
}

// HasAddress returns true iff any Authenticator support this
func (m MultiAuth) HasAddress(ctx autoshare.Context, addr autoshare.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// RequireAddress fails with ErrUnauthorized unless the call was authorized
// by given address.
func RequireAddress(ctx autoshare.Context, auth Authenticator, addr autoshare.Address) error {
	if len(addr) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "no identity")
	}
	if !auth.HasAddress(ctx, addr) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s did not sign", addr)
	}
	return nil
}

// GetAddresses wraps the GetConditions method of any Authenticator
func GetAddresses(ctx autoshare.Context, auth Authenticator) []autoshare.Address {
	perms := auth.GetConditions(ctx)
	addrs := make([]autoshare.Address, len(perms))
	for i, p := range perms {
		addrs[i] = p.Address()
	}
	return addrs
}

// MainSigner returns the first permission if any, otherwise nil
func MainSigner(ctx autoshare.Context, auth Authenticator) autoshare.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// HasAllAddresses returns true if all elements in required are
// also in context.
func HasAllAddresses(ctx autoshare.Context, auth Authenticator, required []autoshare.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}

// HasAllConditions returns true if all elements in required are
// also in context.
func HasAllConditions(ctx autoshare.Context, auth Authenticator, required []autoshare.Condition) bool {
	return HasNConditions(ctx, auth, required, len(required))
}

// HasNConditions returns true if at least n elements in requested are
// also in context.
func HasNConditions(ctx autoshare.Context, auth Authenticator, requested []autoshare.Condition, n int) bool {
	if n <= 0 {
		return true
	}
	perms := auth.GetConditions(ctx)
	for _, perm := range requested {
		if hasPerm(perms, perm) {
			n--
			if n == 0 {
				return true
			}
		}
	}
	return false
}

func hasPerm(perms []autoshare.Condition, perm autoshare.Condition) bool {
	for _, p := range perms {
		if p.Equals(perm) {
			return true
		}
	}
	return false
}
