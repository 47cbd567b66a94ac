/*
Package auth provides basic authentication
middleware to verify the signatures on the transaction,
and maintain nonces for replay protection.
*/
package auth

import (
	"github.com/iov-one/autoshare"
)

// Decorator verifies the signatures of SignedTx transactions and passes
// the signers down the stack. Other transactions are passed without any
// signer.
type Decorator struct{}

var _ autoshare.Decorator = Decorator{}

func NewDecorator() Decorator {
	return Decorator{}
}

// Check verifies signatures before calling down the stack
func (d Decorator) Check(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx, next autoshare.Checker) (*autoshare.CheckResult, error) {
	if stx, ok := tx.(SignedTx); ok {
		var err error
		if ctx, err = VerifySignatures(ctx, db, stx); err != nil {
			return nil, err
		}
	}
	return next.Check(ctx, db, tx)
}

// Deliver verifies signatures before calling down the stack
func (d Decorator) Deliver(ctx autoshare.Context, db autoshare.KVStore, tx autoshare.Tx, next autoshare.Deliverer) (*autoshare.DeliverResult, error) {
	if stx, ok := tx.(SignedTx); ok {
		var err error
		if ctx, err = VerifySignatures(ctx, db, stx); err != nil {
			return nil, err
		}
	}
	return next.Deliver(ctx, db, tx)
}
