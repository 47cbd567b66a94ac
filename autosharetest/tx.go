package autosharetest

import "github.com/iov-one/autoshare"

// Tx is a transaction carrying a single message.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg autoshare.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ autoshare.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (autoshare.Msg, error) {
	return tx.Msg, tx.Err
}

// Msg is a message routed by its path.
type Msg struct {
	// RoutePath is returned by the Path method, consumed by the router.
	RoutePath string
	// Err if set is returned by Validate.
	Err error
}

var _ autoshare.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}
