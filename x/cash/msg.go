package cash

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/errors"
)

const maxMemoSize int = 128

// SendMsg moves tokens between two accounts.
type SendMsg struct {
	Source      autoshare.Address `json:"source"`
	Destination autoshare.Address `json:"destination"`
	Amount      coin.Coin         `json:"amount"`
	Memo        string            `json:"memo,omitempty"`
}

var _ autoshare.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return "cash/send"
}

// Validate makes sure that this is sensible
func (m *SendMsg) Validate() error {
	var errs error
	if !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.Wrapf(errors.ErrAmount, "non-positive %s", m.Amount))
	} else {
		errs = errors.AppendField(errs, "Amount", m.Amount.Validate())
	}
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.Wrap(errors.ErrInput, "memo too long"))
	}
	return errs
}
