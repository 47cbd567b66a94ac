package distribution

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/x/group"
)

var _ autoshare.Msg = (*DistributeMsg)(nil)

// DistributeMsg pays Amount from Sender to the members of the group. The
// amount must be positive, this is checked by the handler after the pause
// flag.
type DistributeMsg struct {
	GroupID group.ID          `json:"group_id"`
	Sender  autoshare.Address `json:"sender"`
	Amount  coin.Coin         `json:"amount"`
}

func (DistributeMsg) Path() string {
	return "distribution/distribute"
}

func (m *DistributeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Sender", m.Sender.Validate())
	errs = errors.AppendField(errs, "Amount", m.Amount.Validate())
	return errs
}
