package admin

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/errors"
)

var (
	_ autoshare.Msg = (*InitAdminMsg)(nil)
	_ autoshare.Msg = (*TransferAdminMsg)(nil)
	_ autoshare.Msg = (*PauseMsg)(nil)
	_ autoshare.Msg = (*UnpauseMsg)(nil)
	_ autoshare.Msg = (*SetUsageFeeMsg)(nil)
	_ autoshare.Msg = (*AddTokenMsg)(nil)
	_ autoshare.Msg = (*RemoveTokenMsg)(nil)
	_ autoshare.Msg = (*WithdrawMsg)(nil)
)

// InitAdminMsg sets the first admin. It has no effect once an admin exists.
type InitAdminMsg struct {
	Admin autoshare.Address `json:"admin"`
}

func (InitAdminMsg) Path() string {
	return "admin/init"
}

func (m *InitAdminMsg) Validate() error {
	return errors.Field("Admin", m.Admin.Validate(), "")
}

// TransferAdminMsg hands the admin role over to another address.
type TransferAdminMsg struct {
	Current autoshare.Address `json:"current"`
	New     autoshare.Address `json:"new"`
}

func (TransferAdminMsg) Path() string {
	return "admin/transfer"
}

func (m *TransferAdminMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Current", m.Current.Validate())
	errs = errors.AppendField(errs, "New", m.New.Validate())
	return errs
}

type PauseMsg struct {
	Admin autoshare.Address `json:"admin"`
}

func (PauseMsg) Path() string {
	return "admin/pause"
}

func (m *PauseMsg) Validate() error {
	return errors.Field("Admin", m.Admin.Validate(), "")
}

type UnpauseMsg struct {
	Admin autoshare.Address `json:"admin"`
}

func (UnpauseMsg) Path() string {
	return "admin/unpause"
}

func (m *UnpauseMsg) Validate() error {
	return errors.Field("Admin", m.Admin.Validate(), "")
}

// SetUsageFeeMsg changes the price of a single usage.
type SetUsageFeeMsg struct {
	Admin autoshare.Address `json:"admin"`
	Fee   uint32            `json:"fee"`
}

func (SetUsageFeeMsg) Path() string {
	return "admin/set_usage_fee"
}

// Validate checks the admin address only. A zero fee is rejected by the
// handler once the caller is known to be the admin.
func (m *SetUsageFeeMsg) Validate() error {
	return errors.Field("Admin", m.Admin.Validate(), "")
}

type AddTokenMsg struct {
	Admin  autoshare.Address `json:"admin"`
	Ticker string            `json:"ticker"`
}

func (AddTokenMsg) Path() string {
	return "admin/add_token"
}

func (m *AddTokenMsg) Validate() error {
	return validateTokenEdit(m.Admin, m.Ticker)
}

type RemoveTokenMsg struct {
	Admin  autoshare.Address `json:"admin"`
	Ticker string            `json:"ticker"`
}

func (RemoveTokenMsg) Path() string {
	return "admin/remove_token"
}

func (m *RemoveTokenMsg) Validate() error {
	return validateTokenEdit(m.Admin, m.Ticker)
}

func validateTokenEdit(admin autoshare.Address, ticker string) error {
	var errs error
	errs = errors.AppendField(errs, "Admin", admin.Validate())
	if !coin.IsCC(ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.Wrapf(errors.ErrCurrency, "%q", ticker))
	}
	return errs
}

// WithdrawMsg moves tokens out of the custody account.
type WithdrawMsg struct {
	Admin     autoshare.Address `json:"admin"`
	Amount    coin.Coin         `json:"amount"`
	Recipient autoshare.Address `json:"recipient"`
}

func (WithdrawMsg) Path() string {
	return "admin/withdraw"
}

func (m *WithdrawMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Admin", m.Admin.Validate())
	if !coin.IsCC(m.Amount.Ticker) {
		errs = errors.AppendField(errs, "Amount", errors.Wrapf(errors.ErrCurrency, "%q", m.Amount.Ticker))
	}
	errs = errors.AppendField(errs, "Recipient", m.Recipient.Validate())
	return errs
}
