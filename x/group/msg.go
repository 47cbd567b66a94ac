package group

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/errors"
)

var (
	_ autoshare.Msg = (*CreateMsg)(nil)
	_ autoshare.Msg = (*AddMemberMsg)(nil)
	_ autoshare.Msg = (*RemoveMemberMsg)(nil)
	_ autoshare.Msg = (*UpdateMembersMsg)(nil)
	_ autoshare.Msg = (*ActivateMsg)(nil)
	_ autoshare.Msg = (*DeactivateMsg)(nil)
	_ autoshare.Msg = (*TopUpMsg)(nil)
	_ autoshare.Msg = (*DeleteMsg)(nil)
)

// CreateMsg registers a new group and pays for its first usages. Members
// are optional, they can be set later with UpdateMembersMsg.
//
// The usage count and the member split are checked by the handler, after
// the state based checks.
type CreateMsg struct {
	ID         ID                `json:"id"`
	Name       string            `json:"name"`
	Creator    autoshare.Address `json:"creator"`
	UsageCount uint32            `json:"usage_count"`
	Ticker     string            `json:"ticker"`
	Members    []Member          `json:"members,omitempty"`
}

func (CreateMsg) Path() string {
	return "group/create"
}

func (m *CreateMsg) Validate() error {
	var errs error
	if len(m.Name) > maxNameLength {
		errs = errors.AppendField(errs, "Name", errors.Wrap(errors.ErrInput, "too long"))
	}
	errs = errors.AppendField(errs, "Creator", m.Creator.Validate())
	if !coin.IsCC(m.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.Wrapf(errors.ErrCurrency, "%q", m.Ticker))
	}
	return validateMemberFields(errs, "Members", m.Members)
}

type AddMemberMsg struct {
	GroupID    ID                `json:"group_id"`
	Caller     autoshare.Address `json:"caller"`
	Address    autoshare.Address `json:"address"`
	Percentage uint32            `json:"percentage"`
}

func (AddMemberMsg) Path() string {
	return "group/add_member"
}

func (m *AddMemberMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Caller", m.Caller.Validate())
	errs = errors.AppendField(errs, "Address", m.Address.Validate())
	return errs
}

type RemoveMemberMsg struct {
	GroupID ID                `json:"group_id"`
	Caller  autoshare.Address `json:"caller"`
	Address autoshare.Address `json:"address"`
}

func (RemoveMemberMsg) Path() string {
	return "group/remove_member"
}

func (m *RemoveMemberMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Caller", m.Caller.Validate())
	errs = errors.AppendField(errs, "Address", m.Address.Validate())
	return errs
}

// UpdateMembersMsg replaces the whole member list.
type UpdateMembersMsg struct {
	GroupID ID                `json:"group_id"`
	Caller  autoshare.Address `json:"caller"`
	Members []Member          `json:"members"`
}

func (UpdateMembersMsg) Path() string {
	return "group/update_members"
}

func (m *UpdateMembersMsg) Validate() error {
	errs := errors.AppendField(nil, "Caller", m.Caller.Validate())
	return validateMemberFields(errs, "Members", m.Members)
}

type ActivateMsg struct {
	GroupID ID                `json:"group_id"`
	Caller  autoshare.Address `json:"caller"`
}

func (ActivateMsg) Path() string {
	return "group/activate"
}

func (m *ActivateMsg) Validate() error {
	return errors.Field("Caller", m.Caller.Validate(), "")
}

type DeactivateMsg struct {
	GroupID ID                `json:"group_id"`
	Caller  autoshare.Address `json:"caller"`
}

func (DeactivateMsg) Path() string {
	return "group/deactivate"
}

func (m *DeactivateMsg) Validate() error {
	return errors.Field("Caller", m.Caller.Validate(), "")
}

// TopUpMsg buys more usages for a group. Anyone can pay.
type TopUpMsg struct {
	GroupID ID                `json:"group_id"`
	Payer   autoshare.Address `json:"payer"`
	Usages  uint32            `json:"usages"`
	Ticker  string            `json:"ticker"`
}

func (TopUpMsg) Path() string {
	return "group/topup"
}

func (m *TopUpMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Payer", m.Payer.Validate())
	if !coin.IsCC(m.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.Wrapf(errors.ErrCurrency, "%q", m.Ticker))
	}
	return errs
}

// DeleteMsg removes an inactive group. Remaining usages are forfeited.
type DeleteMsg struct {
	GroupID ID                `json:"group_id"`
	Caller  autoshare.Address `json:"caller"`
}

func (DeleteMsg) Path() string {
	return "group/delete"
}

func (m *DeleteMsg) Validate() error {
	return errors.Field("Caller", m.Caller.Validate(), "")
}
