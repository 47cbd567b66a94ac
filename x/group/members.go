package group

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
)

// Member is entitled to a percentage of every distribution of a group.
type Member struct {
	Address    autoshare.Address `json:"address"`
	Percentage uint32            `json:"percentage"`
}

// Validate checks the member address. The percentage belongs to the split
// and is checked by ValidateMembers.
func (m Member) Validate() error {
	return errors.Field("Address", m.Address.Validate(), "")
}

// ValidateMembers ensures that the list is not empty, that no address is
// listed twice and that the percentages sum up to exactly 100. A single
// share above 100 is reported the same way as a wrong sum.
func ValidateMembers(members []Member) error {
	if len(members) == 0 {
		return ErrEmptyMembers
	}
	var total uint64
	for i, m := range members {
		if m.Percentage > 100 {
			return errors.Wrapf(ErrInvalidTotalPercentage, "%s holds %d", m.Address, m.Percentage)
		}
		total += uint64(m.Percentage)
		for _, prev := range members[:i] {
			if prev.Address.Equals(m.Address) {
				return errors.Wrapf(ErrDuplicateMember, "%s", m.Address)
			}
		}
	}
	if total != 100 {
		return errors.Wrapf(ErrInvalidTotalPercentage, "sum is %d", total)
	}
	return nil
}

// ValidatePayout checks a stored split before it is paid out. A member
// removal leaves the percentages below 100 until the split is replaced, so
// only a sum above 100 is rejected. The last member receives whatever the
// others did not.
func ValidatePayout(members []Member) error {
	if len(members) == 0 {
		return ErrEmptyMembers
	}
	var total uint64
	for i, m := range members {
		if m.Percentage > 100 {
			return errors.Wrapf(ErrInvalidTotalPercentage, "%s holds %d", m.Address, m.Percentage)
		}
		total += uint64(m.Percentage)
		for _, prev := range members[:i] {
			if prev.Address.Equals(m.Address) {
				return errors.Wrapf(ErrDuplicateMember, "%s", m.Address)
			}
		}
	}
	if total > 100 {
		return errors.Wrapf(ErrInvalidTotalPercentage, "sum is %d", total)
	}
	return nil
}

func validateMemberFields(errs error, field string, members []Member) error {
	for i, m := range members {
		if err := m.Validate(); err != nil {
			errs = errors.AppendField(errs, field, errors.Wrapf(err, "member %d", i))
		}
	}
	return errs
}

func memberIndex(members []Member, addr autoshare.Address) int {
	for i, m := range members {
		if m.Address.Equals(addr) {
			return i
		}
	}
	return -1
}
