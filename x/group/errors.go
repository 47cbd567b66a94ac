package group

import (
	"github.com/iov-one/autoshare/errors"
)

var (
	ErrInvalidUsageCount      = errors.Register(220, "invalid usage count")
	ErrEmptyMembers           = errors.Register(221, "empty members")
	ErrDuplicateMember        = errors.Register(222, "duplicate member")
	ErrInvalidTotalPercentage = errors.Register(223, "invalid total percentage")
	ErrMemberNotFound         = errors.Register(224, "member not found")
	ErrGroupInactive          = errors.Register(225, "group inactive")
	ErrGroupAlreadyActive     = errors.Register(226, "group already active")
	ErrGroupAlreadyInactive   = errors.Register(227, "group already inactive")
	ErrGroupNotDeactivated    = errors.Register(228, "group not deactivated")
	ErrNoUsagesRemaining      = errors.Register(229, "no usages remaining")
)
