package group

import (
	"testing"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/autosharetest"
	"github.com/iov-one/autoshare/errors"
)

func TestValidateMembers(t *testing.T) {
	a := autosharetest.RandomAddr(t)
	b := autosharetest.RandomAddr(t)
	c := autosharetest.RandomAddr(t)

	cases := map[string]struct {
		members []Member
		wantErr *errors.Error
	}{
		"single member": {
			members: []Member{{Address: a, Percentage: 100}},
		},
		"three members": {
			members: []Member{{Address: a, Percentage: 50}, {Address: b, Percentage: 30}, {Address: c, Percentage: 20}},
		},
		"zero share is allowed": {
			members: []Member{{Address: a, Percentage: 100}, {Address: b, Percentage: 0}},
		},
		"empty": {
			members: nil,
			wantErr: ErrEmptyMembers,
		},
		"below 100": {
			members: []Member{{Address: a, Percentage: 60}, {Address: b, Percentage: 39}},
			wantErr: ErrInvalidTotalPercentage,
		},
		"above 100": {
			members: []Member{{Address: a, Percentage: 60}, {Address: b, Percentage: 41}},
			wantErr: ErrInvalidTotalPercentage,
		},
		"single share above 100": {
			members: []Member{{Address: a, Percentage: 150}},
			wantErr: ErrInvalidTotalPercentage,
		},
		"sum does not wrap": {
			members: []Member{{Address: a, Percentage: 1<<32 - 1}, {Address: b, Percentage: 101}},
			wantErr: ErrInvalidTotalPercentage,
		},
		"duplicate": {
			members: []Member{{Address: a, Percentage: 50}, {Address: a, Percentage: 50}},
			wantErr: ErrDuplicateMember,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := ValidateMembers(tc.members); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestMemberValidate(t *testing.T) {
	cases := map[string]struct {
		member  Member
		wantErr *errors.Error
	}{
		"valid":                      {member: Member{Address: autosharetest.RandomAddr(t), Percentage: 10}},
		"bad address":                {member: Member{Address: autoshare.Address("x"), Percentage: 10}, wantErr: errors.ErrInput},
		"share is left to the split": {member: Member{Address: autosharetest.RandomAddr(t), Percentage: 101}},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.member.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestValidatePayout(t *testing.T) {
	a := autosharetest.RandomAddr(t)
	b := autosharetest.RandomAddr(t)

	cases := map[string]struct {
		members []Member
		wantErr *errors.Error
	}{
		"complete split":         {members: []Member{{Address: a, Percentage: 60}, {Address: b, Percentage: 40}}},
		"after member removal":   {members: []Member{{Address: a, Percentage: 60}}},
		"empty":                  {members: []Member{}, wantErr: ErrEmptyMembers},
		"single share above 100": {members: []Member{{Address: a, Percentage: 101}}, wantErr: ErrInvalidTotalPercentage},
		"above 100":              {members: []Member{{Address: a, Percentage: 70}, {Address: b, Percentage: 40}}, wantErr: ErrInvalidTotalPercentage},
		"duplicate":              {members: []Member{{Address: a, Percentage: 10}, {Address: a, Percentage: 10}}, wantErr: ErrDuplicateMember},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := ValidatePayout(tc.members); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}
