package distribution

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/x/group"
)

// MemberAmount is what a single member received.
type MemberAmount struct {
	Address autoshare.Address `json:"address"`
	Amount  int64             `json:"amount"`
}

// Split divides a positive amount between members in list order. The last
// member takes the remainder so the shares always sum up to amount as long
// as the percentages do not exceed 100. Zero shares are not returned.
func Split(amount int64, members []group.Member) []MemberAmount {
	res := make([]MemberAmount, 0, len(members))
	var paid int64
	for i, m := range members {
		share := amount - paid
		if i < len(members)-1 {
			share = percentOf(amount, m.Percentage)
		}
		if share <= 0 {
			continue
		}
		paid += share
		res = append(res, MemberAmount{Address: m.Address, Amount: share})
	}
	return res
}

// percentOf returns floor(amount * p / 100) without the intermediate
// product overflowing. p must not exceed 100.
func percentOf(amount int64, p uint32) int64 {
	pp := int64(p)
	return amount/100*pp + amount%100*pp/100
}
