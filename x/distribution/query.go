package distribution

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/x/group"
)

// ByGroup returns the distributions of a group, oldest first. Records of
// deleted groups stay available.
func ByGroup(db autoshare.ReadOnlyKVStore, id group.ID) ([]DistributionRecord, error) {
	return NewRecordBucket().ByGroup(db, id)
}

// ByMember returns every distribution that paid addr, oldest first.
func ByMember(db autoshare.ReadOnlyKVStore, addr autoshare.Address) ([]DistributionRecord, error) {
	return NewRecordBucket().ByMember(db, addr)
}
