package group

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
)

// Get returns the group with given ID or ErrNotFound.
func Get(db autoshare.ReadOnlyKVStore, id ID) (*Group, error) {
	return NewGroupBucket().GetGroup(db, id)
}

// All returns all groups in creation order.
func All(db autoshare.ReadOnlyKVStore) ([]*Group, error) {
	index, err := NewIndexBucket().Load(db)
	if err != nil {
		return nil, err
	}
	groups := NewGroupBucket()
	res := make([]*Group, 0, len(index.IDs))
	for _, id := range index.IDs {
		g, err := groups.GetGroup(db, id)
		switch {
		case err == nil:
			res = append(res, g)
		case errors.ErrNotFound.Is(err):
			// Expired records are skipped.
		default:
			return nil, err
		}
	}
	return res, nil
}

// ByCreator returns the groups created by given address, in creation order.
func ByCreator(db autoshare.ReadOnlyKVStore, creator autoshare.Address) ([]*Group, error) {
	all, err := All(db)
	if err != nil {
		return nil, err
	}
	res := make([]*Group, 0, len(all))
	for _, g := range all {
		if g.Creator.Equals(creator) {
			res = append(res, g)
		}
	}
	return res, nil
}

func IsMember(db autoshare.ReadOnlyKVStore, id ID, addr autoshare.Address) (bool, error) {
	g, err := Get(db, id)
	if err != nil {
		return false, err
	}
	return g.HasMember(addr), nil
}

func Members(db autoshare.ReadOnlyKVStore, id ID) ([]Member, error) {
	g, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if g.Members == nil {
		return []Member{}, nil
	}
	return g.Members, nil
}

func IsActive(db autoshare.ReadOnlyKVStore, id ID) (bool, error) {
	g, err := Get(db, id)
	if err != nil {
		return false, err
	}
	return g.Active, nil
}

func RemainingUsages(db autoshare.ReadOnlyKVStore, id ID) (uint32, error) {
	g, err := Get(db, id)
	if err != nil {
		return 0, err
	}
	return g.UsageCount, nil
}

func TotalUsagesPaid(db autoshare.ReadOnlyKVStore, id ID) (uint32, error) {
	g, err := Get(db, id)
	if err != nil {
		return 0, err
	}
	return g.TotalUsagesPaid, nil
}

// PaymentsByUser returns all payments made by given address, oldest first.
func PaymentsByUser(db autoshare.ReadOnlyKVStore, payer autoshare.Address) ([]PaymentRecord, error) {
	return NewPaymentBucket().ByPayer(db, payer)
}

// PaymentsByGroup returns all payments made for given group, oldest first.
// Payments of deleted groups are kept.
func PaymentsByGroup(db autoshare.ReadOnlyKVStore, id ID) ([]PaymentRecord, error) {
	return NewPaymentBucket().ByGroup(db, id)
}
