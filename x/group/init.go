package group

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
)

// GenesisGroup describes a group existing from the start of the chain. No
// payment is taken for its usages.
type GenesisGroup struct {
	ID         ID                `json:"id"`
	Name       string            `json:"name"`
	Creator    autoshare.Address `json:"creator"`
	UsageCount uint32            `json:"usage_count"`
	Members    []Member          `json:"members"`
	Inactive   bool              `json:"inactive"`
}

// Initializer fulfils the Initializer interface to load groups from the
// "group" section of the genesis file.
type Initializer struct{}

var _ autoshare.Initializer = Initializer{}

func (Initializer) FromGenesis(opts autoshare.Options, db autoshare.KVStore) error {
	var groups []GenesisGroup
	if err := opts.ReadOptions("group", &groups); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	bucket := NewGroupBucket()
	index := NewIndexBucket()
	for i, gg := range groups {
		switch err := bucket.Has(db, gg.ID[:]); {
		case err == nil:
			return errors.Wrapf(errors.ErrDuplicate, "group %d: %s", i, gg.ID)
		case !errors.ErrNotFound.Is(err):
			return err
		}
		if len(gg.Members) > 0 {
			if err := ValidateMembers(gg.Members); err != nil {
				return errors.Wrapf(err, "group %d", i)
			}
		}
		members := gg.Members
		if members == nil {
			members = []Member{}
		}
		g := &Group{
			ID:              gg.ID,
			Name:            gg.Name,
			Creator:         gg.Creator,
			UsageCount:      gg.UsageCount,
			TotalUsagesPaid: gg.UsageCount,
			Members:         members,
			Active:          !gg.Inactive,
		}
		if err := bucket.Save(db, g); err != nil {
			return errors.Wrapf(err, "group %d", i)
		}
		if err := index.Append(db, g.ID); err != nil {
			return errors.Wrapf(err, "group %d", i)
		}
	}
	return nil
}
