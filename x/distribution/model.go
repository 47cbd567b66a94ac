package distribution

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/orm"
	"github.com/iov-one/autoshare/x/group"
)

// DistributionRecord is written once for every distribution.
type DistributionRecord struct {
	GroupID     group.ID          `json:"group_id"`
	Sender      autoshare.Address `json:"sender"`
	TotalAmount coin.Coin         `json:"total_amount"`
	// MemberAmounts lists only the members that received a non zero share.
	MemberAmounts []MemberAmount     `json:"member_amounts"`
	Timestamp     autoshare.UnixTime `json:"timestamp"`
	// DistributionNumber counts the distributions of the group, starting
	// at zero.
	DistributionNumber uint32 `json:"distribution_number"`
}

var _ orm.Model = (*DistributionRecord)(nil)

func (r *DistributionRecord) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Sender", r.Sender.Validate())
	errs = errors.AppendField(errs, "TotalAmount", r.TotalAmount.Validate())
	if !r.TotalAmount.IsPositive() {
		errs = errors.AppendField(errs, "TotalAmount", errors.Wrap(errors.ErrAmount, "must be positive"))
	}
	var sum int64
	for i, m := range r.MemberAmounts {
		errs = errors.AppendField(errs, "MemberAmounts", errors.Wrapf(m.Address.Validate(), "member %d", i))
		if m.Amount <= 0 {
			errs = errors.AppendField(errs, "MemberAmounts", errors.Wrapf(errors.ErrAmount, "member %d", i))
		}
		sum += m.Amount
	}
	if sum > r.TotalAmount.Amount {
		errs = errors.AppendField(errs, "MemberAmounts", errors.Wrapf(errors.ErrAmount, "%d paid out of %d", sum, r.TotalAmount.Amount))
	}
	errs = errors.AppendField(errs, "Timestamp", r.Timestamp.Validate())
	return errs
}

// RecordBucket is the append only distribution log.
type RecordBucket struct {
	orm.ModelBucket
}

func NewRecordBucket() RecordBucket {
	b := orm.NewModelBucket("distrib", &DistributionRecord{},
		orm.WithIndex("group", recordGroup, false),
		orm.WithMultiKeyIndex("member", recordMembers, false),
		orm.WithTTL(autoshare.DefaultTTL),
	)
	return RecordBucket{ModelBucket: b}
}

func recordGroup(m orm.Model) ([]byte, error) {
	r, ok := m.(*DistributionRecord)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return r.GroupID[:], nil
}

func recordMembers(m orm.Model) ([][]byte, error) {
	r, ok := m.(*DistributionRecord)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	keys := make([][]byte, len(r.MemberAmounts))
	for i, ma := range r.MemberAmounts {
		keys[i] = ma.Address
	}
	return keys, nil
}

// Record appends a distribution to the log.
func (b RecordBucket) Record(db autoshare.KVStore, r *DistributionRecord) error {
	_, err := b.Put(db, nil, r)
	return errors.Wrap(err, "record distribution")
}

func (b RecordBucket) ByGroup(db autoshare.ReadOnlyKVStore, id group.ID) ([]DistributionRecord, error) {
	res := []DistributionRecord{}
	if _, err := b.ByIndex(db, "group", id[:], &res); err != nil {
		return nil, err
	}
	return res, nil
}

// ByMember returns the distributions that paid given address.
func (b RecordBucket) ByMember(db autoshare.ReadOnlyKVStore, addr autoshare.Address) ([]DistributionRecord, error) {
	res := []DistributionRecord{}
	if _, err := b.ByIndex(db, "member", addr, &res); err != nil {
		return nil, err
	}
	return res, nil
}
