package group

import (
	"encoding/hex"
	"encoding/json"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/orm"
)

const maxNameLength = 128

// ID identifies a group. It is chosen by the creator.
type ID [32]byte

// ParseID decodes the hex form of an ID.
func ParseID(s string) (ID, error) {
	var id ID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, errors.Wrap(errors.ErrInput, err.Error())
	}
	if len(raw) != len(id) {
		return id, errors.Wrapf(errors.ErrInput, "id must be %d bytes, got %d", len(id), len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *ID) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Group is the canonical record of a group.
type Group struct {
	ID              ID                `json:"id"`
	Name            string            `json:"name"`
	Creator         autoshare.Address `json:"creator"`
	UsageCount      uint32            `json:"usage_count"`
	TotalUsagesPaid uint32            `json:"total_usages_paid"`
	// Members order decides who receives the rounding remainder.
	Members []Member `json:"members"`
	Active  bool     `json:"is_active"`
}

var _ orm.Model = (*Group)(nil)

// Validate checks the stored state. The percentage sum may be below 100
// after a member was removed.
func (g *Group) Validate() error {
	var errs error
	if len(g.Name) > maxNameLength {
		errs = errors.AppendField(errs, "Name", errors.Wrap(errors.ErrInput, "too long"))
	}
	errs = errors.AppendField(errs, "Creator", g.Creator.Validate())
	if g.UsageCount > g.TotalUsagesPaid {
		errs = errors.AppendField(errs, "UsageCount", errors.Wrapf(errors.ErrState,
			"%d usages left of %d paid", g.UsageCount, g.TotalUsagesPaid))
	}
	errs = validateMemberFields(errs, "Members", g.Members)
	var total uint64
	for i, m := range g.Members {
		total += uint64(m.Percentage)
		if memberIndex(g.Members[:i], m.Address) >= 0 {
			errs = errors.AppendField(errs, "Members", errors.Wrapf(ErrDuplicateMember, "%s", m.Address))
		}
	}
	if total > 100 {
		errs = errors.AppendField(errs, "Members", errors.Wrapf(ErrInvalidTotalPercentage, "sum is %d", total))
	}
	return errs
}

// HasMember returns true if the address holds a share of the group.
func (g *Group) HasMember(addr autoshare.Address) bool {
	return memberIndex(g.Members, addr) >= 0
}

// GroupBucket keeps groups under their ID.
type GroupBucket struct {
	orm.ModelBucket
}

// NewGroupBucket returns a bucket for managing groups.
func NewGroupBucket() GroupBucket {
	b := orm.NewModelBucket("group", &Group{},
		orm.WithTTL(autoshare.DefaultTTL),
	)
	return GroupBucket{ModelBucket: b}
}

// GetGroup returns the group with given ID or ErrNotFound.
func (b GroupBucket) GetGroup(db autoshare.ReadOnlyKVStore, id ID) (*Group, error) {
	var g Group
	if err := b.One(db, id[:], &g); err != nil {
		return nil, errors.Wrapf(err, "group %s", id)
	}
	return &g, nil
}

// Save stores the group under its ID.
func (b GroupBucket) Save(db autoshare.KVStore, g *Group) error {
	_, err := b.Put(db, g.ID[:], g)
	return err
}

// GroupIndex lists the IDs of all existing groups in creation order.
type GroupIndex struct {
	IDs []ID `json:"ids"`
}

var _ orm.Model = (*GroupIndex)(nil)

func (x *GroupIndex) Validate() error {
	seen := make(map[ID]struct{}, len(x.IDs))
	for _, id := range x.IDs {
		if _, ok := seen[id]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "group %s indexed twice", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

var indexKey = []byte("all")

// IndexBucket keeps the single GroupIndex record.
type IndexBucket struct {
	orm.ModelBucket
	groups GroupBucket
}

func NewIndexBucket() IndexBucket {
	b := orm.NewModelBucket("groupidx", &GroupIndex{},
		orm.WithTTL(autoshare.DefaultTTL),
	)
	return IndexBucket{ModelBucket: b, groups: NewGroupBucket()}
}

// Load returns the index, empty if no group was created yet.
func (b IndexBucket) Load(db autoshare.ReadOnlyKVStore) (*GroupIndex, error) {
	var x GroupIndex
	switch err := b.One(db, indexKey, &x); {
	case err == nil:
		return &x, nil
	case errors.ErrNotFound.Is(err):
		return &GroupIndex{}, nil
	default:
		return nil, errors.Wrap(err, "group index")
	}
}

// Append adds the ID at the end of the index. IDs of groups whose record
// expired are dropped, so an expired ID can be taken by a new group.
func (b IndexBucket) Append(db autoshare.KVStore, id ID) error {
	x, err := b.Load(db)
	if err != nil {
		return err
	}
	ids := make([]ID, 0, len(x.IDs)+1)
	for _, other := range x.IDs {
		if other == id {
			continue
		}
		switch err := b.groups.Has(db, other[:]); {
		case err == nil:
			ids = append(ids, other)
		case !errors.ErrNotFound.Is(err):
			return errors.Wrapf(err, "group %s", other)
		}
	}
	x.IDs = append(ids, id)
	_, err = b.Put(db, indexKey, x)
	return err
}

// Remove drops the ID from the index, keeping the order of the rest.
func (b IndexBucket) Remove(db autoshare.KVStore, id ID) error {
	x, err := b.Load(db)
	if err != nil {
		return err
	}
	ids := make([]ID, 0, len(x.IDs))
	for _, other := range x.IDs {
		if other != id {
			ids = append(ids, other)
		}
	}
	x.IDs = ids
	_, err = b.Put(db, indexKey, x)
	return err
}

// PaymentRecord is written every time usages are paid for.
type PaymentRecord struct {
	Payer           autoshare.Address  `json:"payer"`
	GroupID         ID                 `json:"group_id"`
	UsagesPurchased uint32             `json:"usages_purchased"`
	AmountPaid      coin.Coin          `json:"amount_paid"`
	Timestamp       autoshare.UnixTime `json:"timestamp"`
}

var _ orm.Model = (*PaymentRecord)(nil)

func (p *PaymentRecord) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Payer", p.Payer.Validate())
	if p.UsagesPurchased == 0 {
		errs = errors.AppendField(errs, "UsagesPurchased", ErrInvalidUsageCount)
	}
	errs = errors.AppendField(errs, "AmountPaid", p.AmountPaid.Validate())
	if !p.AmountPaid.IsNonNegative() {
		errs = errors.AppendField(errs, "AmountPaid", errors.Wrap(errors.ErrAmount, "negative"))
	}
	errs = errors.AppendField(errs, "Timestamp", p.Timestamp.Validate())
	return errs
}

// PaymentBucket is the append only payment log. Records are keyed by a
// sequence so index lookups return them in payment order.
type PaymentBucket struct {
	orm.ModelBucket
}

func NewPaymentBucket() PaymentBucket {
	b := orm.NewModelBucket("payment", &PaymentRecord{},
		orm.WithIndex("payer", paymentPayer, false),
		orm.WithIndex("group", paymentGroup, false),
		orm.WithTTL(autoshare.DefaultTTL),
	)
	return PaymentBucket{ModelBucket: b}
}

func paymentPayer(m orm.Model) ([]byte, error) {
	p, ok := m.(*PaymentRecord)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return p.Payer, nil
}

func paymentGroup(m orm.Model) ([]byte, error) {
	p, ok := m.(*PaymentRecord)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return p.GroupID[:], nil
}

// Record appends a payment to the log.
func (b PaymentBucket) Record(db autoshare.KVStore, p *PaymentRecord) error {
	_, err := b.Put(db, nil, p)
	return errors.Wrap(err, "record payment")
}

func (b PaymentBucket) ByPayer(db autoshare.ReadOnlyKVStore, payer autoshare.Address) ([]PaymentRecord, error) {
	res := []PaymentRecord{}
	if _, err := b.ByIndex(db, "payer", payer, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (b PaymentBucket) ByGroup(db autoshare.ReadOnlyKVStore, id ID) ([]PaymentRecord, error) {
	res := []PaymentRecord{}
	if _, err := b.ByIndex(db, "group", id[:], &res); err != nil {
		return nil, err
	}
	return res, nil
}
