package autoshare

// LedgersPerDay is the number of ledgers closed in a day when a ledger
// closes every 5 seconds.
const LedgersPerDay = 17280

// Renewer is implemented by stores that keep entries alive for a limited
// number of ledgers. Renew extends the life of key to extendTo ledgers from
// now if it has less than threshold ledgers left. Renewing a missing key is
// a no-op.
type Renewer interface {
	Renew(key []byte, threshold, extendTo uint32) error
}

// TTLPolicy declares how long records are kept alive.
type TTLPolicy struct {
	// Threshold is the remaining life, in ledgers, below which a record
	// is renewed.
	Threshold uint32
	// ExtendTo is the life, in ledgers, a renewed record gets.
	ExtendTo uint32
}

// DefaultTTL renews records that have less than a week to live so that they
// live for another thirty days.
var DefaultTTL = TTLPolicy{
	Threshold: 7 * LedgersPerDay,
	ExtendTo:  30 * LedgersPerDay,
}

// Renew extends the life of a record stored under given key when the
// store supports expiration. Stores without expiration keep records forever
// and this is a no-op for them.
func Renew(db ReadOnlyKVStore, key []byte, p TTLPolicy) error {
	r, ok := db.(Renewer)
	if !ok {
		return nil
	}
	return r.Renew(key, p.Threshold, p.ExtendTo)
}
