package autoshare

import (
	"encoding/json"
	"time"

	"github.com/iov-one/autoshare/errors"
)

// UnixTime is a point in time with seconds precision. Payment and
// distribution records are stamped with the block time in this form.
type UnixTime int64

// AsUnixTime drops the sub-second part of t.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0)
}

func (t UnixTime) String() string {
	return t.Time().UTC().Format(time.RFC3339)
}

// UnmarshalJSON accepts seconds since epoch. Timestamps before the epoch are
// rejected.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var unix int64
	if err := json.Unmarshal(raw, &unix); err != nil {
		return errors.Wrap(errors.ErrInput, "timestamp must be a number of seconds")
	}
	*t = UnixTime(unix)
	return t.Validate()
}

func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrInput, "time before epoch")
	}
	return nil
}

// BlockUnixTime returns the block time of the call. It fails when the
// context carries none.
func BlockUnixTime(ctx Context) (UnixTime, error) {
	t, err := BlockTime(ctx)
	if err != nil {
		return 0, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return AsUnixTime(t), nil
}
