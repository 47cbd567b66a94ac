package admin

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/gconf"
)

const (
	confPkg = "admin"

	// DefaultUsageFee is the price of a single usage, in the smallest units
	// of the payment token, until the admin sets another one.
	DefaultUsageFee uint32 = 10
)

// Configuration is the settings record of the whole ledger.
type Configuration struct {
	Admin           autoshare.Address `json:"admin"`
	Paused          bool              `json:"paused"`
	UsageFee        uint32            `json:"usage_fee"`
	SupportedTokens []string          `json:"supported_tokens"`
}

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Admin", c.Admin.Validate())
	if c.UsageFee == 0 {
		errs = errors.AppendField(errs, "UsageFee", errors.Wrap(errors.ErrAmount, "zero"))
	}
	seen := make(map[string]struct{}, len(c.SupportedTokens))
	for _, t := range c.SupportedTokens {
		if !coin.IsCC(t) {
			errs = errors.AppendField(errs, "SupportedTokens", errors.Wrapf(errors.ErrCurrency, "%q", t))
			continue
		}
		if _, ok := seen[t]; ok {
			errs = errors.AppendField(errs, "SupportedTokens", errors.Wrapf(errors.ErrDuplicate, "%q", t))
		}
		seen[t] = struct{}{}
	}
	return errs
}

// hasToken returns the position of the ticker in the supported set or -1.
func (c *Configuration) hasToken(ticker string) int {
	for i, t := range c.SupportedTokens {
		if t == ticker {
			return i
		}
	}
	return -1
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var c Configuration
	if err := gconf.Load(db, confPkg, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// loadOrDefault returns the stored configuration or, if the admin was never
// initialized, the settings that apply until then.
func loadOrDefault(db gconf.ReadStore) (*Configuration, error) {
	c, err := loadConf(db)
	switch {
	case err == nil:
		return c, nil
	case errors.ErrNotFound.Is(err):
		return &Configuration{UsageFee: DefaultUsageFee}, nil
	default:
		return nil, err
	}
}

// Admin returns the current admin. ErrNotFound is returned if no admin was
// initialized yet.
func Admin(db gconf.ReadStore) (autoshare.Address, error) {
	c, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	return c.Admin, nil
}

// IsPaused returns true if state changes are currently blocked.
func IsPaused(db gconf.ReadStore) (bool, error) {
	c, err := loadOrDefault(db)
	if err != nil {
		return false, err
	}
	return c.Paused, nil
}

// UsageFee returns the price of a single usage.
func UsageFee(db gconf.ReadStore) (uint32, error) {
	c, err := loadOrDefault(db)
	if err != nil {
		return 0, err
	}
	return c.UsageFee, nil
}

// SupportedTokens returns the tickers accepted as payment, in the order
// they were added.
func SupportedTokens(db gconf.ReadStore) ([]string, error) {
	c, err := loadOrDefault(db)
	if err != nil {
		return nil, err
	}
	if c.SupportedTokens == nil {
		return []string{}, nil
	}
	return c.SupportedTokens, nil
}

// IsTokenSupported returns true if the ticker is accepted as payment.
func IsTokenSupported(db gconf.ReadStore, ticker string) (bool, error) {
	c, err := loadOrDefault(db)
	if err != nil {
		return false, err
	}
	return c.hasToken(ticker) >= 0, nil
}
