package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/iov-one/autoshare/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the daemon settings. Values are read from the config.yaml
// file in the home directory, then from the environment (a .env file in the
// home directory is loaded first) and finally from the command line flags.
type Config struct {
	// HTTPAddr is the listen address of the query API.
	HTTPAddr string `yaml:"http_addr"`
	// Index is the event index location, <driver>://<dsn>. Empty disables
	// indexing.
	Index string `yaml:"index"`
	// MinTTL is the number of ledgers a new entry is live for.
	MinTTL uint32 `yaml:"min_ttl"`
	// LogLevel is one of debug, info, error.
	LogLevel string `yaml:"log_level"`
	// Debug adds stack traces to error responses.
	Debug bool `yaml:"debug"`
	// ShutdownTimeout bounds the graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

const (
	configFile  = "config.yaml"
	genesisFile = "genesis.json"
	envFile     = ".env"
	dataDir     = "data"

	// ledgersPerDay at 5 seconds per ledger.
	ledgersPerDay = 17280
)

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig(home string) Config {
	return Config{
		HTTPAddr:        "localhost:8080",
		Index:           "sqlite://" + filepath.Join(home, dataDir, "events.db"),
		MinTTL:          30 * ledgersPerDay,
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadConfig reads the configuration of given home directory. Missing
// files are not an error.
func LoadConfig(home string) (Config, error) {
	conf := DefaultConfig(home)

	raw, err := ioutil.ReadFile(filepath.Join(home, configFile))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return conf, errors.Wrap(errors.ErrInput, err.Error())
	default:
		if err := yaml.Unmarshal(raw, &conf); err != nil {
			return conf, errors.Wrapf(errors.ErrInput, "%s: %s", configFile, err)
		}
	}

	if err := godotenv.Load(filepath.Join(home, envFile)); err != nil && !os.IsNotExist(err) {
		return conf, errors.Wrapf(errors.ErrInput, "%s: %s", envFile, err)
	}
	if err := conf.fromEnv(os.LookupEnv); err != nil {
		return conf, err
	}
	return conf, conf.Validate()
}

func (c *Config) fromEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("AUTOSHARE_HTTP_ADDR"); ok {
		c.HTTPAddr = v
	}
	if v, ok := lookup("AUTOSHARE_INDEX"); ok {
		c.Index = v
	}
	if v, ok := lookup("AUTOSHARE_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("AUTOSHARE_MIN_TTL"); ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "AUTOSHARE_MIN_TTL: %s", err)
		}
		c.MinTTL = uint32(n)
	}
	if v, ok := lookup("AUTOSHARE_DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "AUTOSHARE_DEBUG: %s", err)
		}
		c.Debug = b
	}
	return nil
}

// Validate returns an error if the daemon cannot run with these settings.
func (c Config) Validate() error {
	var errs error
	if c.HTTPAddr == "" {
		errs = errors.AppendField(errs, "HTTPAddr", errors.ErrEmpty)
	}
	if c.MinTTL == 0 {
		errs = errors.AppendField(errs, "MinTTL", errors.Wrap(errors.ErrInput, "zero"))
	}
	switch c.LogLevel {
	case "debug", "info", "error":
	default:
		errs = errors.AppendField(errs, "LogLevel", errors.Wrapf(errors.ErrInput, "unknown level %q", c.LogLevel))
	}
	return errs
}

// Save writes the configuration file. An existing file is never
// overwritten.
func (c Config) Save(home string) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "serialize config")
	}
	return writeNew(filepath.Join(home, configFile), raw)
}

func writeNew(path string, raw []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	defer f.Close()
	_, err = f.Write(raw)
	return errors.Wrap(err, "write file")
}
