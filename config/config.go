// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gitlab.com/accumulatenetwork/vestingd/internal/logging"
	"gitlab.com/accumulatenetwork/vestingd/pkg/errors"
)

const (
	ConfigFile = "vestingd.toml"
	EnvFile    = ".env"
	EnvPrefix  = "VESTINGD"
)

const (
	LogFormatPlain = "plain"
	LogFormatText  = "text"
	LogFormatJSON  = "json"
)

// LogLevel defines the default and per-module log level.
type LogLevel struct {
	Default string
	Modules [][2]string
}

// Parse parses a string such as "error;ledger=info" into a LogLevel.
func (l LogLevel) Parse(s string) LogLevel {
	for _, s := range strings.Split(s, ";") {
		s := strings.SplitN(s, "=", 2)
		if len(s) == 1 {
			l.Default = s[0]
		} else {
			l.Modules = append(l.Modules, *(*[2]string)(s))
		}
	}
	return l
}

// SetDefault sets the default log level.
func (l LogLevel) SetDefault(level string) LogLevel {
	l.Default = level
	return l
}

// SetModule sets the log level for a module.
func (l LogLevel) SetModule(module, level string) LogLevel {
	l.Modules = append(l.Modules, [2]string{module, level})
	return l
}

// String converts the log level into a string, for example
// "error;ledger=debug".
func (l LogLevel) String() string {
	s := new(strings.Builder)
	s.WriteString(l.Default)
	for _, m := range l.Modules {
		fmt.Fprintf(s, ";%s=%s", m[0], m[1]) //nolint:rangevarref
	}
	return s.String()
}

var DefaultLogLevels = LogLevel{}.
	SetDefault("info").
	SetModule("contract", "warn").
	// SetModule("ledger", "debug").
	// SetModule("identity", "debug").
	SetModule("web", "info").
	String()

type Config struct {
	RPC       RPC       `toml:"rpc" mapstructure:"rpc"`
	Contracts Contracts `toml:"contracts" mapstructure:"contracts"`
	Search    Search    `toml:"search" mapstructure:"search"`
	Ledger    Ledger    `toml:"ledger" mapstructure:"ledger"`
	Web       Web       `toml:"web" mapstructure:"web"`
	Log       Log       `toml:"log" mapstructure:"log"`
}

// RPC is the Ethereum node the contracts are read from. Live events require a
// websocket or IPC endpoint.
type RPC struct {
	URL string `toml:"url" mapstructure:"url" validate:"required,url"`
}

type Contracts struct {
	TokenManager string `toml:"token-manager" mapstructure:"token-manager" validate:"required,eth_addr"`
	Token        string `toml:"token" mapstructure:"token" validate:"required,eth_addr"`
	Vesting      string `toml:"vesting" mapstructure:"vesting" validate:"required,eth_addr"`
}

type Search struct {
	URL       string        `toml:"url" mapstructure:"url" validate:"required,url"`
	Network   string        `toml:"network" mapstructure:"network" validate:"required"`
	Timeout   time.Duration `toml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	CacheSize int           `toml:"cache-size" mapstructure:"cache-size" validate:"gte=0"`
}

type Ledger struct {
	// Concurrency is the number of vestings read in parallel.
	Concurrency int    `toml:"concurrency" mapstructure:"concurrency" validate:"gte=1,lte=64"`
	TimeZone    string `toml:"time-zone" mapstructure:"time-zone"`
	Denom       string `toml:"denom" mapstructure:"denom"`
}

type Web struct {
	ListenAddress     string        `toml:"listen-address" mapstructure:"listen-address" validate:"required,hostname_port"`
	AllowedOrigins    []string      `toml:"allowed-origins" mapstructure:"allowed-origins"`
	EnableMetrics     bool          `toml:"enable-metrics" mapstructure:"enable-metrics"`
	ReadHeaderTimeout time.Duration `toml:"read-header-timeout" mapstructure:"read-header-timeout" validate:"gte=0"`
	ConnectionLimit   int           `toml:"connection-limit" mapstructure:"connection-limit" validate:"gte=0"`
}

type Log struct {
	Level  string `toml:"level" mapstructure:"level" validate:"required"`
	Format string `toml:"format" mapstructure:"format" validate:"oneof=plain text json"`
}

func Default() *Config {
	c := new(Config)
	c.RPC.URL = "ws://localhost:8546"
	c.Contracts.TokenManager = "0x0000000000000000000000000000000000000001"
	c.Contracts.Token = "0x0000000000000000000000000000000000000002"
	c.Contracts.Vesting = "0x0000000000000000000000000000000000000003"
	c.Search.URL = "https://lcd.cyber.cybernode.ai"
	c.Search.Network = "euler"
	c.Search.Timeout = 5 * time.Second
	c.Search.CacheSize = 256
	c.Ledger.Concurrency = 8
	c.Ledger.TimeZone = "UTC"
	c.Ledger.Denom = "EUL"
	c.Web.ListenAddress = "127.0.0.1:8080"
	c.Web.AllowedOrigins = []string{"*"}
	c.Web.EnableMetrics = true
	c.Web.ReadHeaderTimeout = 10 * time.Second
	c.Web.ConnectionLimit = 500
	c.Log.Level = DefaultLogLevels
	c.Log.Format = LogFormatPlain
	return c
}

// Location returns the time zone start times are displayed in.
func (c *Config) Location() (*time.Location, error) {
	if c.Ledger.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Ledger.TimeZone)
	if err != nil {
		return nil, errors.BadRequest.WithFormat("invalid time zone %q: %w", c.Ledger.TimeZone, err)
	}
	return loc, nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err != nil {
		return errors.BadRequest.WithFormat("invalid config: %w", err)
	}
	_, err = logging.ParseModuleLevels(c.Log.Level)
	if err != nil {
		return errors.BadRequest.WithFormat("invalid log level: %w", err)
	}
	_, err = c.Location()
	return err
}

// FlagKeys maps command-line flags to the config keys they override.
var FlagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"listen":     "web.listen-address",
}

// Load reads the config from dir. A missing config file is not an error.
// Environment variables such as VESTINGD_SEARCH_NETWORK override the file, and
// are also read from a .env file in dir.
func Load(dir string) (*Config, error) {
	return LoadWithFlags(dir, nil)
}

// LoadWithFlags is Load, plus any flag named in FlagKeys that was set on the
// command line overrides everything else.
func LoadWithFlags(dir string, flags *pflag.FlagSet) (*Config, error) {
	err := godotenv.Load(filepath.Join(dir, EnvFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.BadRequest.WithFormat("load %s: %w", EnvFile, err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, ConfigFile))
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if flags != nil {
		for name, key := range FlagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			err = v.BindPFlag(key, f)
			if err != nil {
				return nil, errors.InternalError.WithFormat("bind flag %s: %w", name, err)
			}
		}
	}

	err = v.ReadInConfig()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.BadRequest.WithFormat("read: %w", err)
	}

	c := new(Config)
	err = v.Unmarshal(c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, errors.EncodingError.WithFormat("unmarshal: %w", err)
	}

	return c, c.Validate()
}

// Store writes the config to dir.
func Store(dir string, c *Config) error {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}

	f, err := os.Create(filepath.Join(dir, ConfigFile))
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}
	defer f.Close()

	err = toml.NewEncoder(f).Order(toml.OrderPreserve).Encode(c)
	if err != nil {
		return errors.EncodingError.WithFormat("encode: %w", err)
	}
	return nil
}

// setDefaults registers every key so that environment overrides apply even
// when the file omits the key.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("rpc.url", c.RPC.URL)
	v.SetDefault("contracts.token-manager", c.Contracts.TokenManager)
	v.SetDefault("contracts.token", c.Contracts.Token)
	v.SetDefault("contracts.vesting", c.Contracts.Vesting)
	v.SetDefault("search.url", c.Search.URL)
	v.SetDefault("search.network", c.Search.Network)
	v.SetDefault("search.timeout", c.Search.Timeout)
	v.SetDefault("search.cache-size", c.Search.CacheSize)
	v.SetDefault("ledger.concurrency", c.Ledger.Concurrency)
	v.SetDefault("ledger.time-zone", c.Ledger.TimeZone)
	v.SetDefault("ledger.denom", c.Ledger.Denom)
	v.SetDefault("web.listen-address", c.Web.ListenAddress)
	v.SetDefault("web.allowed-origins", c.Web.AllowedOrigins)
	v.SetDefault("web.enable-metrics", c.Web.EnableMetrics)
	v.SetDefault("web.read-header-timeout", c.Web.ReadHeaderTimeout)
	v.SetDefault("web.connection-limit", c.Web.ConnectionLimit)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
}
