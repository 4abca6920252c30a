package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/corral/internal/identity"
)

// Config holds runtime settings of a device.
type Config struct {
	Identity identity.Identity
	AppID    string

	// DataDir holds the content cache, the object database and issued keys.
	DataDir string

	// OriginAddr is where the Local Origin Server listens; AdvertiseAddr is
	// the host:port peers are told to use (defaults to OriginAddr).
	OriginAddr    string
	AdvertiseAddr string

	BluetoothEnabled bool
	BluetoothChannel uint8
	// BluetoothAddr is this adapter's address as published to peers.
	BluetoothAddr string

	// AssetsDir, when set, is served by the origin under /assets.
	AssetsDir string

	AuthorityURL string
	RelayBaseURL string

	ControlAddr   string
	ControlSecret string
	MetricsAddr   string

	OriginTokenValidity  time.Duration
	ControlTokenValidity time.Duration
	HTTPTimeout          time.Duration

	// KeyDir holds pre-issued signing keys. When IBSMasterKey is set keys
	// are issued in process instead (development only).
	KeyDir       string
	IBSMasterKey string

	// LegacyIV makes new uploads use the zero-IV cipher layout.
	LegacyIV bool

	LogFormat string
	LogFile   string
	Debug     bool
}

// Default returns a Config populated with development defaults.
func Default() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Identity = identity.Identity{Type: identity.TypeEmail}
	c.AppID = "corral"
	c.DataDir = "corral-data"
	c.OriginAddr = ":8311"
	c.BluetoothEnabled = true
	c.BluetoothChannel = 11
	c.AuthorityURL = "http://127.0.0.1:8080"
	c.RelayBaseURL = "http://127.0.0.1:9000/corral"
	c.ControlAddr = "127.0.0.1:8312"
	c.ControlSecret = "controlSecret"
	c.MetricsAddr = "127.0.0.1:8313"
	c.OriginTokenValidity = 10 * time.Minute
	c.ControlTokenValidity = 1 * time.Hour
	c.HTTPTimeout = 30 * time.Second
	c.LogFormat = "text"
}

// Load applies defaults and then the config file named in args, if any.
// Flags are applied later by cobra through BindFlags.
func Load(args []string) (*Config, error) {
	c := Default()
	if err := c.LoadFile(configFileFlag(args)); err != nil {
		return nil, err
	}
	return c, nil
}

// CacheDir is where fetched content lands.
func (c *Config) CacheDir() string { return filepath.Join(c.DataDir, "cache") }

// StagingDir holds encrypted uploads while they are in flight.
func (c *Config) StagingDir() string { return filepath.Join(c.DataDir, "staging") }

// DatabasePath is the SQLite object store.
func (c *Config) DatabasePath() string { return filepath.Join(c.DataDir, "corral.db") }

// KeysDir resolves KeyDir, defaulting under DataDir.
func (c *Config) KeysDir() string {
	if c.KeyDir != "" {
		return c.KeyDir
	}
	return filepath.Join(c.DataDir, "keys")
}

// Advertised is the LAN address published to peers.
func (c *Config) Advertised() string {
	if c.AdvertiseAddr != "" {
		return c.AdvertiseAddr
	}
	return c.OriginAddr
}

var ErrInvalidConfig = errors.New("invalid config")

// Validate reports settings the daemon cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Identity.Principal == "":
		return fmt.Errorf("%w: identity principal is required", ErrInvalidConfig)
	case c.Identity.Type == "":
		return fmt.Errorf("%w: identity type is required", ErrInvalidConfig)
	case c.DataDir == "":
		return fmt.Errorf("%w: data_dir is required", ErrInvalidConfig)
	case c.HTTPTimeout < 0:
		return fmt.Errorf("%w: http_timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}
