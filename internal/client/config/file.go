package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/corral/internal/flagx"
	"github.com/dmitrijs2005/corral/internal/identity"
	"github.com/dmitrijs2005/corral/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of Config.
type FileConfig struct {
	Identity             identity.Identity `json:"identity" yaml:"identity"`
	AppID                string            `json:"app_id" yaml:"app_id"`
	DataDir              string            `json:"data_dir" yaml:"data_dir"`
	OriginAddr           string            `json:"origin_addr" yaml:"origin_addr"`
	AdvertiseAddr        string            `json:"advertise_addr" yaml:"advertise_addr"`
	BluetoothEnabled     bool              `json:"bluetooth_enabled" yaml:"bluetooth_enabled"`
	BluetoothChannel     uint8             `json:"bluetooth_channel" yaml:"bluetooth_channel"`
	BluetoothAddr        string            `json:"bluetooth_addr" yaml:"bluetooth_addr"`
	AssetsDir            string            `json:"assets_dir" yaml:"assets_dir"`
	AuthorityURL         string            `json:"authority_url" yaml:"authority_url"`
	RelayBaseURL         string            `json:"relay_base_url" yaml:"relay_base_url"`
	ControlAddr          string            `json:"control_addr" yaml:"control_addr"`
	ControlSecret        string            `json:"control_secret" yaml:"control_secret"`
	MetricsAddr          string            `json:"metrics_addr" yaml:"metrics_addr"`
	OriginTokenValidity  timex.Duration    `json:"origin_token_validity" yaml:"origin_token_validity"`
	ControlTokenValidity timex.Duration    `json:"control_token_validity" yaml:"control_token_validity"`
	HTTPTimeout          timex.Duration    `json:"http_timeout" yaml:"http_timeout"`
	KeyDir               string            `json:"key_dir" yaml:"key_dir"`
	IBSMasterKey         string            `json:"ibs_master_key" yaml:"ibs_master_key"`
	LegacyIV             bool              `json:"legacy_iv" yaml:"legacy_iv"`
	LogFormat            string            `json:"log_format" yaml:"log_format"`
	LogFile              string            `json:"log_file" yaml:"log_file"`
	Debug                bool              `json:"debug" yaml:"debug"`
}

func toFile(c *Config) *FileConfig {
	return &FileConfig{
		Identity:             c.Identity,
		AppID:                c.AppID,
		DataDir:              c.DataDir,
		OriginAddr:           c.OriginAddr,
		AdvertiseAddr:        c.AdvertiseAddr,
		BluetoothEnabled:     c.BluetoothEnabled,
		BluetoothChannel:     c.BluetoothChannel,
		BluetoothAddr:        c.BluetoothAddr,
		AssetsDir:            c.AssetsDir,
		AuthorityURL:         c.AuthorityURL,
		RelayBaseURL:         c.RelayBaseURL,
		ControlAddr:          c.ControlAddr,
		ControlSecret:        c.ControlSecret,
		MetricsAddr:          c.MetricsAddr,
		OriginTokenValidity:  timex.Duration{Duration: c.OriginTokenValidity},
		ControlTokenValidity: timex.Duration{Duration: c.ControlTokenValidity},
		HTTPTimeout:          timex.Duration{Duration: c.HTTPTimeout},
		KeyDir:               c.KeyDir,
		IBSMasterKey:         c.IBSMasterKey,
		LegacyIV:             c.LegacyIV,
		LogFormat:            c.LogFormat,
		LogFile:              c.LogFile,
		Debug:                c.Debug,
	}
}

func (f *FileConfig) apply(c *Config) {
	c.Identity = f.Identity
	c.AppID = f.AppID
	c.DataDir = f.DataDir
	c.OriginAddr = f.OriginAddr
	c.AdvertiseAddr = f.AdvertiseAddr
	c.BluetoothEnabled = f.BluetoothEnabled
	c.BluetoothChannel = f.BluetoothChannel
	c.BluetoothAddr = f.BluetoothAddr
	c.AssetsDir = f.AssetsDir
	c.AuthorityURL = f.AuthorityURL
	c.RelayBaseURL = f.RelayBaseURL
	c.ControlAddr = f.ControlAddr
	c.ControlSecret = f.ControlSecret
	c.MetricsAddr = f.MetricsAddr
	c.OriginTokenValidity = f.OriginTokenValidity.Duration
	c.ControlTokenValidity = f.ControlTokenValidity.Duration
	c.HTTPTimeout = f.HTTPTimeout.Duration
	c.KeyDir = f.KeyDir
	c.IBSMasterKey = f.IBSMasterKey
	c.LegacyIV = f.LegacyIV
	c.LogFormat = f.LogFormat
	c.LogFile = f.LogFile
	c.Debug = f.Debug
}

func configFileFlag(args []string) string {
	return flagx.ConfigFileFlag(args)
}

// LoadFile overlays the file at path onto c. Keys absent from the file keep
// their current values. An empty path is a no-op.
func (c *Config) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	fc := toFile(c)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, fc)
	default:
		err = json.Unmarshal(b, fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(c)
	return nil
}
