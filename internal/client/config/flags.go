package config

import (
	"github.com/spf13/pflag"
)

// BindFlags registers the device flags on fs with the current values of c as
// defaults, so parsing fs overrides only what the user passed.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "path to config file (JSON or YAML)")

	fs.StringVarP(&c.Identity.Type, "identity-type", "t", c.Identity.Type, "identity type (email, phone)")
	fs.StringVarP(&c.Identity.Principal, "identity", "i", c.Identity.Principal, "identity principal")
	fs.StringVar(&c.AppID, "app", c.AppID, "application id")
	fs.StringVarP(&c.DataDir, "data-dir", "d", c.DataDir, "data directory")
	fs.StringVarP(&c.OriginAddr, "origin", "a", c.OriginAddr, "local origin listen address")
	fs.StringVar(&c.AdvertiseAddr, "advertise", c.AdvertiseAddr, "LAN address published to peers")
	fs.BoolVar(&c.BluetoothEnabled, "bluetooth", c.BluetoothEnabled, "enable the Bluetooth channel")
	fs.Uint8Var(&c.BluetoothChannel, "bt-channel", c.BluetoothChannel, "RFCOMM channel")
	fs.StringVar(&c.BluetoothAddr, "bt-addr", c.BluetoothAddr, "local Bluetooth address published to peers")
	fs.StringVar(&c.AssetsDir, "assets", c.AssetsDir, "static assets served by the origin")
	fs.StringVar(&c.AuthorityURL, "authority", c.AuthorityURL, "ticket authority base URL")
	fs.StringVar(&c.RelayBaseURL, "relay", c.RelayBaseURL, "relay store base URL")
	fs.StringVar(&c.ControlAddr, "control", c.ControlAddr, "control API address")
	fs.StringVar(&c.ControlSecret, "control-secret", c.ControlSecret, "control API token secret")
	fs.StringVar(&c.MetricsAddr, "metrics", c.MetricsAddr, "metrics and events listen address")
	fs.DurationVar(&c.HTTPTimeout, "http-timeout", c.HTTPTimeout, "connect and idle timeout of outbound HTTP transfers")
	fs.StringVar(&c.KeyDir, "key-dir", c.KeyDir, "directory of issued signing keys")
	fs.BoolVar(&c.LegacyIV, "legacy-iv", c.LegacyIV, "encrypt uploads with the zero-IV layout")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: text, json, zap")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "log file (zap format only)")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "debug logging")
}
