// Package config handles configuration for the ticket authority: defaults,
// then an optional JSON or YAML file, then command-line flags.
package config

import "time"

// Config holds runtime settings for the ticket authority.
//
// Fields:
//   - ListenAddr: bind address of the ticket HTTP API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps ACLs in memory.
//   - SecretKey: HMAC secret for session cookies (HS256).
//   - SessionValidity: lifetime of the session cookie handed out with a ticket.
//   - ChallengeValidity: how long an issued nonce may be answered.
//   - EpochSkew: how many epochs a signer's clock may be off.
//   - S3*: relay store credentials and location. Tickets are signed with
//     S3AccessKey/S3SecretKey.
//   - S3Provision: create the bucket at start-up when it is missing.
//   - IBSMasterKey / IBSParams: key issuer material. Only the public params
//     are needed to verify; the master key is accepted for development.
type Config struct {
	ListenAddr        string
	DatabaseDSN       string
	SecretKey         string
	SessionValidity   time.Duration
	ChallengeValidity time.Duration
	EpochSkew         int
	S3AccessKey       string
	S3SecretKey       string
	S3Bucket          string
	S3Region          string
	S3BaseEndpoint    string
	S3Provision       bool
	IBSMasterKey      string
	IBSParams         string
	LogFormat         string
	LogFile           string
	Debug             bool
}

// LoadDefaults populates Config with development defaults.
// NOTE: these values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.SessionValidity = 5 * time.Minute
	c.ChallengeValidity = 1 * time.Minute
	c.EpochSkew = 1
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"
	c.S3Bucket = "corral"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3Provision = false
	c.LogFormat = "json"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
