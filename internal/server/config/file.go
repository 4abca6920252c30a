package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/corral/internal/flagx"
	"github.com/dmitrijs2005/corral/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of Config. Durations use timex.Duration so
// that both "1m" and integer nanoseconds are accepted.
type FileConfig struct {
	ListenAddr        string         `json:"listen_addr" yaml:"listen_addr"`
	DatabaseDSN       string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey         string         `json:"secret_key" yaml:"secret_key"`
	SessionValidity   timex.Duration `json:"session_validity" yaml:"session_validity"`
	ChallengeValidity timex.Duration `json:"challenge_validity" yaml:"challenge_validity"`
	EpochSkew         int            `json:"epoch_skew" yaml:"epoch_skew"`
	S3AccessKey       string         `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey       string         `json:"s3_secret_key" yaml:"s3_secret_key"`
	S3Bucket          string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region          string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3Provision       bool           `json:"s3_provision" yaml:"s3_provision"`
	IBSMasterKey      string         `json:"ibs_master_key" yaml:"ibs_master_key"`
	IBSParams         string         `json:"ibs_params" yaml:"ibs_params"`
	LogFormat         string         `json:"log_format" yaml:"log_format"`
	LogFile           string         `json:"log_file" yaml:"log_file"`
	Debug             bool           `json:"debug" yaml:"debug"`
}

func toFile(c *Config) *FileConfig {
	return &FileConfig{
		ListenAddr:        c.ListenAddr,
		DatabaseDSN:       c.DatabaseDSN,
		SecretKey:         c.SecretKey,
		SessionValidity:   timex.Duration{Duration: c.SessionValidity},
		ChallengeValidity: timex.Duration{Duration: c.ChallengeValidity},
		EpochSkew:         c.EpochSkew,
		S3AccessKey:       c.S3AccessKey,
		S3SecretKey:       c.S3SecretKey,
		S3Bucket:          c.S3Bucket,
		S3Region:          c.S3Region,
		S3BaseEndpoint:    c.S3BaseEndpoint,
		S3Provision:       c.S3Provision,
		IBSMasterKey:      c.IBSMasterKey,
		IBSParams:         c.IBSParams,
		LogFormat:         c.LogFormat,
		LogFile:           c.LogFile,
		Debug:             c.Debug,
	}
}

func (f *FileConfig) apply(c *Config) {
	c.ListenAddr = f.ListenAddr
	c.DatabaseDSN = f.DatabaseDSN
	c.SecretKey = f.SecretKey
	c.SessionValidity = f.SessionValidity.Duration
	c.ChallengeValidity = f.ChallengeValidity.Duration
	c.EpochSkew = f.EpochSkew
	c.S3AccessKey = f.S3AccessKey
	c.S3SecretKey = f.S3SecretKey
	c.S3Bucket = f.S3Bucket
	c.S3Region = f.S3Region
	c.S3BaseEndpoint = f.S3BaseEndpoint
	c.S3Provision = f.S3Provision
	c.IBSMasterKey = f.IBSMasterKey
	c.IBSParams = f.IBSParams
	c.LogFormat = f.LogFormat
	c.LogFile = f.LogFile
	c.Debug = f.Debug
}

// parseFile overlays the file named by -c/-config onto config. Keys missing
// from the file keep their current values. Files ending in .yaml or .yml are
// read as YAML, anything else as JSON. An unreadable or invalid file panics.
func parseFile(config *Config) {
	path := flagx.ConfigFile()
	if path == "" {
		return
	}

	b, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := toFile(config)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, fc)
	default:
		err = json.Unmarshal(b, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}
