package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.ListenAddr)
	assert.Equal(t, "", c.DatabaseDSN)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 5*time.Minute, c.SessionValidity)
	assert.Equal(t, 1*time.Minute, c.ChallengeValidity)
	assert.Equal(t, 1, c.EpochSkew)
	assert.Equal(t, "admin", c.S3AccessKey)
	assert.Equal(t, "secretpassword", c.S3SecretKey)
	assert.Equal(t, "corral", c.S3Bucket)
	assert.Equal(t, "us-east-1", c.S3Region)
	assert.Equal(t, "http://127.0.0.1:9000/", c.S3BaseEndpoint)
	assert.Equal(t, "json", c.LogFormat)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *c)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTemp(t, "cfg.json", `{"listen_addr": ":9000", "s3_bucket": "from-file"}`)
	os.Args = []string{"testbin", "-c", path, "-b", "from-flag"}

	c := LoadConfig()
	assert.Equal(t, ":9000", c.ListenAddr)
	assert.Equal(t, "from-flag", c.S3Bucket)
	assert.Equal(t, 5*time.Minute, c.SessionValidity)
}
