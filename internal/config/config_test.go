package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/abgdnv/tillpos/pkg/config/configloader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TILLPOS_STORAGE_DATADIR", filepath.Join(dir, "data"))

	cfg, err := configloader.Load[*Config]("tillpos",
		configloader.WithConfigFile(filepath.Join(dir, "config.yaml")),
		configloader.WithEnvFile(filepath.Join(dir, ".env")),
		configloader.WithDefaults(Defaults()),
	)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPServer.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.Timeout.Write)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.Storage.DataDir)
	assert.Equal(t, 5*time.Second, cfg.Storage.LockTimeout)
	assert.Equal(t, 15*time.Second, cfg.Shutdown.Timeout)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Contains(t, cfg.String(), "--- Storage ---")
}

func Test_Validate_PropagatesBlockErrors(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
