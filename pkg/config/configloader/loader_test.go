package configloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Storage struct {
		DataDir     string        `koanf:"datadir"`
		LockTimeout time.Duration `koanf:"locktimeout"`
	} `koanf:"storage"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func (c *testConfig) Validate() error {
	if c.Storage.DataDir == "" {
		return errors.New("datadir is required")
	}
	return nil
}

func Test_Load_Precedence(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(yamlPath, []byte("storage:\n  datadir: /from/yaml\n  locktimeout: 2s\nlog:\n  level: info\n"), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("TILLPOS_LOG_LEVEL=warn\nOTHER_LOG_LEVEL=error\n"), 0o644))
	t.Setenv("TILLPOS_STORAGE_DATADIR", "/from/env")

	cfg, err := Load[*testConfig]("tillpos",
		WithConfigFile(yamlPath),
		WithEnvFile(envPath),
		WithDefaults(map[string]any{"log.level": "debug", "storage.locktimeout": "1s"}),
	)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Storage.DataDir)
	assert.Equal(t, 2*time.Second, cfg.Storage.LockTimeout)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func Test_Load_DefaultsOnly(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load[*testConfig]("tillpos",
		WithConfigFile(filepath.Join(dir, "missing.yaml")),
		WithEnvFile(filepath.Join(dir, "missing.env")),
		WithDefaults(map[string]any{"storage.datadir": "./data"}),
	)
	require.NoError(t, err)
	assert.Equal(t, "./data", cfg.Storage.DataDir)
}

func Test_Load_ValidationError(t *testing.T) {
	dir := t.TempDir()
	_, err := Load[*testConfig]("tillpos",
		WithConfigFile(filepath.Join(dir, "missing.yaml")),
		WithEnvFile(filepath.Join(dir, "missing.env")),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}
