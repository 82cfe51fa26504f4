// Package config defines the tillpos service configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/tillpos/pkg/config"
	"github.com/abgdnv/tillpos/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig     `koanf:"server"`
	Storage    config.StorageConfig  `koanf:"storage"`
	Log        config.LogConfig      `koanf:"log"`
	PProf      config.PProfConfig    `koanf:"pprof"`
	Metrics    config.MetricsConfig  `koanf:"metrics"`
	Shutdown   config.ShutdownConfig `koanf:"shutdown"`
}

// Defaults are applied before the config file and the environment.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":               8080,
		"server.maxHeaderBytes":     1 << 20,
		"server.timeout.read":       "5s",
		"server.timeout.write":      "10s",
		"server.timeout.idle":       "60s",
		"server.timeout.readHeader": "2s",
		"storage.datadir":           "./data",
		"storage.locktimeout":       "5s",
		"storage.lockretry":         "10ms",
		"log.level":                 "info",
		"log.format":                "json",
		"metrics.enabled":           true,
		"metrics.path":              "/metrics",
		"shutdown.timeout":          "15s",
	}
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Storage.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Metrics.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []interface{ Validate() error }{
		&c.HTTPServer, &c.Storage, &c.Log, &c.PProf, &c.Metrics, &c.Shutdown,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return nil
}
