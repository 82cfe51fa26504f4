package config

import (
	"fmt"
	"strings"
	"time"
)

// StorageConfig configures the file-backed document store.
type StorageConfig struct {
	DataDir     string        `koanf:"datadir"`
	LockTimeout time.Duration `koanf:"locktimeout"`
	LockRetry   time.Duration `koanf:"lockretry"`
	Timezone    string        `koanf:"timezone"`
}

const defaultLockRetry = 10 * time.Millisecond

// String returns a string representation of the StorageConfig.
func (c *StorageConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  datadir: %s\n", c.DataDir))
	b.WriteString(fmt.Sprintf("  locktimeout: %s\n", c.LockTimeout))
	b.WriteString(fmt.Sprintf("  lockretry: %s\n", c.LockRetry))
	b.WriteString(fmt.Sprintf("  timezone: %s\n", c.Timezone))
	return b.String()
}

func (c *StorageConfig) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("storage data directory is not configured")
	}
	if c.LockTimeout < 0 {
		return fmt.Errorf("invalid storage lock timeout: %v", c.LockTimeout)
	}
	if c.LockRetry <= 0 {
		c.LockRetry = defaultLockRetry
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the time zone used for sales day boundaries, local time if unset.
func (c *StorageConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid storage timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
