package config

import (
	"fmt"
	"strings"
	"time"
)

// ShutdownConfig bounds how long servers may drain on shutdown.
// Requests waiting on a collection lock are cut off when it expires.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// String returns a string representation of the ShutdownConfig.
func (c *ShutdownConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Shutdown ---\n")
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %v", c.Timeout)
	}
	return nil
}
