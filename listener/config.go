package listener

import (
	"fmt"
	"time"
)

const (
	defaultAddress        = "127.0.0.1:1814"
	defaultMaxConnections = 64
	defaultMaxLineSize    = 1 << 16
	defaultIdleTimeout    = "5m"
)

// Config holds listener initialization parameters. IdleTimeout is a Go
// duration string; "0" disables the read deadline.
type Config struct {
	Address        string `json:"address,omitempty" yaml:"address,omitempty"`
	MaxConnections int    `json:"max_connections,omitempty" yaml:"max_connections,omitempty"`
	MaxLineSize    int    `json:"max_line_size,omitempty" yaml:"max_line_size,omitempty"`
	IdleTimeout    string `json:"idle_timeout,omitempty" yaml:"idle_timeout,omitempty"`
}

// DefaultConfig returns the default listener configuration.
func DefaultConfig() Config {
	return Config{
		Address:        defaultAddress,
		MaxConnections: defaultMaxConnections,
		MaxLineSize:    defaultMaxLineSize,
		IdleTimeout:    defaultIdleTimeout,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Address != "" {
		c.Address = source.Address
	}
	if source.MaxConnections > 0 {
		c.MaxConnections = source.MaxConnections
	}
	if source.MaxLineSize > 0 {
		c.MaxLineSize = source.MaxLineSize
	}
	if source.IdleTimeout != "" {
		c.IdleTimeout = source.IdleTimeout
	}
}

func (c *Config) idleTimeout() (time.Duration, error) {
	if c.IdleTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.IdleTimeout)
	if err != nil {
		return 0, fmt.Errorf("%w: idle_timeout: %w", ErrInvalidConfig, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: idle_timeout must not be negative", ErrInvalidConfig)
	}
	return d, nil
}
