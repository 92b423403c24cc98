// Package app holds the process-wide application context shared, read-only,
// by every request the adapter processes.
package app

import (
	"maps"
	"time"
)

// Context is immutable after construction and safe for concurrent use.
type Context struct {
	name      string
	startedAt time.Time
	settings  map[string]string
}

// Config holds application context initialization parameters.
type Config struct {
	Name     string            `json:"name,omitempty" yaml:"name,omitempty"`
	Settings map[string]string `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	return Config{Name: "radadapter"}
}

// Merge applies non-zero values from source into c. Settings are merged key
// by key.
func (c *Config) Merge(source *Config) {
	if source.Name != "" {
		c.Name = source.Name
	}
	if len(source.Settings) > 0 {
		if c.Settings == nil {
			c.Settings = make(map[string]string, len(source.Settings))
		}
		maps.Copy(c.Settings, source.Settings)
	}
}

// New creates a Context from configuration. Settings are copied.
func New(cfg *Config) *Context {
	return &Context{
		name:      cfg.Name,
		startedAt: time.Now(),
		settings:  maps.Clone(cfg.Settings),
	}
}

func (c *Context) Name() string {
	return c.name
}

func (c *Context) StartedAt() time.Time {
	return c.startedAt
}

// Setting returns a configured value by key.
func (c *Context) Setting(key string) (string, bool) {
	v, ok := c.settings[key]
	return v, ok
}
