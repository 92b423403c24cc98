package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/tailored-agentic-units/radadapter/listener"
	"github.com/tailored-agentic-units/radadapter/processor"
	"github.com/tailored-agentic-units/radadapter/status"
)

// Config holds initialization parameters for every subsystem the server
// composes. Each section delegates to that subsystem's config.
type Config struct {
	Processor processor.Config `json:"processor" yaml:"processor"`
	Listener  listener.Config  `json:"listener" yaml:"listener"`
	Status    status.Config    `json:"status" yaml:"status"`
	Log       LogConfig        `json:"log" yaml:"log"`
}

// DefaultConfig returns a Config with defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Processor: processor.DefaultConfig(),
		Listener:  listener.DefaultConfig(),
		Status:    status.DefaultConfig(),
		Log:       DefaultLogConfig(),
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	c.Processor.Merge(&source.Processor)
	c.Listener.Merge(&source.Listener)
	c.Status.Merge(&source.Status)
	c.Log.Merge(&source.Log)
}

// LoadConfig reads a JSON or YAML config file, chosen by extension, merges it
// with defaults, and returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		err = json.Unmarshal(data, &loaded)
	case ".yaml", ".yml":
		err = yaml.UnmarshalStrict(data, &loaded)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedConfig, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
