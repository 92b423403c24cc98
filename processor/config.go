package processor

import (
	"github.com/tailored-agentic-units/radadapter/app"
	"github.com/tailored-agentic-units/radadapter/frame"
	"github.com/tailored-agentic-units/radadapter/handler"
)

// Config holds initialization parameters for the processor and the
// subsystems it builds.
type Config struct {
	// Debug dumps every request before its response is encoded.
	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty"`

	// Observer names a registered observability.Observer. Empty selects the
	// slog observer.
	Observer string `json:"observer,omitempty" yaml:"observer,omitempty"`

	App      app.Config     `json:"app" yaml:"app"`
	Frame    frame.Config   `json:"frame" yaml:"frame"`
	Pipeline []handler.Spec `json:"pipeline,omitempty" yaml:"pipeline,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
// The default pipeline is empty.
func DefaultConfig() Config {
	return Config{
		App:   app.DefaultConfig(),
		Frame: frame.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c. A non-empty source
// pipeline replaces the whole pipeline.
func (c *Config) Merge(source *Config) {
	c.App.Merge(&source.App)
	c.Frame.Merge(&source.Frame)

	if source.Debug {
		c.Debug = true
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
	if len(source.Pipeline) > 0 {
		c.Pipeline = source.Pipeline
	}
}
