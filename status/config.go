package status

const defaultAddress = "127.0.0.1:9814"

// Config holds status endpoint parameters.
type Config struct {
	Address  string `json:"address,omitempty" yaml:"address,omitempty"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// DefaultConfig returns the default status configuration.
func DefaultConfig() Config {
	return Config{Address: defaultAddress}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Address != "" {
		c.Address = source.Address
	}
	if source.Disabled {
		c.Disabled = true
	}
}
