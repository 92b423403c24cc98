package frame

const (
	defaultMaxFrameSize  = 1 << 20
	defaultInitialBuffer = 4096
)

// Config holds encoder parameters.
type Config struct {
	// MaxFrameSize caps the encoded frame, length prefix included.
	MaxFrameSize int `json:"max_frame_size,omitempty" yaml:"max_frame_size,omitempty"`

	// InitialBuffer is the starting capacity of pooled frame buffers.
	InitialBuffer int `json:"initial_buffer,omitempty" yaml:"initial_buffer,omitempty"`
}

// DefaultConfig returns the default encoder configuration.
func DefaultConfig() Config {
	return Config{
		MaxFrameSize:  defaultMaxFrameSize,
		InitialBuffer: defaultInitialBuffer,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.MaxFrameSize > 0 {
		c.MaxFrameSize = source.MaxFrameSize
	}
	if source.InitialBuffer > 0 {
		c.InitialBuffer = source.InitialBuffer
	}
}
