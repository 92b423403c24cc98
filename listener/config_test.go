package listener_test

import (
	"testing"

	"github.com/tailored-agentic-units/radadapter/listener"
)

func TestConfig_Merge(t *testing.T) {
	cfg := listener.DefaultConfig()
	cfg.Merge(&listener.Config{Address: ":1900", IdleTimeout: "30s"})

	if cfg.Address != ":1900" {
		t.Errorf("got Address %q, want %q", cfg.Address, ":1900")
	}
	if cfg.IdleTimeout != "30s" {
		t.Errorf("got IdleTimeout %q, want %q", cfg.IdleTimeout, "30s")
	}
	if cfg.MaxConnections != 64 {
		t.Errorf("zero source MaxConnections overrode default: %d", cfg.MaxConnections)
	}
}
