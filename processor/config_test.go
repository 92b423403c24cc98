package processor_test

import (
	"testing"

	"github.com/tailored-agentic-units/radadapter/handler"
	"github.com/tailored-agentic-units/radadapter/processor"
)

func TestDefaultConfig(t *testing.T) {
	cfg := processor.DefaultConfig()

	if cfg.Debug {
		t.Error("Debug defaults to true, want false")
	}
	if cfg.Frame.MaxFrameSize != 1<<20 {
		t.Errorf("got MaxFrameSize %d, want %d", cfg.Frame.MaxFrameSize, 1<<20)
	}
	if cfg.App.Name != "radadapter" {
		t.Errorf("got App.Name %q, want %q", cfg.App.Name, "radadapter")
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := processor.DefaultConfig()

	cfg.Merge(&processor.Config{
		Debug:    true,
		Observer: "noop",
		Pipeline: []handler.Spec{{Name: "ok", Kind: handler.KindStatic, Result: "ok"}},
	})

	if !cfg.Debug {
		t.Error("Debug not merged")
	}
	if cfg.Observer != "noop" {
		t.Errorf("got Observer %q, want noop", cfg.Observer)
	}
	if len(cfg.Pipeline) != 1 {
		t.Errorf("got %d pipeline steps, want 1", len(cfg.Pipeline))
	}
	if cfg.Frame.MaxFrameSize != 1<<20 {
		t.Errorf("zero source MaxFrameSize overrode default: %d", cfg.Frame.MaxFrameSize)
	}
}
