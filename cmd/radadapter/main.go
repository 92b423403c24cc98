package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tailored-agentic-units/radadapter/observability"
	"github.com/tailored-agentic-units/radadapter/server"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to adapter config file, JSON or YAML (optional)")
		listen     = flag.String("listen", "", "Host listener address (overrides config)")
		statusAddr = flag.String("status", "", "Status endpoint address; \"off\" disables it (overrides config)")
		debugDump  = flag.Bool("debug", false, "Dump every request before its response is written")
		verbose    = flag.Bool("verbose", false, "Enable debug-level logging")
		logFile    = flag.String("log-file", "", "Write logs to a rotating file instead of stderr")
		logFormat  = flag.String("log-format", "", "Log format: text or json (overrides config)")
	)
	flag.Parse()

	cfg := server.DefaultConfig()
	if *configFile != "" {
		loaded, err := server.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	if *listen != "" {
		cfg.Listener.Address = *listen
	}
	switch *statusAddr {
	case "":
	case "off":
		cfg.Status.Disabled = true
	default:
		cfg.Status.Address = *statusAddr
	}
	if *debugDump {
		cfg.Processor.Debug = true
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}

	logger, closer, err := server.NewLogger(&cfg.Log, os.Stderr)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	defer closer.Close()

	observability.RegisterObserver("slog", observability.NewSlogObserver(logger))

	srv, err := server.New(&cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		closer.Close()
		os.Exit(1)
	}
}
