// Package server composes the adapter: packet pool, handler pipeline,
// request processor, host listener and status endpoint, all initialized from
// one Config.
//
//	cfg, err := server.LoadConfig("radadapter.yaml")
//	srv, err := server.New(cfg)
//	err = srv.Run(ctx)
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/radadapter/app"
	"github.com/tailored-agentic-units/radadapter/frame"
	"github.com/tailored-agentic-units/radadapter/handler"
	"github.com/tailored-agentic-units/radadapter/listener"
	"github.com/tailored-agentic-units/radadapter/observability"
	"github.com/tailored-agentic-units/radadapter/pool"
	"github.com/tailored-agentic-units/radadapter/processor"
	"github.com/tailored-agentic-units/radadapter/status"
)

const EventStarted observability.EventType = "server.started"

// Option configures a Server after config-driven initialization.
type Option func(*options)

type options struct {
	observer observability.Observer
	pipeline *handler.Pipeline
}

// WithObserver routes every subsystem's events to o. Events are also counted
// by level for the status endpoint.
func WithObserver(o observability.Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// WithPipeline replaces the config-built handler pipeline.
func WithPipeline(p *handler.Pipeline) Option {
	return func(opts *options) { opts.pipeline = p }
}

// Server owns the adapter's long-lived subsystems.
type Server struct {
	cfg       Config
	app       *app.Context
	packets   *pool.Pool
	processor *processor.Processor
	listener  *listener.Server
	status    *status.Service
	events    *observability.LevelCounter
	observer  observability.Observer
}

// New builds every subsystem from cfg. The pipeline is built here, before
// any request can arrive.
func New(cfg *Config, opts ...Option) (*Server, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.observer == nil {
		observer, err := observability.GetObserver(cfg.Processor.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
		o.observer = observer
	}

	events := &observability.LevelCounter{}

	s := &Server{
		cfg:      *cfg,
		app:      app.New(&cfg.Processor.App),
		packets:  pool.New(),
		events:   events,
		observer: observability.NewMultiObserver(o.observer, events),
	}

	encoder := frame.NewEncoder(&cfg.Processor.Frame)

	procOpts := []processor.Option{
		processor.WithObserver(s.observer),
		processor.WithApplication(s.app),
		processor.WithEncoder(encoder),
		processor.WithPool(s.packets),
	}
	if o.pipeline != nil {
		procOpts = append(procOpts, processor.WithPipeline(o.pipeline))
	}

	proc, err := processor.New(&cfg.Processor, procOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create processor: %w", err)
	}
	s.processor = proc

	ln, err := listener.New(&cfg.Listener, proc, s.packets,
		listener.WithObserver(s.observer),
		listener.WithEncoder(encoder),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = ln

	s.status = status.NewService(s.app)
	s.status.Register("processor", s.processorStatus)
	s.status.Register("pool", s.poolStatus)
	s.status.Register("listener", s.listenerStatus)
	s.status.Register("events", s.eventStatus)

	return s, nil
}

// Processor returns the request processor.
func (s *Server) Processor() *processor.Processor { return s.processor }

// Status returns the status service.
func (s *Server) Status() *status.Service { return s.status }

// Run listens on the configured addresses and serves until ctx is cancelled
// or either server fails.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig

	hostLn, err := lc.Listen(ctx, "tcp", s.cfg.Listener.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listener.Address, err)
	}

	var statusLn net.Listener
	if !s.cfg.Status.Disabled {
		statusLn, err = lc.Listen(ctx, "tcp", s.cfg.Status.Address)
		if err != nil {
			hostLn.Close()
			return fmt.Errorf("failed to listen on %s: %w", s.cfg.Status.Address, err)
		}
	}

	return s.Serve(ctx, hostLn, statusLn)
}

// Serve serves hosts on hostLn and the status service on statusLn, which may
// be nil. A failure in either cancels the other.
func (s *Server) Serve(ctx context.Context, hostLn, statusLn net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.listener.Serve(gctx, hostLn)
	})

	data := map[string]any{
		"app":      s.app.Name(),
		"listen":   hostLn.Addr().String(),
		"handlers": s.processor.Pipeline().Names(),
		"debug":    s.cfg.Processor.Debug,
	}

	if statusLn != nil {
		data["status"] = statusLn.Addr().String()
		g.Go(func() error {
			return s.status.Serve(gctx, statusLn)
		})
	}

	s.observer.OnEvent(ctx, observability.Event{
		Type:      EventStarted,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "server.Serve",
		Data:      data,
	})

	return g.Wait()
}

func (s *Server) processorStatus() map[string]any {
	st := s.processor.Stats()
	results := make(map[string]any, len(st.Results))
	for k, v := range st.Results {
		results[k] = v
	}
	return map[string]any{
		"requests":       st.Requests,
		"handler_faults": st.HandlerFaults,
		"write_faults":   st.WriteFaults,
		"frames_written": st.FramesWritten,
		"bytes_written":  st.BytesWritten,
		"results":        results,
	}
}

func (s *Server) poolStatus() map[string]any {
	st := s.packets.Stats()
	return map[string]any{
		"issued":   st.Issued,
		"recycled": st.Recycled,
	}
}

func (s *Server) listenerStatus() map[string]any {
	st := s.listener.Stats()
	return map[string]any{
		"accepted": st.Accepted,
		"active":   st.Active,
		"requests": st.Requests,
		"invalid":  st.Invalid,
	}
}

func (s *Server) eventStatus() map[string]any {
	counts := s.events.Counts()
	out := make(map[string]any, len(counts))
	for k, v := range counts {
		out[k] = v
	}
	return out
}
