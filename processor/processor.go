// Package processor runs one request through the module pipeline and answers
// the host with a single response frame.
//
// Each request moves through four strictly ordered phases: bind the shared
// application context, run the handler pipeline, encode and write the
// response, and release the request's pooled resources. A fault in the
// pipeline becomes a FAIL result; a fault while writing is logged. Neither
// stops the phases after it, and release always runs.
//
//	p, err := processor.New(&cfg, processor.WithPool(packets))
//	p.Process(ctx, listenerRequest)
package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"time"

	"github.com/tailored-agentic-units/radadapter/app"
	"github.com/tailored-agentic-units/radadapter/frame"
	"github.com/tailored-agentic-units/radadapter/handler"
	"github.com/tailored-agentic-units/radadapter/observability"
	"github.com/tailored-agentic-units/radadapter/request"
	"github.com/tailored-agentic-units/radadapter/rlm"
)

// ListenerRequest is one inbound request event together with the channel its
// response frame is written to. When the output implements frame.Flusher it
// is flushed after the frame is written.
type ListenerRequest interface {
	Request() *request.Request
	Output() io.Writer
}

// Option configures a Processor after config-driven initialization.
type Option func(*Processor)

// WithPipeline overrides the config-built pipeline.
func WithPipeline(p *handler.Pipeline) Option {
	return func(pr *Processor) { pr.pipeline = p }
}

// WithEncoder overrides the config-built frame encoder.
func WithEncoder(e *frame.Encoder) Option {
	return func(pr *Processor) { pr.encoder = e }
}

// WithPool sets where released packets go. Without a pool, packets are left
// to the garbage collector.
func WithPool(r request.Recycler) Option {
	return func(pr *Processor) { pr.pool = r }
}

// WithObserver overrides the configured observer.
func WithObserver(o observability.Observer) Option {
	return func(pr *Processor) { pr.observer = o }
}

// WithApplication overrides the config-built application context.
func WithApplication(a *app.Context) Option {
	return func(pr *Processor) { pr.app = a }
}

// Processor is safe for concurrent use: every Process call works on its own
// request, and the pipeline, encoder and application context are read-only.
type Processor struct {
	pipeline *handler.Pipeline
	encoder  *frame.Encoder
	pool     request.Recycler
	app      *app.Context
	observer observability.Observer
	debug    bool
	stats    counters
}

// New creates a Processor from configuration. Options are applied before the
// pipeline is built so a config-built pipeline reports to the final observer.
func New(cfg *Config, opts ...Option) (*Processor, error) {
	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	p := &Processor{
		observer: observer,
		debug:    cfg.Debug,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.app == nil {
		p.app = app.New(&cfg.App)
	}
	if p.encoder == nil {
		p.encoder = frame.NewEncoder(&cfg.Frame)
	}
	if p.pipeline == nil {
		pipeline, err := handler.Build(cfg.Pipeline, handler.Deps{Observer: p.observer})
		if err != nil {
			return nil, fmt.Errorf("failed to build pipeline: %w", err)
		}
		p.pipeline = pipeline
	}

	return p, nil
}

// Pipeline returns the processor's handler pipeline.
func (p *Processor) Pipeline() *handler.Pipeline {
	return p.pipeline
}

// Stats returns a snapshot of the processor counters.
func (p *Processor) Stats() Stats {
	return p.stats.snapshot()
}

// Process handles one listener request. It never panics and never returns
// an error: faults are logged and, for the pipeline, turned into FAIL. The
// request is released exactly once before Process returns.
func (p *Processor) Process(ctx context.Context, lr ListenerRequest) {
	var req *request.Request
	if lr != nil {
		req = lr.Request()
	}
	defer p.release(ctx, req)

	if req == nil {
		p.emit(ctx, "", EventMalformedRequest, observability.LevelError, ErrNoRequest.Error(), nil)
		return
	}

	start := time.Now()
	p.stats.requests.Add(1)

	p.emit(ctx, req.ID(), EventRequestStart, observability.LevelVerbose, "", map[string]any{
		"packets":  len(req.Packets()),
		"handlers": p.pipeline.Len(),
	})

	req.Bind(p.app)

	code := p.runPipeline(ctx, req)
	p.stats.result(code)

	p.writeResponse(ctx, req, lr.Output())

	p.emit(ctx, req.ID(), EventRequestComplete, observability.LevelVerbose, "", map[string]any{
		"result":      code.String(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

func (p *Processor) runPipeline(ctx context.Context, req *request.Request) (code rlm.Code) {
	defer func() {
		if r := recover(); r != nil {
			code = p.handlerFault(ctx, req, &PanicError{Phase: "pipeline", Value: r, Stack: debug.Stack()})
		}
	}()

	code, err := p.pipeline.Run(ctx, req, p.observer)
	if err != nil {
		return p.handlerFault(ctx, req, err)
	}

	req.SetReturnValue(code)
	return code
}

func (p *Processor) handlerFault(ctx context.Context, req *request.Request, err error) rlm.Code {
	p.stats.handlerFaults.Add(1)
	req.SetReturnValue(rlm.FAIL)

	p.emit(ctx, req.ID(), EventHandlerFault, observability.LevelError,
		"Error during processing of packet handlers", faultData(err))

	return rlm.FAIL
}

func (p *Processor) writeResponse(ctx context.Context, req *request.Request, out io.Writer) {
	defer func() {
		if r := recover(); r != nil {
			p.writeFault(ctx, req, &PanicError{Phase: "response", Value: r, Stack: debug.Stack()})
		}
	}()

	if p.debug {
		p.emit(ctx, req.ID(), EventDebugDump, observability.LevelInfo, "", req.DebugInfo())
	}

	if out == nil {
		p.writeFault(ctx, req, ErrNoOutput)
		return
	}

	code, ok := req.ReturnValue()
	if !ok {
		code = rlm.FAIL
	}

	n, err := p.encoder.WriteResponse(out, code, req.Packets(), req.ConfigItems())
	if err != nil {
		p.writeFault(ctx, req, err)
		return
	}

	p.stats.framesWritten.Add(1)
	p.stats.bytesWritten.Add(int64(n))

	p.emit(ctx, req.ID(), EventResponseWritten, observability.LevelVerbose, "", map[string]any{
		"bytes":   n,
		"result":  code.String(),
		"packets": len(req.Packets()),
	})
}

// writeFault is logged at error severity: the host gets no other signal that
// the request went unanswered.
func (p *Processor) writeFault(ctx context.Context, req *request.Request, err error) {
	p.stats.writeFaults.Add(1)
	p.emit(ctx, req.ID(), EventResponseFault, observability.LevelError,
		"Error during writing response", faultData(err))
}

func (p *Processor) release(ctx context.Context, req *request.Request) {
	defer func() {
		if r := recover(); r != nil {
			id := ""
			if req != nil {
				id = req.ID()
			}
			p.emit(ctx, id, EventReleaseFault, observability.LevelError,
				"Error during request release", faultData(&PanicError{Phase: "release", Value: r, Stack: debug.Stack()}))
		}
	}()

	req.Release(p.pool)
}

func (p *Processor) emit(ctx context.Context, requestID string, typ observability.EventType, level observability.Level, msg string, data map[string]any) {
	p.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "processor.Process",
		RequestID: requestID,
		Message:   msg,
		Data:      data,
	})
}

func faultData(err error) map[string]any {
	data := map[string]any{"error": err.Error()}
	var pe *PanicError
	if errors.As(err, &pe) {
		data["phase"] = pe.Phase
		data["stack"] = string(pe.Stack)
	}
	return data
}
