// Package listener accepts host connections and feeds their requests to the
// processor.
//
// Each connection carries newline-delimited JSON envelopes. Every envelope is
// turned into a request built from pooled packets, processed, and answered
// with exactly one response frame on the same connection, in order. An
// envelope that cannot be decoded is answered with an INVALID frame carrying
// no packets so the host stays in lockstep. When no frame can be delivered
// for a request the connection is closed.
package listener

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"runtime/debug"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/radadapter/frame"
	"github.com/tailored-agentic-units/radadapter/observability"
	"github.com/tailored-agentic-units/radadapter/processor"
	"github.com/tailored-agentic-units/radadapter/radius"
	"github.com/tailored-agentic-units/radadapter/request"
	"github.com/tailored-agentic-units/radadapter/rlm"
)

// Processor handles one request; *processor.Processor satisfies it.
type Processor interface {
	Process(ctx context.Context, lr processor.ListenerRequest)
}

// PacketPool supplies the packets decoded requests are built from;
// *pool.Pool satisfies it.
type PacketPool interface {
	Get() *radius.Packet
	Recycle(packets ...*radius.Packet)
}

// Option configures a Server after config-driven initialization.
type Option func(*Server)

// WithObserver overrides the default slog observer.
func WithObserver(o observability.Observer) Option {
	return func(s *Server) { s.observer = o }
}

// WithEncoder sets the encoder used for INVALID replies to bad envelopes.
func WithEncoder(e *frame.Encoder) Option {
	return func(s *Server) { s.encoder = e }
}

// Stats is a snapshot of listener activity.
type Stats struct {
	Accepted int64 `json:"accepted"`
	Active   int64 `json:"active"`
	Requests int64 `json:"requests"`
	Invalid  int64 `json:"invalid"`
}

// Server is a replay-transport listener. Connections are served concurrently
// up to MaxConnections; requests on one connection are served in order.
type Server struct {
	address     string
	maxConns    int
	maxLine     int
	idleTimeout time.Duration

	processor Processor
	packets   PacketPool
	encoder   *frame.Encoder
	observer  observability.Observer

	accepted atomic.Int64
	active   atomic.Int64
	requests atomic.Int64
	invalid  atomic.Int64
}

// New creates a Server from configuration.
func New(cfg *Config, proc Processor, packets PacketPool, opts ...Option) (*Server, error) {
	if proc == nil || packets == nil {
		return nil, fmt.Errorf("%w: processor and packet pool are required", ErrInvalidConfig)
	}

	idle, err := cfg.idleTimeout()
	if err != nil {
		return nil, err
	}

	observer, err := observability.GetObserver("")
	if err != nil {
		return nil, err
	}

	s := &Server{
		address:     cfg.Address,
		maxConns:    cfg.MaxConnections,
		maxLine:     cfg.MaxLineSize,
		idleTimeout: idle,
		processor:   proc,
		packets:     packets,
		observer:    observer,
	}
	if s.maxConns <= 0 {
		s.maxConns = defaultMaxConnections
	}
	if s.maxLine <= 0 {
		s.maxLine = defaultMaxLineSize
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.encoder == nil {
		s.encoder = frame.NewEncoder(nil)
	}

	return s, nil
}

// Stats returns the current counters.
func (s *Server) Stats() Stats {
	return Stats{
		Accepted: s.accepted.Load(),
		Active:   s.active.Load(),
		Requests: s.requests.Load(),
		Invalid:  s.invalid.Load(),
	}
}

// ListenAndServe listens on the configured TCP address and serves until ctx
// is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then waits for open
// connections to finish. It closes ln. A cancelled context is a clean stop and
// returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	s.emit(ctx, EventServeStart, observability.LevelInfo, "", map[string]any{
		"address":         ln.Addr().String(),
		"max_connections": s.maxConns,
	})

	g := new(errgroup.Group)
	g.SetLimit(s.maxConns)

	var serveErr error
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				serveErr = fmt.Errorf("accept: %w", err)
			}
			break
		}

		s.accepted.Add(1)
		g.Go(func() error {
			s.ServeConn(ctx, conn)
			return nil
		})
	}

	ln.Close()
	g.Wait()

	s.emit(ctx, EventServeStop, observability.LevelInfo, "", map[string]any{
		"accepted": s.accepted.Load(),
	})
	return serveErr
}

// ServeConn serves one host connection until EOF, an idle timeout, a read
// error or ctx cancellation. It closes conn.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	s.active.Add(1)
	defer s.active.Add(-1)

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	s.emit(ctx, EventConnOpen, observability.LevelVerbose, "", map[string]any{"remote": remote})

	defer func() {
		if r := recover(); r != nil {
			s.emit(ctx, EventConnFault, observability.LevelError, "Connection handler panicked", map[string]any{
				"remote": remote,
				"panic":  fmt.Sprint(r),
				"stack":  string(debug.Stack()),
			})
		}
	}()

	out := bufio.NewWriter(conn)
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), s.maxLine)

	for {
		if s.idleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		}
		if !scanner.Scan() {
			break
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if err := s.serveLine(ctx, line, out); err != nil {
			s.emit(ctx, EventConnFault, observability.LevelError, "Closing connection, no response frame was delivered", map[string]any{
				"remote": remote,
				"error":  err.Error(),
			})
			return
		}
	}

	data := map[string]any{"remote": remote}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		data["error"] = err.Error()
	}
	s.emit(ctx, EventConnClose, observability.LevelVerbose, "", data)
}

func (s *Server) serveLine(ctx context.Context, line []byte, out *bufio.Writer) error {
	req, err := s.decode(line)
	if err != nil {
		s.invalid.Add(1)
		s.emit(ctx, EventInvalidEnvelope, observability.LevelError, "Rejected malformed request envelope", map[string]any{
			"error": err.Error(),
		})
		_, werr := s.encoder.WriteResponse(out, rlm.INVALID, nil, nil)
		return werr
	}

	s.requests.Add(1)
	tw := &trackingWriter{w: out}
	s.processor.Process(ctx, connRequest{req: req, out: tw})
	if !tw.flushed {
		return ErrNoFrame
	}
	return nil
}

// decode builds a request from one envelope line. On failure every packet
// taken from the pool is handed back.
func (s *Server) decode(line []byte) (*request.Request, error) {
	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	if len(env.Packets) == 0 {
		return nil, ErrEmptyEnvelope
	}
	if len(env.Packets) > math.MaxUint8 {
		return nil, fmt.Errorf("%w: %d packets", ErrTooManyPackets, len(env.Packets))
	}

	packets := make([]*radius.Packet, 0, len(env.Packets))
	fail := func(err error) (*request.Request, error) {
		s.packets.Recycle(packets...)
		return nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}

	for _, pe := range env.Packets {
		pkt := s.packets.Get()
		packets = append(packets, pkt)
		if err := pe.fill(pkt); err != nil {
			return fail(err)
		}
	}

	items := make([]radius.Attribute, 0, len(env.ConfigItems))
	for _, ae := range env.ConfigItems {
		attr, err := ae.attribute()
		if err != nil {
			return fail(err)
		}
		items = append(items, attr)
	}

	req, err := request.New(packets[0], packets[1:]...)
	if err != nil {
		return fail(err)
	}
	req.ConfigItems().Add(items...)
	return req, nil
}

func (s *Server) emit(ctx context.Context, typ observability.EventType, level observability.Level, msg string, data map[string]any) {
	s.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "listener.Server",
		Message:   msg,
		Data:      data,
	})
}

type connRequest struct {
	req *request.Request
	out *trackingWriter
}

func (c connRequest) Request() *request.Request { return c.req }
func (c connRequest) Output() io.Writer          { return c.out }

// trackingWriter records whether a complete frame reached the connection.
// The encoder writes a frame with one Write followed by Flush.
type trackingWriter struct {
	w       *bufio.Writer
	flushed bool
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	return t.w.Write(p)
}

func (t *trackingWriter) Flush() error {
	err := t.w.Flush()
	t.flushed = err == nil
	return err
}
