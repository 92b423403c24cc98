// Package status serves a read-only snapshot of adapter activity over a
// connect unary RPC.
//
// The response is a protobuf Struct: application identity and uptime at the
// top level, plus one nested object per registered source.
//
//	svc := status.NewService(appCtx)
//	svc.Register("processor", func() map[string]any { ... })
//	path, h := svc.Handler()
package status

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/radadapter/app"
)

const (
	ServiceName        = "radadapter.v1.StatusService"
	GetStatusProcedure = "/" + ServiceName + "/GetStatus"
)

// SourceFunc returns one section of the status snapshot. Values must be
// representable in a protobuf Struct: numbers, strings, bools, nil, and
// nested map[string]any or []any.
type SourceFunc func() map[string]any

// Service assembles status snapshots. Sources may be registered while the
// service is serving.
type Service struct {
	app *app.Context

	mu      sync.RWMutex
	sources map[string]SourceFunc
}

// NewService creates a Service reporting on the given application.
func NewService(a *app.Context) *Service {
	return &Service{
		app:     a,
		sources: make(map[string]SourceFunc),
	}
}

// Register adds a named snapshot section.
func (s *Service) Register(name string, fn SourceFunc) error {
	if name == "" {
		return ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sources[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSource, name)
	}
	s.sources[name] = fn
	return nil
}

// Sources returns the registered section names, sorted.
func (s *Service) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.sources))
	for name := range s.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot collects the current status.
func (s *Service) Snapshot() map[string]any {
	snap := map[string]any{}
	if s.app != nil {
		snap["app"] = s.app.Name()
		snap["started_at"] = s.app.StartedAt().UTC().Format(time.RFC3339)
		snap["uptime_seconds"] = time.Since(s.app.StartedAt()).Seconds()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for name, fn := range s.sources {
		snap[name] = fn()
	}
	return snap
}

// GetStatus implements the unary RPC.
func (s *Service) GetStatus(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	msg, err := structpb.NewStruct(s.Snapshot())
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to build status: %w", err))
	}
	return connect.NewResponse(msg), nil
}

// Handler returns the mount path and HTTP handler for the service.
func (s *Service) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(GetStatusProcedure, connect.NewUnaryHandler(GetStatusProcedure, s.GetStatus, opts...))
	return "/" + ServiceName + "/", mux
}
