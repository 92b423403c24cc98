package handler

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/tailored-agentic-units/radadapter/observability"
	"github.com/tailored-agentic-units/radadapter/request"
	"github.com/tailored-agentic-units/radadapter/rlm"
)

// EventResult is emitted once per handler that ran, at the level of its
// code's class.
const EventResult observability.EventType = "handler.result"

// Pipeline is an ordered list of handlers. It is immutable and safe for
// concurrent use.
type Pipeline struct {
	handlers []Handler
}

// NewPipeline creates a Pipeline that runs handlers in the given order. Nil
// handlers are skipped.
func NewPipeline(handlers ...Handler) *Pipeline {
	filtered := make([]Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			filtered = append(filtered, h)
		}
	}
	return &Pipeline{handlers: filtered}
}

// Len returns the number of handlers.
func (p *Pipeline) Len() int {
	return len(p.handlers)
}

// Handlers returns a copy of the handler list.
func (p *Pipeline) Handlers() []Handler {
	return slices.Clone(p.handlers)
}

// Names returns handler names in pipeline order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.handlers))
	for i, h := range p.handlers {
		names[i] = h.Name()
	}
	return names
}

// Run executes the handlers against req in order. Each returned code is
// stored as the request's return value; a code whose class stops the
// pipeline ends the run and later handlers are not invoked. The returned code
// is always that of the last handler that ran, or NOOP when the pipeline is
// empty.
//
// A handler error ends the run immediately and is returned as a
// *HandlerError. Panics are not recovered here.
func (p *Pipeline) Run(ctx context.Context, req *request.Request, observer observability.Observer) (rlm.Code, error) {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	result := rlm.NOOP

	for i, h := range p.handlers {
		code, err := h.Process(ctx, req)
		if err != nil {
			return result, &HandlerError{Index: i, Name: h.Name(), Err: err}
		}

		result = code
		req.SetReturnValue(code)

		class := code.Class()
		observer.OnEvent(ctx, observability.Event{
			Type:      EventResult,
			Level:     class.Level(),
			Timestamp: time.Now(),
			Source:    "handler.Pipeline.Run",
			RequestID: req.ID(),
			Message:   resultMessage(h.Name(), code, class),
			Data: map[string]any{
				"handler": h.Name(),
				"index":   i,
				"code":    code.String(),
				"class":   class.String(),
			},
		})

		if class.Stops() {
			break
		}
	}

	return result, nil
}

func resultMessage(name string, code rlm.Code, class rlm.Class) string {
	switch class {
	case rlm.ClassFatal:
		return fmt.Sprintf("Error: Packet handler %s returned %s. Stopped handling this packet.", name, code)
	case rlm.ClassStop:
		return fmt.Sprintf("Packet handler %s returned %s. Stopped handling this packet.", name, code)
	default:
		return fmt.Sprintf("Packet handler %s returned %s. Continue handling this packet.", name, code)
	}
}
