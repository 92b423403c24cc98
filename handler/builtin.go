package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tailored-agentic-units/radadapter/observability"
	"github.com/tailored-agentic-units/radadapter/radius"
	"github.com/tailored-agentic-units/radadapter/request"
	"github.com/tailored-agentic-units/radadapter/rlm"
)

// Built-in handler kinds.
const (
	KindStatic  = "static"
	KindRequire = "require"
	KindReply   = "reply"
	KindLog     = "log"
)

// EventLog is emitted by "log" handlers.
const EventLog observability.EventType = "handler.log"

func init() {
	if err := RegisterBuiltins(defaultRegistry); err != nil {
		panic(err)
	}
}

// RegisterBuiltins installs the built-in kinds into r, replacing any existing
// factories of the same name.
func RegisterBuiltins(r *Registry) error {
	builtins := map[string]Factory{
		KindStatic:  newStatic,
		KindRequire: newRequire,
		KindReply:   newReply,
		KindLog:     newLog,
	}
	for kind, f := range builtins {
		err := r.Register(kind, f)
		if errors.Is(err, ErrAlreadyExists) {
			err = r.Replace(kind, f)
		}
		if err != nil {
			return fmt.Errorf("register builtin %s: %w", kind, err)
		}
	}
	return nil
}

func parseCode(field, value string, fallback rlm.Code) (rlm.Code, error) {
	if value == "" {
		return fallback, nil
	}
	code, err := rlm.ParseCode(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidOptions, field, err)
	}
	return code, nil
}

// static answers every request with a fixed code.
func newStatic(spec Spec, _ Deps) (Handler, error) {
	if spec.Result == "" {
		return nil, fmt.Errorf("%w: static handler needs a result", ErrInvalidOptions)
	}
	code, err := parseCode("result", spec.Result, rlm.OK)
	if err != nil {
		return nil, err
	}
	return Static(spec.Name, code), nil
}

// require checks the primary packet for an attribute.
func newRequire(spec Spec, _ Deps) (Handler, error) {
	if spec.Attribute == 0 {
		return nil, fmt.Errorf("%w: require handler needs an attribute", ErrInvalidOptions)
	}
	pass, err := parseCode("result", spec.Result, rlm.OK)
	if err != nil {
		return nil, err
	}
	missing, err := parseCode("missing", spec.Missing, rlm.REJECT)
	if err != nil {
		return nil, err
	}

	attr := spec.Attribute
	return HandlerFunc(spec.Name, func(_ context.Context, req *request.Request) (rlm.Code, error) {
		primary := req.Primary()
		if primary == nil || !primary.Attributes.Has(attr) {
			return missing, nil
		}
		return pass, nil
	}), nil
}

// reply appends configured attributes to the request's config items.
func newReply(spec Spec, _ Deps) (Handler, error) {
	if len(spec.Reply) == 0 {
		return nil, fmt.Errorf("%w: reply handler needs at least one attribute", ErrInvalidOptions)
	}
	code, err := parseCode("result", spec.Result, rlm.UPDATED)
	if err != nil {
		return nil, err
	}

	attrs := make([]radius.Attribute, 0, len(spec.Reply))
	for i, a := range spec.Reply {
		if a.Type == 0 {
			return nil, fmt.Errorf("%w: reply attribute %d has no type", ErrInvalidOptions, i)
		}
		op, err := radius.ParseOp(a.Op)
		if err != nil {
			return nil, fmt.Errorf("%w: reply attribute %d: %w", ErrInvalidOptions, i, err)
		}
		attrs = append(attrs, radius.Attribute{Type: a.Type, Op: op, Value: []byte(a.Value)})
	}

	return HandlerFunc(spec.Name, func(_ context.Context, req *request.Request) (rlm.Code, error) {
		items := req.ConfigItems()
		for _, a := range attrs {
			// Each request gets its own copy of the value.
			a.Value = append([]byte(nil), a.Value...)
			items.Add(a)
		}
		return code, nil
	}), nil
}

// log reports the request to the observer and does nothing else.
func newLog(spec Spec, deps Deps) (Handler, error) {
	code, err := parseCode("result", spec.Result, rlm.NOOP)
	if err != nil {
		return nil, err
	}
	observer := deps.Observer
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	name := spec.Name

	return HandlerFunc(name, func(ctx context.Context, req *request.Request) (rlm.Code, error) {
		observer.OnEvent(ctx, observability.Event{
			Type:      EventLog,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "handler." + name,
			RequestID: req.ID(),
			Data:      req.DebugInfo(),
		})
		return code, nil
	}), nil
}
