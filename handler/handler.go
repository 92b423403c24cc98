// Package handler runs requests through the configured module pipeline.
//
// A Pipeline is an ordered, immutable list of Handlers built once before any
// request arrives. Run applies each handler in turn and stops as soon as one
// returns a code whose class stops the pipeline:
//
//	p := handler.NewPipeline(authorize, accounting, reply)
//	code, err := p.Run(ctx, req, observer)
//
// A handler reports expected outcomes through its result code. A non-nil
// error is a fault; Run returns it to the caller untouched and does not
// convert it into a code.
package handler

import (
	"context"

	"github.com/tailored-agentic-units/radadapter/request"
	"github.com/tailored-agentic-units/radadapter/rlm"
)

// Handler processes a request and reports the module outcome. Handlers may
// mutate the request's config items and append packets. Implementations are
// shared across concurrent requests and must not keep per-request state.
type Handler interface {
	Name() string
	Process(ctx context.Context, req *request.Request) (rlm.Code, error)
}

type funcHandler struct {
	name string
	fn   func(ctx context.Context, req *request.Request) (rlm.Code, error)
}

// HandlerFunc adapts a function to a named Handler.
func HandlerFunc(name string, fn func(ctx context.Context, req *request.Request) (rlm.Code, error)) Handler {
	return funcHandler{name: name, fn: fn}
}

func (h funcHandler) Name() string {
	return h.name
}

func (h funcHandler) Process(ctx context.Context, req *request.Request) (rlm.Code, error) {
	return h.fn(ctx, req)
}

// Static returns a handler that always answers with code.
func Static(name string, code rlm.Code) Handler {
	return HandlerFunc(name, func(context.Context, *request.Request) (rlm.Code, error) {
		return code, nil
	})
}
