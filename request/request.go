// Package request defines the unit of work the adapter processes: the packets
// received from the host, the config items the pipeline accumulates for the
// reply, and the pipeline's return value.
//
// A Request is owned by exactly one goroutine for its whole lifetime and is
// not safe for concurrent use.
package request

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/radadapter/app"
	"github.com/tailored-agentic-units/radadapter/radius"
	"github.com/tailored-agentic-units/radadapter/rlm"
)

// Recycler takes packets back when a request is released.
type Recycler interface {
	Recycle(packets ...*radius.Packet)
}

// Request is one adapter-visible unit of work.
type Request struct {
	id          string
	packets     []*radius.Packet
	configItems radius.AttributeList
	result      rlm.Code
	hasResult   bool
	app         *app.Context
	released    bool
}

// New creates a Request around its primary packet and any additional packets
// already known. The request is assigned a unique UUIDv7 identifier.
func New(primary *radius.Packet, extra ...*radius.Packet) (*Request, error) {
	if primary == nil {
		return nil, ErrNoPrimary
	}

	packets := make([]*radius.Packet, 0, 1+len(extra))
	packets = append(packets, primary)
	for i, p := range extra {
		if p == nil {
			return nil, fmt.Errorf("%w: extra packet %d", ErrNilPacket, i)
		}
		if slices.Contains(packets, p) {
			return nil, fmt.Errorf("%w: extra packet %d", ErrDuplicatePacket, i)
		}
		packets = append(packets, p)
	}

	return &Request{
		id:      uuid.Must(uuid.NewV7()).String(),
		packets: packets,
	}, nil
}

// ID returns the request's UUIDv7 identifier, used to correlate log events.
func (r *Request) ID() string {
	return r.id
}

// Primary returns the packet the request was created for.
func (r *Request) Primary() *radius.Packet {
	if len(r.packets) == 0 {
		return nil
	}
	return r.packets[0]
}

// Packets returns the request's packets in order. The slice is shared with
// the request; callers must not retain it past processing.
func (r *Request) Packets() []*radius.Packet {
	return r.packets
}

// AddPacket appends a derived packet. A packet may belong to the request
// only once, since each one is recycled on release.
func (r *Request) AddPacket(p *radius.Packet) error {
	if r.released {
		return ErrReleased
	}
	if p == nil {
		return ErrNilPacket
	}
	if slices.Contains(r.packets, p) {
		return ErrDuplicatePacket
	}
	r.packets = append(r.packets, p)
	return nil
}

// ConfigItems returns the mutable list of directives sent back to the host.
func (r *Request) ConfigItems() *radius.AttributeList {
	return &r.configItems
}

// ReturnValue reports the pipeline result and whether one was set.
func (r *Request) ReturnValue() (rlm.Code, bool) {
	return r.result, r.hasResult
}

// SetReturnValue records a result code.
func (r *Request) SetReturnValue(code rlm.Code) {
	r.result = code
	r.hasResult = true
}

// Bind attaches the shared application context. The request does not own it.
func (r *Request) Bind(ctx *app.Context) {
	r.app = ctx
}

// Application returns the bound application context, or nil before Bind.
func (r *Request) Application() *app.Context {
	return r.app
}

// Released reports whether Release has run.
func (r *Request) Released() bool {
	return r.released
}

// Release returns the request's packets to rec and clears its config items.
// It is safe to call on a nil Request and any number of times; only the first
// call hands packets back.
func (r *Request) Release(rec Recycler) {
	if r == nil || r.released {
		return
	}
	r.released = true

	packets := r.packets
	r.packets = nil
	if rec != nil && len(packets) > 0 {
		rec.Recycle(packets...)
	}

	r.configItems.Clear()
}
