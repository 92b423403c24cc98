// Package pool recycles RADIUS packets between requests.
package pool

import (
	"sync"
	"sync/atomic"

	"github.com/tailored-agentic-units/radadapter/radius"
)

// Pool hands out packets and takes them back once a request is done. It is
// safe for concurrent use without external locking.
type Pool struct {
	packets  sync.Pool
	issued   atomic.Int64
	recycled atomic.Int64
}

// Stats is a point-in-time snapshot of pool activity.
type Stats struct {
	Issued   int64 `json:"issued"`
	Recycled int64 `json:"recycled"`
}

// New creates an empty Pool.
func New() *Pool {
	p := &Pool{}
	p.packets.New = func() any { return new(radius.Packet) }
	return p
}

// Get returns a reset packet.
func (p *Pool) Get() *radius.Packet {
	p.issued.Add(1)
	return p.packets.Get().(*radius.Packet)
}

// Recycle resets each packet and returns it to the pool. Nil handles are
// ignored. Callers must not use a packet after recycling it.
func (p *Pool) Recycle(packets ...*radius.Packet) {
	for _, pkt := range packets {
		if pkt == nil {
			continue
		}
		pkt.Reset()
		p.recycled.Add(1)
		p.packets.Put(pkt)
	}
}

// Stats returns the current counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Issued:   p.issued.Load(),
		Recycled: p.recycled.Load(),
	}
}
