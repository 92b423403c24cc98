package processor

import (
	"sync/atomic"

	"github.com/tailored-agentic-units/radadapter/rlm"
)

// Stats is a point-in-time snapshot of processor activity.
type Stats struct {
	Requests      int64            `json:"requests"`
	HandlerFaults int64            `json:"handler_faults"`
	WriteFaults   int64            `json:"write_faults"`
	FramesWritten int64            `json:"frames_written"`
	BytesWritten  int64            `json:"bytes_written"`
	Results       map[string]int64 `json:"results"`
}

type counters struct {
	requests      atomic.Int64
	handlerFaults atomic.Int64
	writeFaults   atomic.Int64
	framesWritten atomic.Int64
	bytesWritten  atomic.Int64
	results       [256]atomic.Int64
}

func (c *counters) result(code rlm.Code) {
	c.results[code].Add(1)
}

func (c *counters) snapshot() Stats {
	s := Stats{
		Requests:      c.requests.Load(),
		HandlerFaults: c.handlerFaults.Load(),
		WriteFaults:   c.writeFaults.Load(),
		FramesWritten: c.framesWritten.Load(),
		BytesWritten:  c.bytesWritten.Load(),
		Results:       make(map[string]int64),
	}
	for i := range c.results {
		if n := c.results[i].Load(); n > 0 {
			s.Results[rlm.Code(i).String()] = n
		}
	}
	return s
}
