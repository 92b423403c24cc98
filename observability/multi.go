package observability

import (
	"context"
	"sync/atomic"
)

// MultiObserver delivers every event to each of its sinks, in order. Nested
// MultiObservers are flattened on construction.
type MultiObserver struct {
	sinks []Observer
}

// NewMultiObserver combines sinks. Nil sinks are dropped.
func NewMultiObserver(sinks ...Observer) *MultiObserver {
	m := &MultiObserver{}
	for _, sink := range sinks {
		switch s := sink.(type) {
		case nil:
		case *MultiObserver:
			m.sinks = append(m.sinks, s.sinks...)
		default:
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Len returns the number of sinks.
func (m *MultiObserver) Len() int {
	return len(m.sinks)
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, sink := range m.sinks {
		sink.OnEvent(ctx, event)
	}
}

// LevelCounter counts events by severity text. It is safe for concurrent use.
type LevelCounter struct {
	debugs, infos, warns, errs atomic.Int64
}

func (c *LevelCounter) OnEvent(_ context.Context, event Event) {
	switch {
	case event.Level <= LevelVerbose+3:
		c.debugs.Add(1)
	case event.Level <= LevelInfo+3:
		c.infos.Add(1)
	case event.Level <= LevelWarning+3:
		c.warns.Add(1)
	default:
		c.errs.Add(1)
	}
}

// Counts returns the totals keyed by severity text.
func (c *LevelCounter) Counts() map[string]int64 {
	return map[string]int64{
		"DEBUG": c.debugs.Load(),
		"INFO":  c.infos.Load(),
		"WARN":  c.warns.Load(),
		"ERROR": c.errs.Load(),
	}
}
