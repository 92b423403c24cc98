package listener

import "github.com/tailored-agentic-units/radadapter/observability"

// Listener event types.
const (
	EventServeStart      observability.EventType = "listener.serve.start"
	EventServeStop       observability.EventType = "listener.serve.stop"
	EventConnOpen        observability.EventType = "listener.conn.open"
	EventConnClose       observability.EventType = "listener.conn.close"
	EventConnFault       observability.EventType = "listener.conn.fault"
	EventInvalidEnvelope observability.EventType = "listener.envelope.invalid"
)
