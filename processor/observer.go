package processor

import "github.com/tailored-agentic-units/radadapter/observability"

// Processor event types emitted while a request is handled.
const (
	EventRequestStart     observability.EventType = "processor.request.start"
	EventRequestComplete  observability.EventType = "processor.request.complete"
	EventHandlerFault     observability.EventType = "processor.handler.fault"
	EventDebugDump        observability.EventType = "processor.debug.dump"
	EventResponseWritten  observability.EventType = "processor.response.written"
	EventResponseFault    observability.EventType = "processor.response.fault"
	EventReleaseFault     observability.EventType = "processor.release.fault"
	EventMalformedRequest observability.EventType = "processor.request.malformed"
)
