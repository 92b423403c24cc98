package observability

import (
	"context"
	"log/slog"
)

// SlogObserver emits events to a slog.Logger. The event type becomes the log
// message unless the event carries its own Message, in which case the type is
// attached as the "event" attribute. Data keys are flattened as top-level
// attributes.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver creates a SlogObserver that emits to the given logger.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	level := event.Level.SlogLevel()
	if !o.logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, len(event.Data)+3)
	attrs = append(attrs, slog.String("source", event.Source))
	if event.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", event.RequestID))
	}

	msg := string(event.Type)
	if event.Message != "" {
		msg = event.Message
		attrs = append(attrs, slog.String("event", string(event.Type)))
	}

	for k, v := range event.Data {
		attrs = append(attrs, slog.Any(k, v))
	}

	o.logger.LogAttrs(ctx, level, msg, attrs...)
}
