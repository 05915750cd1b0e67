package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes capture events to an slog.Logger.
// Useful for development when you want to see every publish in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", shortID(event.SessionID)),
		slog.String("asset", event.AssetID),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.Area != "" {
		attrs = append(attrs, slog.String("area", event.Area))
	}

	switch {
	case event.Publish != nil:
		attrs = append(attrs,
			slog.String("topic", event.Publish.Topic),
			slog.String("sensor", event.Publish.Sensor),
			slog.Int("qos", int(event.Publish.QoS)),
			slog.String("outcome", event.Publish.Outcome.String()),
			slog.Duration("latency", event.Publish.Latency),
		)
		if event.Publish.Encoding == "json" {
			attrs = append(attrs, slog.String("payload", string(event.Publish.Payload)))
		}
		if event.Publish.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.Publish.Reason))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "capture", attrs...)
}

// shortID returns the first 8 characters of a session ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
