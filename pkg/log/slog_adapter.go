package log

import (
	"context"
	"log/slog"
	"strings"
)

// SlogAdapter writes query events to an slog.Logger.
// Requests and responses go out at Debug, errors at Warn.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("request_id", event.RequestID),
		slog.String("direction", event.Direction.String()),
		slog.String("stage", event.Stage.String()),
		slog.String("category", event.Category.String()),
	}
	if event.Target != "" {
		attrs = append(attrs, slog.String("target", event.Target))
	}
	if event.Kind.IsValid() {
		attrs = append(attrs, slog.String("kind", event.Kind.String()))
	}

	level := slog.LevelDebug
	switch {
	case event.Request != nil:
		attrs = append(attrs,
			slog.String("oids", strings.Join(event.Request.OIDs, ",")),
			slog.Int("sub_requests", event.Request.SubRequests),
		)
	case event.Response != nil:
		attrs = append(attrs,
			slog.Int("bindings", event.Response.Bindings),
			slog.Duration("duration", event.Response.Duration),
		)
		if event.Response.Untranslated > 0 {
			attrs = append(attrs, slog.Int("untranslated", event.Response.Untranslated))
		}
	case event.Error != nil:
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error_msg", event.Error.Message))
		if event.Error.Status != nil {
			attrs = append(attrs, slog.String("error_status", event.Error.Status.String()))
		}
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "query", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
