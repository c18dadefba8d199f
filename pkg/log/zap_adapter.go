package log

import (
	"strings"

	"go.uber.org/zap"
)

// ZapAdapter writes query events to a zap.Logger, mirroring SlogAdapter's
// field names and levels.
type ZapAdapter struct {
	logger *zap.Logger
}

// NewZapAdapter creates a ZapAdapter. A nil logger is replaced by zap.NewNop.
func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapAdapter{logger: logger}
}

// Log writes the event to the zap logger.
func (a *ZapAdapter) Log(event Event) {
	fields := []zap.Field{
		zap.String("request_id", event.RequestID),
		zap.Stringer("direction", event.Direction),
		zap.Stringer("stage", event.Stage),
		zap.Stringer("category", event.Category),
	}
	if event.Target != "" {
		fields = append(fields, zap.String("target", event.Target))
	}
	if event.Kind.IsValid() {
		fields = append(fields, zap.Stringer("kind", event.Kind))
	}

	switch {
	case event.Request != nil:
		fields = append(fields,
			zap.String("oids", strings.Join(event.Request.OIDs, ",")),
			zap.Int("sub_requests", event.Request.SubRequests),
		)
	case event.Response != nil:
		fields = append(fields,
			zap.Int("bindings", event.Response.Bindings),
			zap.Duration("duration", event.Response.Duration),
		)
	case event.Error != nil:
		fields = append(fields, zap.String("error_msg", event.Error.Message))
		if event.Error.Status != nil {
			fields = append(fields, zap.Stringer("error_status", *event.Error.Status))
		}
		if event.Error.Context != "" {
			fields = append(fields, zap.String("error_context", event.Error.Context))
		}
		a.logger.Warn("query", fields...)
		return
	}

	a.logger.Debug("query", fields...)
}

var _ Logger = (*ZapAdapter)(nil)
