package logging

import (
	"context"
	"log/slog"
)

// FieldSessionID is the structured logging key for the run session id.
const FieldSessionID = "session_id"

// sessionHandler stamps every record with the run's session id unless the
// logger or the record already carries one.
type sessionHandler struct {
	base      slog.Handler
	sessionID string
	carried   bool
}

func newSessionIDHandler(base slog.Handler, sessionID string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	if sessionID == "" {
		return base
	}
	return &sessionHandler{base: base, sessionID: sessionID}
}

func (h *sessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *sessionHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.carried || recordHasKey(record, FieldSessionID) {
		return h.base.Handle(ctx, record)
	}
	record.AddAttrs(slog.String(FieldSessionID, h.sessionID))
	return h.base.Handle(ctx, record)
}

func (h *sessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sessionHandler{
		base:      h.base.WithAttrs(attrs),
		sessionID: h.sessionID,
		carried:   h.carried || hasAttrKey(attrs, FieldSessionID),
	}
}

func (h *sessionHandler) WithGroup(name string) slog.Handler {
	return &sessionHandler{
		base:      h.base.WithGroup(name),
		sessionID: h.sessionID,
		carried:   h.carried,
	}
}

func recordHasKey(record slog.Record, key string) bool {
	found := false
	record.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			found = true
			return false
		}
		return true
	})
	return found
}
