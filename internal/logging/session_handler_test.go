package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSessionHandlerStampsOnce(t *testing.T) {
	tests := []struct {
		name string
		log  func(*slog.Logger)
		want string
	}{
		{
			name: "plain record",
			log:  func(l *slog.Logger) { l.Info("started") },
			want: "run-1",
		},
		{
			name: "logger attrs",
			log:  func(l *slog.Logger) { l.With("component", "pool").Info("started") },
			want: "run-1",
		},
		{
			name: "logger already carries a session",
			log:  func(l *slog.Logger) { l.With(FieldSessionID, "run-1").Info("started") },
			want: "run-1",
		},
		{
			name: "record carries another session",
			log:  func(l *slog.Logger) { l.Info("started", FieldSessionID, "other") },
			want: "other",
		},
		{
			name: "grouped attrs",
			log:  func(l *slog.Logger) { l.WithGroup("job").Info("started", "id", "I1") },
			want: "run-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(newSessionIDHandler(slog.NewJSONHandler(&buf, nil), "run-1"))
			tt.log(logger)

			out := buf.String()
			if n := strings.Count(out, `"session_id"`); n != 1 {
				t.Fatalf("session_id appears %d times: %s", n, out)
			}
			if !strings.Contains(out, `"session_id":"`+tt.want+`"`) {
				t.Fatalf("expected session %q, got: %s", tt.want, out)
			}
		})
	}
}

func TestSessionHandlerNilBase(t *testing.T) {
	if _, ok := newSessionIDHandler(nil, "run-1").(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when base is nil")
	}
}

func TestSessionHandlerEmptySessionReturnsBase(t *testing.T) {
	base := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	if handler := newSessionIDHandler(base, ""); handler != slog.Handler(base) {
		t.Fatalf("expected base handler for empty session, got: %T", handler)
	}
}
