package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

// LogSink writes audit events to the logger. It backs the memory store
// backend, which has no audit collection.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) InsertLoginEvent(_ context.Context, event *domain.LoginEvent) error {
	s.log.Info().
		Str("kind", string(event.Kind)).
		Str("username", event.Username).
		Str("state", string(event.State)).
		Str("origin", string(event.Origin)).
		Str("remote_addr", event.RemoteAddr).
		Str("reason", event.Reason).
		Time("at", event.At).
		Msg("login event")
	return nil
}
