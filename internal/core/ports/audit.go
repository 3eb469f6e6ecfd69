package ports

import (
	"context"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

// LoginEventSink persists login audit events.
type LoginEventSink interface {
	InsertLoginEvent(ctx context.Context, event *domain.LoginEvent) error
}

// LoginAuditor accepts events for asynchronous recording. Record must not block.
type LoginAuditor interface {
	Record(event domain.LoginEvent)
}
