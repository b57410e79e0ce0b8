package listener

import (
	"context"
	"io"
	"log/slog"

	"github.com/pixil98/go-quest/internal/session"
)

type ConnectionManager struct {
	sm *session.SessionManager
}

func NewConnectionManager(sm *session.SessionManager) *ConnectionManager {
	return &ConnectionManager{
		sm: sm,
	}
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	if err := m.sm.RunSession(ctx, conn); err != nil {
		slog.WarnContext(ctx, "player session", "error", err)
	}
}
