package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-log"
	"github.com/pixil98/go-quest/internal/engine"
	"github.com/pixil98/go-quest/internal/messaging"
)

const DefaultIdleTimeout = 15 * time.Minute

var namePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]{0,23}$`)

// SessionManager owns all live sessions. It hands each new connection a
// player, wires the player's message subscription, and sweeps idle players
// on every driver tick.
type SessionManager struct {
	engine *engine.Engine
	nats   *messaging.NatsServer
	pub    *messaging.Publisher

	idleTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionManager(e *engine.Engine, nats *messaging.NatsServer, opts ...SessionManagerOpt) *SessionManager {
	m := &SessionManager{
		engine:      e,
		nats:        nats,
		pub:         messaging.NewPublisher(nats),
		idleTimeout: DefaultIdleTimeout,
		sessions:    map[string]*Session{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Start keeps the manager alive as a worker until shutdown.
func (m *SessionManager) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Tick disconnects players who have been idle past the timeout.
func (m *SessionManager) Tick(ctx context.Context) error {
	for _, playerID := range m.engine.World().IdlePlayers(m.idleTimeout) {
		m.mu.Lock()
		s := m.sessions[playerID]
		m.mu.Unlock()
		if s == nil {
			continue
		}
		log.GetLogger(ctx).Infof("disconnecting idle player %s", playerID)
		m.close(s, closedForIdle)
	}
	return nil
}

// RunSession drives one connection from greeting to disconnect.
func (m *SessionManager) RunSession(ctx context.Context, conn io.ReadWriter) error {
	playerID, err := m.greet(conn)
	if err != nil {
		return fmt.Errorf("greeting connection: %w", err)
	}

	s := &Session{
		id:       uuid.NewString(),
		playerID: playerID,
		conn:     conn,
		engine:   m.engine,
		notify:   m,
		msgs:     make(chan []byte, 16),
		done:     make(chan struct{}),
	}

	// A player gets one session; a second connection takes over.
	m.mu.Lock()
	if old := m.sessions[playerID]; old != nil {
		m.mu.Unlock()
		m.close(old, closedForTakeover)
		m.mu.Lock()
	}
	m.sessions[playerID] = s
	m.mu.Unlock()

	unsubscribe, err := m.nats.Subscribe(messaging.PlayerSubject(playerID), func(data []byte) {
		select {
		case s.msgs <- data:
		default:
			// Slow consumer; drop rather than stall the publisher.
		}
	})
	if err != nil {
		m.remove(s)
		return fmt.Errorf("subscribing player %s: %w", playerID, err)
	}
	defer unsubscribe()

	playErr := s.Play(ctx)
	m.remove(s)

	if errors.Is(playErr, errSessionClosed) && s.reason == closedForTakeover {
		// The player state now belongs to the new session.
		return nil
	}

	// Quit, disconnect, or idle: the player leaves the world.
	room, roomErr := m.engine.World().PlayerRoom(playerID)
	if err := m.engine.Leave(ctx, playerID); err != nil {
		log.GetLogger(ctx).Warnf("removing player %s: %v", playerID, err)
	}
	if roomErr == nil {
		m.NotifyRoom(ctx, room, playerID, fmt.Sprintf("%s has left.", playerID))
	}

	if playErr != nil && !errors.Is(playErr, errSessionClosed) && !errors.Is(playErr, context.Canceled) {
		return playErr
	}
	return nil
}

// greet asks the connection for a player name and normalizes it.
func (m *SessionManager) greet(conn io.ReadWriter) (string, error) {
	scanner := bufio.NewScanner(conn)
	for {
		_, err := conn.Write([]byte("By what name are you known? "))
		if err != nil {
			return "", err
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}

		name := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if namePattern.MatchString(name) {
			return name, nil
		}

		_, err = conn.Write([]byte("Names are letters, digits, and hyphens, starting with a letter.\n"))
		if err != nil {
			return "", err
		}
	}
}

// NotifyRoom sends text to every player in a room except the actor.
func (m *SessionManager) NotifyRoom(ctx context.Context, roomID, exclude, text string) {
	players := m.engine.World().PlayersInRoom(roomID)
	if err := m.pub.PublishPlayers(players, exclude, []byte(text)); err != nil {
		log.GetLogger(ctx).Warnf("notifying room %s: %v", roomID, err)
	}
}

func (m *SessionManager) close(s *Session, reason closeReason) {
	s.closeOnce.Do(func() {
		s.reason = reason
		close(s.done)
	})
}

func (m *SessionManager) remove(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[s.playerID] == s {
		delete(m.sessions, s.playerID)
	}
}
