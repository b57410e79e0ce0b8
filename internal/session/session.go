package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pixil98/go-log"
	"github.com/pixil98/go-quest/internal/display"
	"github.com/pixil98/go-quest/internal/engine"
)

// closeReason tells a session why its manager shut it down.
type closeReason int

const (
	closedForTakeover closeReason = iota
	closedForIdle
)

// Notifier delivers out-of-band text to the players in a room.
type Notifier interface {
	NotifyRoom(ctx context.Context, roomID, exclude, text string)
}

// Session is one connected player: a connection, the player they control,
// and the message channel other sessions reach them on.
type Session struct {
	id       string
	playerID string
	conn     io.ReadWriter
	engine   *engine.Engine
	notify   Notifier

	msgs      chan []byte
	done      chan struct{}
	reason    closeReason
	closeOnce sync.Once
}

// Id returns the session's unique identifier.
func (s *Session) Id() string {
	return s.id
}

// Player returns the id of the player this session controls.
func (s *Session) Player() string {
	return s.playerID
}

func (s *Session) Play(ctx context.Context) error {
	logger := log.GetLogger(ctx).WithField("player", s.playerID)

	// Read input lines into a channel so the select loop can also react to
	// messages and shutdown.
	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(s.conn)
		for scanner.Scan() {
			inputChan <- scanner.Text()
		}
		inputErrChan <- scanner.Err()
		close(inputChan)
	}()

	// Show the player their starting room.
	res, err := s.engine.Join(ctx, s.playerID)
	if err != nil {
		return fmt.Errorf("joining world: %w", err)
	}
	if err := s.writeLine(res.Text); err != nil {
		return err
	}
	if err := s.prompt(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-s.done:
			var msg string
			if s.reason == closedForIdle {
				msg = "\nDisconnected for inactivity."
			} else {
				msg = "\nAnother connection has taken over your session."
			}
			if err := s.writeLine(msg); err != nil {
				logger.Warnf("writing disconnect message: %v", err)
			}
			return errSessionClosed

		case msg := <-s.msgs:
			if err := s.writeLine("\n" + string(msg)); err != nil {
				return err
			}
			if err := s.prompt(); err != nil {
				return err
			}

		case line, ok := <-inputChan:
			if !ok {
				// Connection lost.
				select {
				case err := <-inputErrChan:
					return err
				default:
					return nil
				}
			}

			// Any input resets the idle timer.
			s.engine.World().MarkPlayerActive(s.playerID)

			line = strings.TrimSpace(line)
			if line == "" {
				if err := s.prompt(); err != nil {
					return err
				}
				continue
			}

			text, err := s.handle(ctx, line)
			if err != nil {
				var userErr *UserError
				if errors.As(err, &userErr) {
					text = userErr.Message
				} else {
					return fmt.Errorf("executing command: %w", err)
				}
			}
			if text != "" {
				if err := s.writeLine(text); err != nil {
					return err
				}
			}

			if s.engine.World().IsQuitting(s.playerID) {
				if err := s.writeLine("Goodbye!"); err != nil {
					logger.Warnf("writing goodbye: %v", err)
				}
				return nil
			}

			if err := s.prompt(); err != nil {
				return err
			}
		}
	}
}

func (s *Session) handle(ctx context.Context, line string) (string, error) {
	cmd, err := Parse(line)
	if err != nil {
		return "", err
	}
	return s.execute(ctx, cmd)
}

func (s *Session) prompt() error {
	_, err := s.conn.Write([]byte("> "))
	return err
}

func (s *Session) writeLine(msg string) error {
	_, err := s.conn.Write([]byte(display.Wrap(msg) + "\n\n"))
	return err
}

// errSessionClosed marks a session ended by its manager rather than the
// player.
var errSessionClosed = errors.New("session closed")
