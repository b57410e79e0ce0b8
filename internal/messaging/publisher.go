package messaging

import "fmt"

// PlayerSubject is the NATS subject a player's session listens on.
func PlayerSubject(playerID string) string {
	return fmt.Sprintf("player-%s", playerID)
}

// Publisher delivers messages to individual player subjects.
type Publisher struct {
	server *NatsServer
}

// NewPublisher wraps a NatsServer for per-player message delivery.
func NewPublisher(server *NatsServer) *Publisher {
	return &Publisher{server: server}
}

// PublishPlayers sends data to every listed player except exclude. Delivery
// keeps going past individual failures; the first error is returned.
func (p *Publisher) PublishPlayers(playerIDs []string, exclude string, data []byte) error {
	var firstErr error
	for _, id := range playerIDs {
		if id == exclude {
			continue
		}
		if err := p.server.Publish(PlayerSubject(id), data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
