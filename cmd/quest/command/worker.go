package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-quest/internal/driver"
	"github.com/pixil98/go-quest/internal/engine"
	"github.com/pixil98/go-quest/internal/listener"
	"github.com/pixil98/go-quest/internal/session"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Load the world and compile the handler list
	world, handlers, err := cfg.Storage.BuildWorld()
	if err != nil {
		return nil, fmt.Errorf("loading world: %w", err)
	}
	eng, err := engine.NewEngine(world, handlers)
	if err != nil {
		return nil, fmt.Errorf("compiling handlers: %w", err)
	}

	// Messaging between player sessions
	natsServer, err := cfg.Nats.BuildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Session manager
	var smOpts []session.SessionManagerOpt
	if cfg.IdleTimeout != "" {
		d, err := time.ParseDuration(cfg.IdleTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing idle_timeout: %w", err)
		}
		smOpts = append(smOpts, session.WithIdleTimeout(d))
	}
	sessionManager := session.NewSessionManager(eng, natsServer, smOpts...)

	// Create listeners
	cm := listener.NewConnectionManager(sessionManager)
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		lst, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = lst
	}

	// Set up the game driver
	var driverOpts []driver.GameDriverOpt
	if cfg.TickInterval != "" {
		d, err := time.ParseDuration(cfg.TickInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing tick_interval: %w", err)
		}
		driverOpts = append(driverOpts, driver.WithTickLength(d))
	}
	gameDriver := driver.NewGameDriver([]driver.Manager{
		sessionManager,
	}, driverOpts...)

	return service.WorkerList{
		"nats":      natsServer,
		"sessions":  sessionManager,
		"driver":    gameDriver,
		"listeners": &listeners,
	}, nil
}
