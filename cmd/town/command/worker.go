package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-town/internal/directory"
	"github.com/pixil98/go-town/internal/driver"
	"github.com/pixil98/go-town/internal/gateway"
	"github.com/pixil98/go-town/internal/messaging"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Messaging carries all fan-out to connected clients
	nats, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	publisher := messaging.NewTownPublisher(nats)

	// Durable participant and pet records
	store, err := cfg.Store.buildStore()
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	videoProvider, err := cfg.Video.buildProvider()
	if err != nil {
		return nil, fmt.Errorf("creating video provider: %w", err)
	}

	// The directory owns every active town
	var dirOpts []directory.Opt
	if cfg.Towns.Capacity > 0 {
		dirOpts = append(dirOpts, directory.WithCapacity(cfg.Towns.Capacity))
	}
	if cfg.Towns.DecayPerTick > 0 {
		dirOpts = append(dirOpts, directory.WithDecayPerTick(cfg.Towns.DecayPerTick))
	}
	townDirectory := directory.New(publisher, store, videoProvider, cfg.Towns.DefaultMap, dirOpts...)

	cm := gateway.NewConnectionManager(townDirectory, store, nats)
	web := cfg.Listener.buildListener(townDirectory, cm)

	// Setup the tick driver
	var driverOpts []driver.TownDriverOpt
	if cfg.TickInterval != "" {
		d, err := time.ParseDuration(cfg.TickInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing tick_interval: %w", err)
		}
		driverOpts = append(driverOpts, driver.WithTickLength(d))
	}
	tickDriver := driver.NewTownDriver([]driver.Manager{
		townDirectory,
	}, driverOpts...)

	// Create a worker list
	return service.WorkerList{
		"nats":      nats,
		"directory": townDirectory,
		"driver":    tickDriver,
		"listener":  web,
	}, nil
}
