package command

import (
	"fmt"
	"os"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	TickInterval string         `json:"tick_interval"`
	Listener     ListenerConfig `json:"listener"`
	Nats         NatsConfig     `json:"nats"`
	Store        StoreConfig    `json:"store"`
	Video        VideoConfig    `json:"video"`
	Towns        TownsConfig    `json:"towns"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d < time.Second {
			el.Add(fmt.Errorf("tick_interval must be at least 1 second"))
		}
	}

	el.Add(c.Listener.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Store.validate())
	el.Add(c.Video.validate())
	el.Add(c.Towns.validate())

	return el.Err()
}

type TownsConfig struct {
	DefaultMap   string `json:"default_map"`
	Capacity     int    `json:"capacity,omitempty"`
	DecayPerTick int    `json:"decay_per_tick,omitempty"`
}

func (c *TownsConfig) validate() error {
	el := errors.NewErrorList()

	if c.DefaultMap == "" {
		el.Add(fmt.Errorf("default_map is required"))
	} else if _, err := os.Stat(c.DefaultMap); err != nil {
		el.Add(fmt.Errorf("invalid default_map %q: %w", c.DefaultMap, err))
	}

	if c.Capacity < 0 {
		el.Add(fmt.Errorf("capacity must not be negative"))
	}
	if c.DecayPerTick < 0 {
		el.Add(fmt.Errorf("decay_per_tick must not be negative"))
	}

	return el.Err()
}
