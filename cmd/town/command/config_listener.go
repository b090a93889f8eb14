package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-town/internal/directory"
	"github.com/pixil98/go-town/internal/gateway"
	"github.com/pixil98/go-town/internal/listener"
)

type ListenerConfig struct {
	Port uint16 `json:"port"`
}

func (cl *ListenerConfig) validate() error {
	el := errors.NewErrorList()

	if cl.Port == 0 {
		el.Add(fmt.Errorf("port must be set to a positive integer"))
	}

	return el.Err()
}

func (cl *ListenerConfig) buildListener(d *directory.TownDirectory, cm *gateway.ConnectionManager) *listener.WebListener {
	return listener.NewWebListener(cl.Port, listener.NewHandler(d, cm))
}
