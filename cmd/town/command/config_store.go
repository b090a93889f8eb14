package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-town/internal/persist"
	"github.com/pixil98/go-town/internal/town"
)

type StoreType int

const (
	StoreTypeMemory StoreType = iota
	StoreTypeSqlite
)

func (st *StoreType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "memory":
		*st = StoreTypeMemory
	case "sqlite":
		*st = StoreTypeSqlite
	default:
		return fmt.Errorf("unknown store type: %s", text)
	}
	return nil
}

type StoreConfig struct {
	Type StoreType `json:"type"`
	Path string    `json:"path,omitempty"`
}

func (c *StoreConfig) validate() error {
	el := errors.NewErrorList()

	if c.Type == StoreTypeSqlite && c.Path == "" {
		el.Add(fmt.Errorf("path is required for the sqlite store"))
	}

	return el.Err()
}

func (c *StoreConfig) buildStore() (town.Store, error) {
	switch c.Type {
	case StoreTypeMemory:
		return persist.NewMemoryStore(), nil
	case StoreTypeSqlite:
		return persist.NewSQLiteStore(c.Path)
	default:
		return nil, fmt.Errorf("unknown store type: %v", c.Type)
	}
}
