// Package mapdesc loads static town map descriptions: the declared
// interactable areas and the entry point where new players spawn. A map
// file declares geometry only; area payloads (topics, videos) are
// configured later through the town's own operations.
package mapdesc

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-town/internal/interactable"
	"github.com/pixil98/go-town/internal/protocol"
)

// Object declares one interactable area in the map.
type Object struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Map is a parsed map description.
type Map struct {
	Entry   protocol.PlayerLocation `json:"entry"`
	Objects []Object                `json:"objects"`
}

// Load reads and validates a map description file.
func Load(path string) (*Map, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening map file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return Parse(file)
}

// Parse reads and validates a map description from r.
func Parse(r io.Reader) (*Map, error) {
	var m Map
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("unmarshalling map: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks each declared object's shape. Cross-object invariants
// (unique ids, no overlap) are enforced at town initialization.
func (m *Map) Validate() error {
	el := errors.NewErrorList()

	if m.Entry.Rotation == "" {
		m.Entry.Rotation = protocol.RotationFront
	}

	for i, o := range m.Objects {
		if o.ID == "" {
			el.Add(fmt.Errorf("object %d: id is required", i))
		}
		switch o.Type {
		case interactable.TypeConversationArea,
			interactable.TypeViewingArea,
			interactable.TypeGameArea,
			interactable.TypeHospitalArea:
		default:
			el.Add(fmt.Errorf("object %q: unknown type %q", o.ID, o.Type))
		}
		if o.Width <= 0 || o.Height <= 0 {
			el.Add(fmt.Errorf("object %q: width and height must be positive", o.ID))
		}
	}

	return el.Err()
}

// BuildInteractables instantiates the declared areas.
func (m *Map) BuildInteractables() ([]interactable.Interactable, error) {
	areas := make([]interactable.Interactable, 0, len(m.Objects))
	for _, o := range m.Objects {
		area, err := interactable.New(o.Type, o.ID, interactable.Rect{
			X:      o.X,
			Y:      o.Y,
			Width:  o.Width,
			Height: o.Height,
		})
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", o.ID, err)
		}
		areas = append(areas, area)
	}
	return areas, nil
}
