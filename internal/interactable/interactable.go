// Package interactable implements the rectangle-bounded areas of a town
// map: conversation, viewing, game, and hospital areas. Each variant
// shares the same membership contract and differs only in its payload
// and command semantics.
package interactable

import "github.com/pixil98/go-town/internal/protocol"

// Area type tags. These must match the type names declared for objects
// in map description files.
const (
	TypeConversationArea = "ConversationArea"
	TypeViewingArea      = "ViewingArea"
	TypeGameArea         = "GameArea"
	TypeHospitalArea     = "HospitalArea"
)

// Occupant is the subset of player state an area needs to track
// membership.
type Occupant interface {
	ID() string
	Loc() protocol.PlayerLocation
}

// Interactable is the common contract over all area variants. Mutation
// happens only under the owning town's lock; areas do no locking of
// their own.
type Interactable interface {
	ID() string
	Type() string

	// Active reports whether the area participates in region resolution.
	// Areas that are configured once from empty (conversation topic,
	// viewing video) are inactive until configured.
	Active() bool

	Rect() Rect
	Contains(loc protocol.PlayerLocation) bool
	Overlaps(other Interactable) bool

	Add(o Occupant)
	Remove(o Occupant)
	OccupantIDs() []string

	ToModel() protocol.Interactable

	// HandleCommand executes a command against this area on behalf of
	// requesterID. It returns a response payload, or a *ValidationError
	// for rejected input.
	HandleCommand(cmd *protocol.InteractableCommand, requesterID string) (any, error)
}

// area is the embedded base for every variant: identity, geometry, and
// an insertion-ordered occupant list.
type area struct {
	id        string
	rect      Rect
	occupants []string
}

func newArea(id string, rect Rect) area {
	return area{id: id, rect: rect}
}

func (a *area) ID() string {
	return a.id
}

func (a *area) Rect() Rect {
	return a.rect
}

func (a *area) Contains(loc protocol.PlayerLocation) bool {
	return a.rect.Contains(loc.X, loc.Y)
}

func (a *area) Overlaps(other Interactable) bool {
	return a.rect.Overlaps(other.Rect())
}

func (a *area) Add(o Occupant) {
	for _, id := range a.occupants {
		if id == o.ID() {
			return
		}
	}
	a.occupants = append(a.occupants, o.ID())
}

func (a *area) Remove(o Occupant) {
	for i, id := range a.occupants {
		if id == o.ID() {
			a.occupants = append(a.occupants[:i], a.occupants[i+1:]...)
			return
		}
	}
}

func (a *area) OccupantIDs() []string {
	ids := make([]string, len(a.occupants))
	copy(ids, a.occupants)
	return ids
}

// AddOccupantsWithin adds every candidate whose location falls inside the
// area's rectangle. Used when an area is configured after players have
// already wandered into its bounds.
func AddOccupantsWithin(a Interactable, candidates []Occupant) {
	for _, c := range candidates {
		if a.Contains(c.Loc()) {
			a.Add(c)
		}
	}
}
