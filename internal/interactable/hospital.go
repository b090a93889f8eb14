package interactable

import "github.com/pixil98/go-town/internal/protocol"

// Hospital area command kinds.
const (
	CmdBeginTreatment = "beginTreatment"
)

// HospitalArea is the care facility. It is always active. A treatment is
// a client-visible timed flow: beginTreatment marks the session in
// progress for the requesting owner, and the flow ends either when the
// owner requests discharge through the ordinary hospital transition, or
// when the owner leaves the area.
type HospitalArea struct {
	area
	treatingOwner string
}

func NewHospitalArea(id string, rect Rect) *HospitalArea {
	return &HospitalArea{area: newArea(id, rect)}
}

func (h *HospitalArea) Type() string {
	return TypeHospitalArea
}

func (h *HospitalArea) Active() bool {
	return true
}

// TreatmentInProgress reports whether a treatment session is running.
func (h *HospitalArea) TreatmentInProgress() bool {
	return h.treatingOwner != ""
}

// EndTreatment clears the running treatment, if owned by ownerID.
func (h *HospitalArea) EndTreatment(ownerID string) {
	if h.treatingOwner == ownerID {
		h.treatingOwner = ""
	}
}

// Remove drops the occupant; a player walking out of the area ends their
// treatment session.
func (h *HospitalArea) Remove(o Occupant) {
	h.area.Remove(o)
	h.EndTreatment(o.ID())
}

func (h *HospitalArea) ToModel() protocol.Interactable {
	return protocol.Interactable{
		ID:                  h.id,
		Type:                TypeHospitalArea,
		OccupantsByID:       h.OccupantIDs(),
		TreatmentInProgress: h.TreatmentInProgress(),
	}
}

func (h *HospitalArea) HandleCommand(cmd *protocol.InteractableCommand, requesterID string) (any, error) {
	switch cmd.Kind {
	case CmdBeginTreatment:
		return h.beginTreatment(requesterID)
	default:
		return nil, NewValidationError("hospital area %s does not accept command %q", h.id, cmd.Kind)
	}
}

func (h *HospitalArea) beginTreatment(requesterID string) (any, error) {
	inside := false
	for _, id := range h.occupants {
		if id == requesterID {
			inside = true
			break
		}
	}
	if !inside {
		return nil, NewValidationError("player %s is not inside hospital area %s", requesterID, h.id)
	}
	if h.TreatmentInProgress() {
		return nil, NewValidationError("a treatment is already in progress in area %s", h.id)
	}
	h.treatingOwner = requesterID
	return h.ToModel(), nil
}
