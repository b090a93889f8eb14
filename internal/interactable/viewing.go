package interactable

import "github.com/pixil98/go-town/internal/protocol"

// ViewingArea is a shared-media area. It becomes active once a video has
// been set; playback state is then updated through UpdateModel as clients
// report progress.
type ViewingArea struct {
	area
	video      string
	isPlaying  bool
	elapsedSec float64
}

func NewViewingArea(id string, rect Rect) *ViewingArea {
	return &ViewingArea{area: newArea(id, rect)}
}

func (v *ViewingArea) Type() string {
	return TypeViewingArea
}

func (v *ViewingArea) Active() bool {
	return v.video != ""
}

func (v *ViewingArea) Video() string {
	return v.video
}

// Configure sets the initial video. It fails when no video is given or
// one is already set.
func (v *ViewingArea) Configure(model protocol.Interactable) bool {
	if model.Video == "" || v.video != "" {
		return false
	}
	v.UpdateModel(model)
	return true
}

// UpdateModel applies a playback state update from a client.
func (v *ViewingArea) UpdateModel(model protocol.Interactable) {
	v.video = model.Video
	v.isPlaying = model.IsPlaying
	v.elapsedSec = model.ElapsedSec
}

func (v *ViewingArea) ToModel() protocol.Interactable {
	return protocol.Interactable{
		ID:            v.id,
		Type:          TypeViewingArea,
		OccupantsByID: v.OccupantIDs(),
		Video:         v.video,
		IsPlaying:     v.isPlaying,
		ElapsedSec:    v.elapsedSec,
	}
}

func (v *ViewingArea) HandleCommand(cmd *protocol.InteractableCommand, requesterID string) (any, error) {
	return nil, NewValidationError("viewing area %s does not accept command %q", v.id, cmd.Kind)
}
