package interactable

import "github.com/pixil98/go-town/internal/protocol"

// ConversationArea is a free-discussion area. It becomes active once a
// topic has been set, and the topic may be set exactly once while empty.
type ConversationArea struct {
	area
	topic string
}

func NewConversationArea(id string, rect Rect) *ConversationArea {
	return &ConversationArea{area: newArea(id, rect)}
}

func (c *ConversationArea) Type() string {
	return TypeConversationArea
}

func (c *ConversationArea) Active() bool {
	return c.topic != ""
}

func (c *ConversationArea) Topic() string {
	return c.topic
}

// SetTopic configures the area. It fails when the topic is empty or the
// area is already configured.
func (c *ConversationArea) SetTopic(topic string) bool {
	if topic == "" || c.topic != "" {
		return false
	}
	c.topic = topic
	return true
}

func (c *ConversationArea) ToModel() protocol.Interactable {
	return protocol.Interactable{
		ID:            c.id,
		Type:          TypeConversationArea,
		OccupantsByID: c.OccupantIDs(),
		Topic:         c.topic,
	}
}

func (c *ConversationArea) HandleCommand(cmd *protocol.InteractableCommand, requesterID string) (any, error) {
	return nil, NewValidationError("conversation area %s does not accept command %q", c.id, cmd.Kind)
}
