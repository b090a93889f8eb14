package town

import "github.com/pixil98/go-town/internal/protocol"

// ChatHistoryCap bounds the number of retained chat messages per town.
// The oldest message is evicted first.
const ChatHistoryCap = 200

// chatLog is a bounded ring of recent chat messages.
type chatLog struct {
	messages []protocol.ChatMessage
}

func (c *chatLog) add(msg protocol.ChatMessage) {
	c.messages = append(c.messages, msg)
	if len(c.messages) > ChatHistoryCap {
		c.messages = c.messages[1:]
	}
}

// recent returns retained messages in arrival order, optionally filtered
// by interactable id. The empty filter selects town-wide messages.
func (c *chatLog) recent(interactableID string) []protocol.ChatMessage {
	out := make([]protocol.ChatMessage, 0, len(c.messages))
	for _, m := range c.messages {
		if m.InteractableID == interactableID {
			out = append(out, m)
		}
	}
	return out
}

// all returns every retained message in arrival order.
func (c *chatLog) all() []protocol.ChatMessage {
	out := make([]protocol.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}
