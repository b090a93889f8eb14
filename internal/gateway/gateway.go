// Package gateway adapts one websocket connection to its town: it
// decodes inbound named events, delegates them to the town, and pumps
// broadcasts from the player's delivery channel back onto the socket.
// All writes to a connection happen on its session goroutine.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/pixil98/go-town/internal/directory"
	"github.com/pixil98/go-town/internal/messaging"
	"github.com/pixil98/go-town/internal/protocol"
	"github.com/pixil98/go-town/internal/town"
)

// deliveryBuffer bounds per-connection queued broadcasts. A client that
// cannot drain its queue loses messages rather than stalling the
// publisher.
const deliveryBuffer = 64

// Subscriber provides the ability to subscribe to message subjects.
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (unsubscribe func(), err error)
}

// JoinRequest carries the already-authenticated identity of a
// connecting client.
type JoinRequest struct {
	TownID   string
	UserID   string
	UserName string
}

// ConnectionManager builds a session for every accepted connection.
type ConnectionManager struct {
	directory *directory.TownDirectory
	store     town.Store
	sub       Subscriber
}

func NewConnectionManager(d *directory.TownDirectory, store town.Store, sub Subscriber) *ConnectionManager {
	return &ConnectionManager{
		directory: d,
		store:     store,
		sub:       sub,
	}
}

// AcceptConnection runs a session to completion and logs its outcome.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn *websocket.Conn, req JoinRequest) {
	err := m.runSession(ctx, conn, req)
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		slog.WarnContext(ctx, "player session ended", "town", req.TownID, "user", req.UserID, "error", err)
	}
}

func (m *ConnectionManager) runSession(ctx context.Context, conn *websocket.Conn, req JoinRequest) error {
	defer conn.Close()

	t := m.directory.GetTown(req.TownID)
	if t == nil {
		return fmt.Errorf("no such town %s", req.TownID)
	}

	// The durable pet snapshot revives the player's pet on join. Losing
	// it is survivable; losing the participant record is not (AddPlayer
	// enforces that).
	petSnapshot, err := m.store.GetPet(ctx, req.UserID)
	if err != nil {
		slog.WarnContext(ctx, "fetching pet snapshot", "user", req.UserID, "error", err)
		petSnapshot = nil
	}

	player, err := t.AddPlayer(ctx, req.UserID, req.UserName, nil, petSnapshot)
	if err != nil {
		return fmt.Errorf("joining town: %w", err)
	}

	s := &session{
		conn:   conn,
		town:   t,
		player: player,
		sub:    m.sub,
		msgs:   make(chan []byte, deliveryBuffer),
		subs:   make(map[string]func()),
	}
	defer t.RemovePlayer(player)
	defer s.unsubscribeAll()

	if err := s.subscribe(messaging.PlayerSubject(t.ID(), player.ID())); err != nil {
		return fmt.Errorf("subscribing player channel: %w", err)
	}
	if pet := player.Pet(); pet != nil {
		if err := s.subscribe(messaging.PetStatsSubject(pet.ID())); err != nil {
			return fmt.Errorf("subscribing pet channel: %w", err)
		}
	}

	if err := s.sendInitialize(); err != nil {
		return fmt.Errorf("sending initialize: %w", err)
	}

	return s.run(ctx)
}

// session is the per-connection state: the socket, the joined player,
// the delivery channel fed by NATS subscriptions, and their unsubscribe
// functions.
type session struct {
	conn   *websocket.Conn
	town   *town.Town
	player *town.Player
	sub    Subscriber

	msgs chan []byte
	subs map[string]func()
}

func (s *session) subscribe(subject string) error {
	if old, ok := s.subs[subject]; ok {
		old()
	}
	unsub, err := s.sub.Subscribe(subject, func(data []byte) {
		select {
		case s.msgs <- data:
		default:
			// Slow client: drop rather than stall the publisher.
			slog.Warn("dropping message for slow client", "subject", subject)
		}
	})
	if err != nil {
		return err
	}
	s.subs[subject] = unsub
	return nil
}

func (s *session) unsubscribeAll() {
	for subject, unsub := range s.subs {
		unsub()
		delete(s.subs, subject)
	}
}

func (s *session) run(ctx context.Context) error {
	// Reads are pumped into a channel so the session goroutine stays the
	// sole writer to the socket.
	inbound := make(chan *protocol.Envelope)
	readErr := make(chan error, 1)
	go func() {
		defer close(inbound)
		for {
			var env protocol.Envelope
			if err := s.conn.ReadJSON(&env); err != nil {
				readErr <- err
				return
			}
			inbound <- &env
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case data := <-s.msgs:
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}
			if envelopeType(data) == protocol.MsgTownClosing {
				return nil
			}

		case env, ok := <-inbound:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if err := s.dispatch(env); err != nil {
				var vErr *town.EventError
				if errors.As(err, &vErr) {
					slog.Debug("rejected client event", "town", s.town.ID(), "user", s.player.ID(), "type", env.Type, "error", err)
					continue
				}
				return fmt.Errorf("dispatching %s: %w", env.Type, err)
			}
		}
	}
}

// dispatch routes one inbound event. Malformed payloads and rejected
// preconditions produce an EventError, which the session logs and
// survives; anything else tears the connection down.
func (s *session) dispatch(env *protocol.Envelope) error {
	switch env.Type {
	case protocol.MsgChatMessage:
		var msg protocol.ChatMessage
		if err := env.Decode(&msg); err != nil {
			return town.NewEventError("malformed chat message: %v", err)
		}
		s.town.AddChatMessage(msg)
		return nil

	case protocol.MsgPlayerMovement:
		var move protocol.PlayerMovement
		if err := env.Decode(&move); err != nil {
			return town.NewEventError("malformed movement: %v", err)
		}
		s.town.UpdatePlayerLocation(s.player, move.Location)
		return nil

	case protocol.MsgAddNewPet:
		var req protocol.AddNewPet
		if err := env.Decode(&req); err != nil {
			return town.NewEventError("malformed pet creation: %v", err)
		}
		if err := s.town.AddPet(s.player, req.PetName, req.PetID, req.PetType); err != nil {
			return town.NewEventError("creating pet: %v", err)
		}
		return s.subscribe(messaging.PetStatsSubject(req.PetID))

	case protocol.MsgUpdatePetStats:
		var req protocol.UpdatePetStats
		if err := env.Decode(&req); err != nil {
			return town.NewEventError("malformed stats update: %v", err)
		}
		if !s.town.AdjustPetMeter(s.player.ID(), req.PetID, req.Meter, req.Delta) {
			return town.NewEventError("stats update rejected for pet %s", req.PetID)
		}
		return nil

	case protocol.MsgDecreaseStats:
		var req protocol.DecreaseStats
		if err := env.Decode(&req); err != nil {
			return town.NewEventError("malformed decay trigger: %v", err)
		}
		if req.Delta <= 0 {
			return town.NewEventError("decay delta must be positive")
		}
		s.town.DecayStats(req.Delta)
		return nil

	case protocol.MsgHospitalTransition:
		var req protocol.HospitalTransition
		if err := env.Decode(&req); err != nil {
			return town.NewEventError("malformed hospital transition: %v", err)
		}
		if !s.town.HospitalTransition(s.player.ID(), req.PetID, req.Admit) {
			return town.NewEventError("hospital transition rejected for pet %s", req.PetID)
		}
		return nil

	case protocol.MsgInteractableUpdate:
		var model protocol.Interactable
		if err := env.Decode(&model); err != nil {
			return town.NewEventError("malformed interactable update: %v", err)
		}
		s.town.UpdateViewingArea(model, s.player.ID())
		return nil

	case protocol.MsgInteractableCommand:
		var cmd protocol.InteractableCommand
		if err := env.Decode(&cmd); err != nil {
			return town.NewEventError("malformed interactable command: %v", err)
		}
		resp := s.town.HandleInteractableCommand(&cmd, s.player.ID())
		return s.send(protocol.MsgCommandResponse, resp)

	default:
		return town.NewEventError("unknown event type %q", env.Type)
	}
}

// sendInitialize pushes the full-state snapshot for this connection.
func (s *session) sendInitialize() error {
	return s.send(protocol.MsgInitialize, protocol.Initialize{
		UserID:             s.player.ID(),
		SessionToken:       s.player.SessionToken(),
		ProviderVideoToken: s.player.VideoToken(),
		FriendlyName:       s.town.FriendlyName(),
		IsPubliclyListed:   s.town.PubliclyListed(),
		CurrentPlayers:     s.town.Players(),
		CurrentPets:        s.town.Pets(),
		Interactables:      s.town.Interactables(),
		RecentChat:         s.town.GetChatMessages(nil),
	})
}

func (s *session) send(msgType string, payload any) error {
	env, err := protocol.NewEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	return s.conn.WriteJSON(env)
}

// envelopeType peeks at the type of an already-encoded envelope.
func envelopeType(data []byte) string {
	var env protocol.Envelope
	if err := env.DecodeFrom(data); err != nil {
		return ""
	}
	return env.Type
}
