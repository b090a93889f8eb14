// Package town implements the authoritative session state for one shared
// town: its players, their pets, and the interactable areas of the map.
// A Town is the only component that mutates this state after
// initialization; every mutating operation runs under a single
// coarse-grained lock, so per-operation invariants hold without finer
// synchronization.
package town

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pixil98/go-town/internal/interactable"
	"github.com/pixil98/go-town/internal/protocol"
)

// DefaultCapacity is the occupancy cap for towns that don't set one.
const DefaultCapacity = 50

// persistTimeout bounds every fire-and-forget persistence call.
const persistTimeout = 5 * time.Second

// Town owns all live session state for one town.
type Town struct {
	mu sync.Mutex

	id             string
	friendlyName   string
	publiclyListed bool
	capacity       int
	updateHash     []byte
	closed         bool

	entry         protocol.PlayerLocation
	players       []*Player
	pets          []*Pet
	interactables []interactable.Interactable
	chat          chatLog

	pub   Publisher
	store Store
	video VideoProvider
}

type Opt func(*Town)

// WithCapacity overrides the town's occupancy cap.
func WithCapacity(n int) Opt {
	return func(t *Town) {
		t.capacity = n
	}
}

// WithUpdatePasswordHash sets the bcrypt hash of the town's update
// credential. The plaintext is generated by the directory and returned
// to the creator exactly once.
func WithUpdatePasswordHash(hash []byte) Opt {
	return func(t *Town) {
		t.updateHash = hash
	}
}

func New(id, friendlyName string, publiclyListed bool, pub Publisher, store Store, video VideoProvider, opts ...Opt) *Town {
	t := &Town{
		id:             id,
		friendlyName:   friendlyName,
		publiclyListed: publiclyListed,
		capacity:       DefaultCapacity,
		pub:            pub,
		store:          store,
		video:          video,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// InitializeFromMap installs the map's declared areas and entry point.
// Duplicate area ids and overlapping rectangles are fatal configuration
// errors: the town must not start. These invariants are checked here
// once and never re-checked per update.
func (t *Town) InitializeFromMap(entry protocol.PlayerLocation, areas []interactable.Interactable) error {
	seen := make(map[string]bool, len(areas))
	for _, a := range areas {
		if seen[a.ID()] {
			return fmt.Errorf("duplicate interactable id %q", a.ID())
		}
		seen[a.ID()] = true
	}
	for i, a := range areas {
		for _, b := range areas[i+1:] {
			if a.Overlaps(b) {
				return fmt.Errorf("interactables %q and %q overlap", a.ID(), b.ID())
			}
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entry = entry
	t.interactables = areas
	return nil
}

func (t *Town) ID() string {
	return t.id
}

func (t *Town) FriendlyName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.friendlyName
}

func (t *Town) PubliclyListed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.publiclyListed
}

func (t *Town) Capacity() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.capacity
}

func (t *Town) Occupancy() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.players)
}

// CheckUpdatePassword compares a presented credential against the town's
// stored hash.
func (t *Town) CheckUpdatePassword(password string) bool {
	t.mu.Lock()
	hash := t.updateHash
	t.mu.Unlock()
	if len(hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// UpdateSettings applies changed settings and broadcasts the update.
func (t *Town) UpdateSettings(update protocol.TownSettingsUpdate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if update.FriendlyName != nil {
		t.friendlyName = *update.FriendlyName
	}
	if update.IsPubliclyListed != nil {
		t.publiclyListed = *update.IsPubliclyListed
	}
	t.broadcast(protocol.MsgTownSettingsUpdated, update, "")
}

// AddPlayer joins a user to the town: it ensures a durable participant
// record exists (failure here is fatal to the join), provisions a video
// credential, places the player at the map entry point (or loc when the
// caller provides a last known location), revives a persisted pet
// snapshot if one is supplied, and notifies every other player.
func (t *Town) AddPlayer(ctx context.Context, userID, userName string, loc *protocol.PlayerLocation, petSnapshot *protocol.Pet) (*Player, error) {
	start := t.entry
	if loc != nil {
		start = *loc
	}

	// Join preconditions talk to collaborators before touching town
	// state; nothing is mutated until both succeed.
	if _, err := t.store.GetOrCreatePlayer(ctx, userID, userName, start); err != nil {
		return nil, fmt.Errorf("ensuring participant record: %w", err)
	}
	videoToken, err := t.video.GetToken(ctx, t.id, userID)
	if err != nil {
		return nil, fmt.Errorf("provisioning video token: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, fmt.Errorf("town %s is closing", t.id)
	}
	if len(t.players) >= t.capacity {
		return nil, ErrTownFull
	}

	player := NewPlayer(userID, userName, start)
	player.videoToken = videoToken

	// Resolve region membership for the spawn position so the join
	// broadcast already carries the player's current area.
	if target := t.resolveArea(player.location); target != nil {
		target.Add(player)
		player.location.InteractableID = target.ID()
	}

	t.players = append(t.players, player)

	if petSnapshot != nil {
		pet := RevivePet(petSnapshot, player.id, player.location)
		player.pet = pet
		t.pets = append(t.pets, pet)
	}

	t.persistAsync("set login time", func(ctx context.Context) error {
		return t.store.SetLoginTime(ctx, userID, time.Now())
	})

	t.broadcast(protocol.MsgPlayerJoined, player.ToModel(), player.id)
	return player, nil
}

// RemovePlayer destroys all live state for a player: area membership
// (with the area's exit side effects), the player itself, and their pet.
// The durable pet record is the persistence layer's concern and is not
// deleted here.
func (t *Town) RemovePlayer(p *Player) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p.location.InteractableID != "" {
		if area := t.findArea(p.location.InteractableID); area != nil {
			area.Remove(p)
		}
	}

	for i, other := range t.players {
		if other.id == p.id {
			t.players = append(t.players[:i], t.players[i+1:]...)
			break
		}
	}
	for i, pet := range t.pets {
		if pet.ownerID == p.id {
			t.pets = append(t.pets[:i], t.pets[i+1:]...)
			break
		}
	}
	p.pet = nil

	t.persistAsync("set logout time", func(ctx context.Context) error {
		return t.store.SetLogoutTime(ctx, p.id, time.Now())
	})

	t.broadcast(protocol.MsgPlayerDisconnect, p.ToModel(), p.id)
}

// UpdatePlayerLocation moves a player. Crossing an area boundary removes
// the player from the old area and adds them to the new one; this
// transition is the sole trigger for area enter/exit side effects. The
// player's pet mirrors the new location.
func (t *Town) UpdatePlayerLocation(p *Player, loc protocol.PlayerLocation) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.findArea(p.location.InteractableID)
	if prev != nil && prev.Contains(loc) {
		loc.InteractableID = prev.ID()
	} else {
		if prev != nil {
			prev.Remove(p)
		}
		if next := t.resolveArea(loc); next != nil {
			next.Add(p)
			loc.InteractableID = next.ID()
		} else {
			loc.InteractableID = ""
		}
	}

	p.location = loc
	if p.pet != nil {
		p.pet.SetLocation(loc)
	}

	t.persistAsync("set location", func(ctx context.Context) error {
		return t.store.SetLocation(ctx, p.id, loc)
	})

	t.broadcast(protocol.MsgPlayerMoved, p.ToModel(), p.id)
}

// AddPet creates a pet for a player. A second creation naming the same
// pet id is a no-op success; a creation for an owner who already has a
// different pet is rejected with no state change and no broadcast.
func (t *Town) AddPet(p *Player, petName, petID string, petType protocol.PetType) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p.pet != nil {
		if p.pet.id == petID {
			return nil
		}
		return ErrPetExists
	}

	pet := NewPet(petID, petName, petType, p.id, p.location)
	p.pet = pet
	t.pets = append(t.pets, pet)

	model := pet.ToModel()
	t.persistAsync("create pet", func(ctx context.Context) error {
		ok, err := t.store.CreatePet(ctx, model)
		if err == nil && !ok {
			return fmt.Errorf("owner %s already has a pet on record", p.id)
		}
		return err
	})

	t.broadcast(protocol.MsgPetAdded, model, "")
	return nil
}

// AdjustPetMeter applies a signed delta to one meter of ownerID's pet.
// It reports false, with no state change and no broadcast, when the
// meter has bottomed out, the pet is hospitalized, or the pet doesn't
// belong to ownerID.
func (t *Town) AdjustPetMeter(ownerID, petID string, meter protocol.Meter, delta int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	pet := t.findPet(petID)
	if pet == nil || pet.ownerID != ownerID {
		return false
	}
	if !pet.Adjust(meter, delta) {
		return false
	}

	t.persistPetStats(pet)
	t.publishPetStats(pet)
	t.broadcast(protocol.MsgPetStatsChanged, pet.ToModel(), "")
	return true
}

// DecayStats subtracts delta from every meter of every live pet,
// clamping at the floor. There is no dedicated decay broadcast: holders
// observe new meters through the per-pet stats channel.
func (t *Town) DecayStats(delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, pet := range t.pets {
		pet.Decay(delta)
		t.persistPetStats(pet)
		t.publishPetStats(pet)
	}
}

// HospitalTransition admits or discharges ownerID's pet. Admission
// requires the pet to be sick and not yet admitted; discharge requires
// it to be admitted and resets bottomed-out meters to full.
func (t *Town) HospitalTransition(ownerID, petID string, admit bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	pet := t.findPet(petID)
	if pet == nil || pet.ownerID != ownerID {
		return false
	}

	var ok bool
	if admit {
		ok = pet.Hospitalize()
	} else {
		ok = pet.Discharge()
	}
	if !ok {
		return false
	}

	if !admit {
		// Discharge completes any treatment session the owner started.
		for _, a := range t.interactables {
			if h, isHospital := a.(*interactable.HospitalArea); isHospital {
				h.EndTreatment(ownerID)
			}
		}
	}

	t.persistPetStats(pet)
	inHospital := pet.inHospital
	t.persistAsync("set hospital status", func(ctx context.Context) error {
		return t.store.SetHospitalStatus(ctx, ownerID, petID, inHospital)
	})
	t.publishPetStats(pet)
	t.broadcast(protocol.MsgPetStatsChanged, pet.ToModel(), "")
	return true
}

// AddChatMessage records a chat message in the bounded history and
// forwards it to every player.
func (t *Town) AddChatMessage(msg protocol.ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chat.add(msg)
	t.broadcast(protocol.MsgChatMessage, msg, "")
}

// GetChatMessages returns retained chat messages. A nil filter returns
// everything; otherwise only messages scoped to the given interactable
// id (the empty id selects town-wide messages).
func (t *Town) GetChatMessages(interactableID *string) []protocol.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	if interactableID == nil {
		return t.chat.all()
	}
	return t.chat.recent(*interactableID)
}

// AddConversationArea configures a declared conversation area with its
// topic. Areas are configured exactly once from empty; the id must match
// a map declaration. On success, players already inside the rectangle
// are added to the membership and the update is broadcast.
func (t *Town) AddConversationArea(model protocol.Interactable) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	conv, isConv := t.findArea(model.ID).(*interactable.ConversationArea)
	if !isConv || !conv.SetTopic(model.Topic) {
		return false
	}
	t.absorbPlayersWithin(conv)
	t.broadcast(protocol.MsgInteractableUpdate, conv.ToModel(), "")
	return true
}

// AddViewingArea configures a declared viewing area with its video,
// following the same configure-once-from-empty rule.
func (t *Town) AddViewingArea(model protocol.Interactable) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	viewing, isViewing := t.findArea(model.ID).(*interactable.ViewingArea)
	if !isViewing || !viewing.Configure(model) {
		return false
	}
	t.absorbPlayersWithin(viewing)
	t.broadcast(protocol.MsgInteractableUpdate, viewing.ToModel(), "")
	return true
}

// UpdateViewingArea applies a playback state update from one client and
// rebroadcasts it to the others. Updates naming unknown or non-viewing
// areas are ignored.
func (t *Town) UpdateViewingArea(model protocol.Interactable, fromPlayerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	viewing, isViewing := t.findArea(model.ID).(*interactable.ViewingArea)
	if !isViewing || !viewing.Active() {
		return
	}
	viewing.UpdateModel(model)
	t.broadcast(protocol.MsgInteractableUpdate, viewing.ToModel(), fromPlayerID)
}

// HandleInteractableCommand dispatches a correlated command to its
// target area and translates the outcome into a response for the
// requester. Validation failures and unexpected failures are both
// confined to the response; they never disturb the town's processing of
// subsequent events.
func (t *Town) HandleInteractableCommand(cmd *protocol.InteractableCommand, requesterID string) protocol.CommandResponse {
	t.mu.Lock()
	defer t.mu.Unlock()

	resp := protocol.CommandResponse{
		CommandID:      cmd.CommandID,
		InteractableID: cmd.InteractableID,
	}

	area := t.findArea(cmd.InteractableID)
	if area == nil {
		resp.Error = fmt.Sprintf("No such interactable %s", cmd.InteractableID)
		return resp
	}

	payload, err := t.dispatchCommand(area, cmd, requesterID)
	if err != nil {
		if vErr, isValidation := err.(*interactable.ValidationError); isValidation {
			resp.Error = vErr.Message
		} else {
			slog.Warn("interactable command failed", "town", t.id, "interactable", cmd.InteractableID, "kind", cmd.Kind, "error", err)
			resp.Error = "Unknown error"
		}
		return resp
	}

	resp.IsOK = true
	resp.Payload = payload
	t.broadcast(protocol.MsgInteractableUpdate, area.ToModel(), "")
	return resp
}

// dispatchCommand guards the polymorphic handler call: a panicking
// variant is converted into an ordinary error so one bad command cannot
// take down the town.
func (t *Town) dispatchCommand(area interactable.Interactable, cmd *protocol.InteractableCommand, requesterID string) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command handler panic: %v", r)
		}
	}()
	return area.HandleCommand(cmd, requesterID)
}

// GetPlayerBySessionToken finds the player holding a session token, or
// nil when the token is not valid for this town.
func (t *Town) GetPlayerBySessionToken(token string) *Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.players {
		if p.sessionToken == token {
			return p
		}
	}
	return nil
}

// Players snapshots the current player models.
func (t *Town) Players() []protocol.Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]protocol.Player, len(t.players))
	for i, p := range t.players {
		out[i] = p.ToModel()
	}
	return out
}

// Pets snapshots the current pet models.
func (t *Town) Pets() []protocol.Pet {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]protocol.Pet, len(t.pets))
	for i, p := range t.pets {
		out[i] = p.ToModel()
	}
	return out
}

// Interactables snapshots the current area models.
func (t *Town) Interactables() []protocol.Interactable {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]protocol.Interactable, len(t.interactables))
	for i, a := range t.interactables {
		out[i] = a.ToModel()
	}
	return out
}

// DisconnectAllPlayers tells every client the town is closing and marks
// the town closed; subsequent joins fail. Connections tear themselves
// down when they observe the closing message.
func (t *Town) DisconnectAllPlayers() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.broadcast(protocol.MsgTownClosing, nil, "")
}

// findArea returns the area with the given id, or nil. An empty id
// always resolves to nil.
func (t *Town) findArea(id string) interactable.Interactable {
	if id == "" {
		return nil
	}
	for _, a := range t.interactables {
		if a.ID() == id {
			return a
		}
	}
	return nil
}

// resolveArea returns the first active area containing loc, in map
// declaration order. Declaration order is deterministic, which keeps the
// (impossible post-init) overlap case well-defined.
func (t *Town) resolveArea(loc protocol.PlayerLocation) interactable.Interactable {
	for _, a := range t.interactables {
		if a.Active() && a.Contains(loc) {
			return a
		}
	}
	return nil
}

// absorbPlayersWithin adds every player standing inside a freshly
// configured area, updating their location's area reference.
func (t *Town) absorbPlayersWithin(area interactable.Interactable) {
	for _, p := range t.players {
		if p.location.InteractableID == "" && area.Contains(p.location) {
			area.Add(p)
			p.location.InteractableID = area.ID()
		}
	}
}

func (t *Town) findPet(petID string) *Pet {
	for _, p := range t.pets {
		if p.id == petID {
			return p
		}
	}
	return nil
}

// persistPetStats records a pet's current meters and sick flag.
func (t *Town) persistPetStats(pet *Pet) {
	ownerID, petID := pet.ownerID, pet.id
	health, hunger, happiness, sick := pet.health, pet.hunger, pet.happiness, pet.sick
	t.persistAsync("set pet stats", func(ctx context.Context) error {
		if err := t.store.SetMeter(ctx, ownerID, petID, protocol.MeterHealth, health); err != nil {
			return err
		}
		if err := t.store.SetMeter(ctx, ownerID, petID, protocol.MeterHunger, hunger); err != nil {
			return err
		}
		if err := t.store.SetMeter(ctx, ownerID, petID, protocol.MeterHappiness, happiness); err != nil {
			return err
		}
		return t.store.SetSickStatus(ctx, ownerID, petID, sick)
	})
}

// publishPetStats emits the pet's new stats on its dedicated channel.
// This is the seam a UI layer subscribes to for redraws without a full
// snapshot broadcast.
func (t *Town) publishPetStats(pet *Pet) {
	env, err := protocol.NewEnvelope(protocol.MsgPetStatsChanged, pet.ToModel())
	if err != nil {
		slog.Warn("encoding pet stats", "pet", pet.id, "error", err)
		return
	}
	data, err := env.Encode()
	if err != nil {
		slog.Warn("encoding pet stats", "pet", pet.id, "error", err)
		return
	}
	if err := t.pub.PublishPetStats(pet.id, data); err != nil {
		slog.Warn("publishing pet stats", "pet", pet.id, "error", err)
	}
}

// broadcast fans an event out to every player except excludeID. It runs
// under the town lock: the emitted snapshot is exactly the registry
// state at the moment the mutating operation completed.
func (t *Town) broadcast(msgType string, payload any, excludeID string) {
	env, err := protocol.NewEnvelope(msgType, payload)
	if err != nil {
		slog.Warn("encoding broadcast", "town", t.id, "type", msgType, "error", err)
		return
	}
	data, err := env.Encode()
	if err != nil {
		slog.Warn("encoding broadcast", "town", t.id, "type", msgType, "error", err)
		return
	}
	for _, p := range t.players {
		if p.id == excludeID {
			continue
		}
		if err := t.pub.PublishToPlayer(t.id, p.id, data); err != nil {
			slog.Warn("broadcasting", "town", t.id, "type", msgType, "player", p.id, "error", err)
		}
	}
}

// persistAsync runs a best-effort persistence call off the broadcast
// path. The in-memory state and its broadcast are already the truth by
// the time the call runs; a failure is logged, never surfaced to the
// client.
func (t *Town) persistAsync(op string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			slog.Warn("persistence failed", "town", t.id, "op", op, "error", err)
		}
	}()
}
