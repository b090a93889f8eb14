// Package directory holds the process-wide registry of active towns. It
// is the only structure mutated from multiple independent session
// contexts concurrently, so it guards its map with its own lock;
// everything inside one town is serialized by that town.
package directory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pixil98/go-town/internal/mapdesc"
	"github.com/pixil98/go-town/internal/protocol"
	"github.com/pixil98/go-town/internal/town"
)

// TownDirectory creates, finds, and deletes towns. It is constructed at
// process start, injected into the transport layers, and torn down with
// the process.
type TownDirectory struct {
	mu    sync.RWMutex
	towns map[string]*town.Town

	pub            town.Publisher
	store          town.Store
	video          town.VideoProvider
	defaultMapPath string
	capacity       int
	decayPerTick   int
}

type Opt func(*TownDirectory)

// WithCapacity sets the occupancy cap applied to new towns.
func WithCapacity(n int) Opt {
	return func(d *TownDirectory) {
		d.capacity = n
	}
}

// WithDecayPerTick sets the meter decay applied on every scheduler tick.
func WithDecayPerTick(n int) Opt {
	return func(d *TownDirectory) {
		d.decayPerTick = n
	}
}

func New(pub town.Publisher, store town.Store, video town.VideoProvider, defaultMapPath string, opts ...Opt) *TownDirectory {
	d := &TownDirectory{
		towns:          make(map[string]*town.Town),
		pub:            pub,
		store:          store,
		video:          video,
		defaultMapPath: defaultMapPath,
		capacity:       town.DefaultCapacity,
		decayPerTick:   1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start blocks until shutdown, then closes every remaining town.
func (d *TownDirectory) Start(ctx context.Context) error {
	<-ctx.Done()

	d.mu.Lock()
	defer d.mu.Unlock()
	for id, t := range d.towns {
		t.DisconnectAllPlayers()
		delete(d.towns, id)
	}
	return nil
}

// Tick applies one decay step to every live town's pets.
func (d *TownDirectory) Tick(ctx context.Context) error {
	return d.Decay(d.decayPerTick)
}

// Decay subtracts delta from all pet meters in all towns.
func (d *TownDirectory) Decay(delta int) error {
	d.mu.RLock()
	towns := make([]*town.Town, 0, len(d.towns))
	for _, t := range d.towns {
		towns = append(towns, t)
	}
	d.mu.RUnlock()

	for _, t := range towns {
		t.DecayStats(delta)
	}
	return nil
}

// CreateTown builds a new town from a map description and registers it.
// It returns the town id and the plaintext update password; the
// password is never recoverable afterwards.
func (d *TownDirectory) CreateTown(friendlyName string, publiclyListed bool, mapPath string) (string, string, error) {
	if friendlyName == "" {
		return "", "", fmt.Errorf("friendly name is required")
	}
	if mapPath == "" {
		mapPath = d.defaultMapPath
	}

	m, err := mapdesc.Load(mapPath)
	if err != nil {
		return "", "", fmt.Errorf("loading map: %w", err)
	}
	areas, err := m.BuildInteractables()
	if err != nil {
		return "", "", fmt.Errorf("building interactables: %w", err)
	}

	password := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("hashing update password: %w", err)
	}

	id := uuid.NewString()
	t := town.New(id, friendlyName, publiclyListed, d.pub, d.store, d.video,
		town.WithCapacity(d.capacity),
		town.WithUpdatePasswordHash(hash),
	)
	if err := t.InitializeFromMap(m.Entry, areas); err != nil {
		return "", "", fmt.Errorf("initializing town: %w", err)
	}

	d.mu.Lock()
	d.towns[id] = t
	d.mu.Unlock()

	return id, password, nil
}

// GetTown returns the town with the given id, or nil.
func (d *TownDirectory) GetTown(id string) *town.Town {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.towns[id]
}

// ListTowns summarizes all publicly listed towns.
func (d *TownDirectory) ListTowns() []protocol.TownSummary {
	d.mu.RLock()
	towns := make([]*town.Town, 0, len(d.towns))
	for _, t := range d.towns {
		towns = append(towns, t)
	}
	d.mu.RUnlock()

	out := make([]protocol.TownSummary, 0, len(towns))
	for _, t := range towns {
		if !t.PubliclyListed() {
			continue
		}
		out = append(out, protocol.TownSummary{
			TownID:           t.ID(),
			FriendlyName:     t.FriendlyName(),
			CurrentOccupancy: t.Occupancy(),
			MaximumOccupancy: t.Capacity(),
		})
	}
	return out
}

// UpdateTown applies settings changes after checking the update
// password. It reports false when the town doesn't exist or the
// password doesn't match.
func (d *TownDirectory) UpdateTown(id, password string, update protocol.TownSettingsUpdate) bool {
	t := d.GetTown(id)
	if t == nil || !t.CheckUpdatePassword(password) {
		return false
	}
	t.UpdateSettings(update)
	return true
}

// DeleteTown tears a town down, forcibly disconnecting its players. It
// reports false when the town doesn't exist or the password doesn't
// match.
func (d *TownDirectory) DeleteTown(id, password string) bool {
	t := d.GetTown(id)
	if t == nil || !t.CheckUpdatePassword(password) {
		return false
	}

	d.mu.Lock()
	delete(d.towns, id)
	d.mu.Unlock()

	t.DisconnectAllPlayers()
	return true
}
