// Package persist provides implementations of the town persistence
// boundary: a SQLite-backed store for real deployments and an in-memory
// store for tests and ephemeral servers.
package persist

import (
	"context"
	"sync"
	"time"

	"github.com/pixil98/go-town/internal/protocol"
)

type memoryPlayer struct {
	model      protocol.Player
	loginTime  time.Time
	logoutTime time.Time
}

// MemoryStore is a thread-safe in-memory store. Records live for the
// lifetime of the process.
type MemoryStore struct {
	mu      sync.Mutex
	players map[string]*memoryPlayer
	pets    map[string]protocol.Pet // keyed by owner id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players: make(map[string]*memoryPlayer),
		pets:    make(map[string]protocol.Pet),
	}
}

func (s *MemoryStore) GetOrCreatePlayer(_ context.Context, userID, userName string, loc protocol.PlayerLocation) (*protocol.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[userID]; ok {
		model := p.model
		return &model, nil
	}
	p := &memoryPlayer{model: protocol.Player{ID: userID, UserName: userName, Location: loc}}
	s.players[userID] = p
	model := p.model
	return &model, nil
}

func (s *MemoryStore) SetLocation(_ context.Context, userID string, loc protocol.PlayerLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[userID]; ok {
		p.model.Location = loc
	}
	return nil
}

func (s *MemoryStore) SetLoginTime(_ context.Context, userID string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[userID]; ok {
		p.loginTime = t
	}
	return nil
}

func (s *MemoryStore) SetLogoutTime(_ context.Context, userID string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[userID]; ok {
		p.logoutTime = t
	}
	return nil
}

func (s *MemoryStore) GetLogoutTime(_ context.Context, userID string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[userID]; ok {
		return p.logoutTime, nil
	}
	return time.Time{}, nil
}

func (s *MemoryStore) GetPet(_ context.Context, userID string) (*protocol.Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pet, ok := s.pets[userID]; ok {
		return &pet, nil
	}
	return nil, nil
}

func (s *MemoryStore) CreatePet(_ context.Context, pet protocol.Pet) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.pets[pet.OwnerID]; ok {
		// Re-creating the same pet is a no-op success.
		return existing.ID == pet.ID, nil
	}
	s.pets[pet.OwnerID] = pet
	return true, nil
}

func (s *MemoryStore) SetMeter(_ context.Context, ownerID, petID string, meter protocol.Meter, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pet, ok := s.pets[ownerID]
	if !ok || pet.ID != petID {
		return nil
	}
	switch meter {
	case protocol.MeterHealth:
		pet.Health = value
	case protocol.MeterHunger:
		pet.Hunger = value
	case protocol.MeterHappiness:
		pet.Happiness = value
	}
	s.pets[ownerID] = pet
	return nil
}

func (s *MemoryStore) SetHospitalStatus(_ context.Context, ownerID, petID string, inHospital bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pet, ok := s.pets[ownerID]; ok && pet.ID == petID {
		pet.InHospital = inHospital
		s.pets[ownerID] = pet
	}
	return nil
}

func (s *MemoryStore) SetSickStatus(_ context.Context, ownerID, petID string, sick bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pet, ok := s.pets[ownerID]; ok && pet.ID == petID {
		pet.Sick = sick
		s.pets[ownerID] = pet
	}
	return nil
}

func (s *MemoryStore) DeletePet(_ context.Context, ownerID, petID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pet, ok := s.pets[ownerID]; ok && pet.ID == petID {
		delete(s.pets, ownerID)
	}
	return nil
}

func (s *MemoryStore) TransferPet(_ context.Context, fromID, toID, petID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pet, ok := s.pets[fromID]
	if !ok || pet.ID != petID {
		return nil
	}
	if _, taken := s.pets[toID]; taken {
		return nil
	}
	delete(s.pets, fromID)
	pet.OwnerID = toID
	s.pets[toID] = pet
	return nil
}
