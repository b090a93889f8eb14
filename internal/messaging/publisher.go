package messaging

import "fmt"

// PlayerSubject is the per-connection delivery subject for one player in
// one town.
func PlayerSubject(townID, playerID string) string {
	return fmt.Sprintf("town.%s.player.%s", townID, playerID)
}

// PetStatsSubject is the stats channel for a single pet.
func PetStatsSubject(petID string) string {
	return fmt.Sprintf("pet.%s.stats", petID)
}

// Publisher is the minimal publish surface TownPublisher needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// TownPublisher implements the town broadcast boundary on NATS subjects.
type TownPublisher struct {
	pub Publisher
}

func NewTownPublisher(pub Publisher) *TownPublisher {
	return &TownPublisher{pub: pub}
}

func (p *TownPublisher) PublishToPlayer(townID, playerID string, data []byte) error {
	return p.pub.Publish(PlayerSubject(townID, playerID), data)
}

func (p *TownPublisher) PublishPetStats(petID string, data []byte) error {
	return p.pub.Publish(PetStatsSubject(petID), data)
}
