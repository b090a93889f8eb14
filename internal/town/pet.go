package town

import (
	"github.com/google/uuid"
	"github.com/pixil98/go-town/internal/protocol"
)

// DefaultMeterValue is the starting value for every meter of a newly
// created pet. Pets start at a half-full state rather than full so the
// care loop has early tension.
const DefaultMeterValue = 50

const (
	meterFloor   = 0
	meterCeiling = 100
)

// Pet is a player-owned companion with three bounded wellbeing meters.
// A pet becomes sick the moment any meter bottoms out, and recovers
// automatically once all meters are above the floor again. Mutation
// happens only under the owning town's lock.
type Pet struct {
	id           string
	ownerID      string
	name         string
	petType      protocol.PetType
	sessionToken string

	location  protocol.PlayerLocation
	health    int
	hunger    int
	happiness int

	inHospital bool
	sick       bool
}

// NewPet creates a pet for ownerID with all meters at DefaultMeterValue.
func NewPet(id, name string, petType protocol.PetType, ownerID string, loc protocol.PlayerLocation) *Pet {
	return &Pet{
		id:           id,
		ownerID:      ownerID,
		name:         name,
		petType:      petType,
		sessionToken: uuid.NewString(),
		location:     loc,
		health:       DefaultMeterValue,
		hunger:       DefaultMeterValue,
		happiness:    DefaultMeterValue,
	}
}

// RevivePet reconstructs a live pet from a persisted snapshot, bridging
// the persistence boundary on rejoin. Meters are clamped on the way in;
// stored records are not trusted to be in range.
func RevivePet(model *protocol.Pet, ownerID string, loc protocol.PlayerLocation) *Pet {
	p := &Pet{
		id:           model.ID,
		ownerID:      ownerID,
		name:         model.Name,
		petType:      model.Type,
		sessionToken: uuid.NewString(),
		location:     loc,
		health:       clampMeter(model.Health),
		hunger:       clampMeter(model.Hunger),
		happiness:    clampMeter(model.Happiness),
		inHospital:   model.InHospital,
	}
	p.reconcileSickness()
	return p
}

func (p *Pet) ID() string                    { return p.id }
func (p *Pet) OwnerID() string               { return p.ownerID }
func (p *Pet) Name() string                  { return p.name }
func (p *Pet) PetType() protocol.PetType     { return p.petType }
func (p *Pet) SessionToken() string          { return p.sessionToken }
func (p *Pet) Loc() protocol.PlayerLocation  { return p.location }
func (p *Pet) Health() int                   { return p.health }
func (p *Pet) Hunger() int                   { return p.hunger }
func (p *Pet) Happiness() int                { return p.happiness }
func (p *Pet) InHospital() bool              { return p.inHospital }
func (p *Pet) Sick() bool                    { return p.sick }

// SetLocation mirrors the owner's location. Pets have no region
// membership of their own.
func (p *Pet) SetLocation(loc protocol.PlayerLocation) {
	p.location = loc
}

// Meter returns the current value of the named meter.
func (p *Pet) Meter(m protocol.Meter) int {
	switch m {
	case protocol.MeterHealth:
		return p.health
	case protocol.MeterHunger:
		return p.hunger
	case protocol.MeterHappiness:
		return p.happiness
	}
	return 0
}

// Adjust applies a signed delta to one meter. It succeeds only when the
// targeted meter is above the floor and the pet is not hospitalized; a
// bottomed-out meter can only be repaired through the hospital discharge
// path. The result is clamped to [0, 100].
func (p *Pet) Adjust(m protocol.Meter, delta int) bool {
	if p.inHospital {
		return false
	}
	switch m {
	case protocol.MeterHealth:
		if p.health <= meterFloor {
			return false
		}
		p.health = clampMeter(p.health + delta)
	case protocol.MeterHunger:
		if p.hunger <= meterFloor {
			return false
		}
		p.hunger = clampMeter(p.hunger + delta)
	case protocol.MeterHappiness:
		if p.happiness <= meterFloor {
			return false
		}
		p.happiness = clampMeter(p.happiness + delta)
	default:
		return false
	}
	p.reconcileSickness()
	return true
}

// Decay subtracts delta from all three meters, clamping at the floor.
// Decay always succeeds.
func (p *Pet) Decay(delta int) {
	p.health = clampMeter(p.health - delta)
	p.hunger = clampMeter(p.hunger - delta)
	p.happiness = clampMeter(p.happiness - delta)
	p.reconcileSickness()
}

// Hospitalize admits the pet. Admission requires the pet to be sick and
// not already admitted.
func (p *Pet) Hospitalize() bool {
	if !p.sick || p.inHospital {
		return false
	}
	p.inHospital = true
	return true
}

// Discharge releases the pet from the hospital. Every meter sitting
// exactly at the floor is reset to the ceiling; meters above the floor
// are untouched.
func (p *Pet) Discharge() bool {
	if !p.inHospital {
		return false
	}
	p.inHospital = false
	if p.health == meterFloor {
		p.health = meterCeiling
	}
	if p.hunger == meterFloor {
		p.hunger = meterCeiling
	}
	if p.happiness == meterFloor {
		p.happiness = meterCeiling
	}
	p.reconcileSickness()
	return true
}

// reconcileSickness re-derives the sick flag. It must run after every
// meter-affecting operation, not only on discharge.
func (p *Pet) reconcileSickness() {
	if p.health <= meterFloor || p.hunger <= meterFloor || p.happiness <= meterFloor {
		p.sick = true
		return
	}
	p.sick = false
}

// ToModel snapshots the pet as a wire model.
func (p *Pet) ToModel() protocol.Pet {
	return protocol.Pet{
		ID:         p.id,
		Name:       p.name,
		OwnerID:    p.ownerID,
		Type:       p.petType,
		Location:   p.location,
		Health:     p.health,
		Hunger:     p.hunger,
		Happiness:  p.happiness,
		InHospital: p.inHospital,
		Sick:       p.sick,
	}
}

func clampMeter(v int) int {
	if v < meterFloor {
		return meterFloor
	}
	if v > meterCeiling {
		return meterCeiling
	}
	return v
}
