package town

import (
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-town/internal/protocol"
)

func TestNewPetStartsHalfFull(t *testing.T) {
	p := NewPet("pet-1", "Rex", protocol.PetTypeDog, "alice", protocol.PlayerLocation{X: 1, Y: 2})

	testutil.AssertEqual(t, "health", p.Health(), DefaultMeterValue)
	testutil.AssertEqual(t, "hunger", p.Hunger(), DefaultMeterValue)
	testutil.AssertEqual(t, "happiness", p.Happiness(), DefaultMeterValue)
	testutil.AssertEqual(t, "sick", p.Sick(), false)
	testutil.AssertEqual(t, "in hospital", p.InHospital(), false)
	if p.SessionToken() == "" {
		t.Error("expected a session token")
	}
}

func TestPetAdjust(t *testing.T) {
	tests := map[string]struct {
		setup    func(p *Pet)
		meter    protocol.Meter
		delta    int
		expOK    bool
		expValue int
		expSick  bool
	}{
		"feed raises hunger": {
			meter: protocol.MeterHunger, delta: 20,
			expOK: true, expValue: 70,
		},
		"play raises happiness": {
			meter: protocol.MeterHappiness, delta: 10,
			expOK: true, expValue: 60,
		},
		"negative delta lowers meter": {
			meter: protocol.MeterHealth, delta: -20,
			expOK: true, expValue: 30,
		},
		"clamped at ceiling": {
			meter: protocol.MeterHunger, delta: 500,
			expOK: true, expValue: 100,
		},
		"clamped at floor and becomes sick": {
			meter: protocol.MeterHealth, delta: -500,
			expOK: true, expValue: 0, expSick: true,
		},
		"bottomed-out meter rejects adjustment": {
			setup: func(p *Pet) { p.Adjust(protocol.MeterHunger, -50) },
			meter: protocol.MeterHunger, delta: 10,
			expOK: false, expValue: 0, expSick: true,
		},
		"hospitalized pet rejects adjustment": {
			setup: func(p *Pet) {
				p.Decay(50)
				p.Hospitalize()
			},
			meter: protocol.MeterHunger, delta: 10,
			expOK: false, expValue: 0, expSick: true,
		},
		"unknown meter rejected": {
			meter: protocol.Meter("stamina"), delta: 10,
			expOK: false, expValue: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := NewPet("pet-1", "Rex", protocol.PetTypeCat, "alice", protocol.PlayerLocation{})
			if tt.setup != nil {
				tt.setup(p)
			}

			testutil.AssertEqual(t, "ok", p.Adjust(tt.meter, tt.delta), tt.expOK)
			testutil.AssertEqual(t, "value", p.Meter(tt.meter), tt.expValue)
			testutil.AssertEqual(t, "sick", p.Sick(), tt.expSick)
		})
	}
}

func TestPetSicknessRecovery(t *testing.T) {
	p := NewPet("pet-1", "Quackers", protocol.PetTypeDuck, "alice", protocol.PlayerLocation{})

	p.Adjust(protocol.MeterHappiness, -50)
	testutil.AssertEqual(t, "sick at floor", p.Sick(), true)

	p.Adjust(protocol.MeterHealth, 10)
	testutil.AssertEqual(t, "still sick while a meter is at the floor", p.Sick(), true)
}

func TestPetDecay(t *testing.T) {
	p := NewPet("pet-1", "Rex", protocol.PetTypeDog, "alice", protocol.PlayerLocation{})

	p.Decay(30)
	testutil.AssertEqual(t, "health", p.Health(), 20)
	testutil.AssertEqual(t, "hunger", p.Hunger(), 20)
	testutil.AssertEqual(t, "happiness", p.Happiness(), 20)
	testutil.AssertEqual(t, "not yet sick", p.Sick(), false)

	// Decay always succeeds and clamps at the floor.
	p.Decay(30)
	testutil.AssertEqual(t, "health at floor", p.Health(), 0)
	testutil.AssertEqual(t, "sick", p.Sick(), true)

	p.Decay(30)
	testutil.AssertEqual(t, "health stays at floor", p.Health(), 0)
}

func TestPetHospitalFlow(t *testing.T) {
	p := NewPet("pet-1", "Rex", protocol.PetTypeDog, "alice", protocol.PlayerLocation{})

	testutil.AssertEqual(t, "healthy pet refused admission", p.Hospitalize(), false)
	testutil.AssertEqual(t, "discharge without admission", p.Discharge(), false)

	p.Adjust(protocol.MeterHealth, -50)
	p.Adjust(protocol.MeterHunger, -30)
	testutil.AssertEqual(t, "sick", p.Sick(), true)

	testutil.AssertEqual(t, "admitted", p.Hospitalize(), true)
	testutil.AssertEqual(t, "double admission refused", p.Hospitalize(), false)

	testutil.AssertEqual(t, "discharged", p.Discharge(), true)
	testutil.AssertEqual(t, "floored meter reset to full", p.Health(), 100)
	testutil.AssertEqual(t, "other meters untouched", p.Hunger(), 20)
	testutil.AssertEqual(t, "happiness untouched", p.Happiness(), 50)
	testutil.AssertEqual(t, "no longer sick", p.Sick(), false)
	testutil.AssertEqual(t, "out of hospital", p.InHospital(), false)
}

func TestRevivePetClampsStoredMeters(t *testing.T) {
	loc := protocol.PlayerLocation{X: 3, Y: 4}
	p := RevivePet(&protocol.Pet{
		ID:        "pet-1",
		Name:      "Rex",
		Type:      protocol.PetTypeDog,
		Health:    250,
		Hunger:    -10,
		Happiness: 50,
	}, "alice", loc)

	testutil.AssertEqual(t, "health clamped", p.Health(), 100)
	testutil.AssertEqual(t, "hunger clamped", p.Hunger(), 0)
	testutil.AssertEqual(t, "happiness", p.Happiness(), 50)
	testutil.AssertEqual(t, "sick re-derived", p.Sick(), true)
	testutil.AssertEqual(t, "owner", p.OwnerID(), "alice")
	testutil.AssertEqual(t, "location", p.Loc(), loc)
}
