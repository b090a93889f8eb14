package persist

import (
	"context"
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-town/internal/protocol"
)

func TestMemoryStorePlayers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	loc := protocol.PlayerLocation{X: 1, Y: 2, Rotation: protocol.RotationFront}
	p, err := s.GetOrCreatePlayer(ctx, "alice", "Alice", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "created", p.UserName, "Alice")

	// A second call returns the existing record unchanged.
	p, err = s.GetOrCreatePlayer(ctx, "alice", "Different Name", protocol.PlayerLocation{X: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "name kept", p.UserName, "Alice")
	testutil.AssertEqual(t, "location kept", p.Location, loc)

	newLoc := protocol.PlayerLocation{X: 5, Y: 5}
	if err := s.SetLocation(ctx, "alice", newLoc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, _ = s.GetOrCreatePlayer(ctx, "alice", "Alice", loc)
	testutil.AssertEqual(t, "location updated", p.Location, newLoc)
}

func TestMemoryStorePets(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	pet, err := s.GetPet(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pet != nil {
		t.Fatal("expected no pet for a new user")
	}

	rex := protocol.Pet{ID: "pet-1", Name: "Rex", OwnerID: "alice", Type: protocol.PetTypeDog, Health: 50, Hunger: 50, Happiness: 50}
	ok, err := s.CreatePet(ctx, rex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "created", ok, true)

	// Re-creating the same pet succeeds; a different pet for the same
	// owner is refused.
	ok, _ = s.CreatePet(ctx, rex)
	testutil.AssertEqual(t, "idempotent", ok, true)
	ok, _ = s.CreatePet(ctx, protocol.Pet{ID: "pet-2", OwnerID: "alice"})
	testutil.AssertEqual(t, "second pet refused", ok, false)

	if err := s.SetMeter(ctx, "alice", "pet-1", protocol.MeterHunger, 80); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetSickStatus(ctx, "alice", "pet-1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetHospitalStatus(ctx, "alice", "pet-1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pet, _ = s.GetPet(ctx, "alice")
	testutil.AssertEqual(t, "hunger", pet.Hunger, 80)
	testutil.AssertEqual(t, "sick", pet.Sick, true)
	testutil.AssertEqual(t, "in hospital", pet.InHospital, true)

	// Writes naming the wrong pet id are ignored.
	if err := s.SetMeter(ctx, "alice", "pet-9", protocol.MeterHunger, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pet, _ = s.GetPet(ctx, "alice")
	testutil.AssertEqual(t, "hunger unchanged", pet.Hunger, 80)
}

func TestMemoryStoreTransferPet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rex := protocol.Pet{ID: "pet-1", Name: "Rex", OwnerID: "alice"}
	if _, err := s.CreatePet(ctx, rex); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.TransferPet(ctx, "alice", "bob", "pet-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pet, _ := s.GetPet(ctx, "alice")
	if pet != nil {
		t.Fatal("expected the pet to leave the old owner")
	}
	pet, _ = s.GetPet(ctx, "bob")
	if pet == nil {
		t.Fatal("expected the pet under the new owner")
	}
	testutil.AssertEqual(t, "owner rewritten", pet.OwnerID, "bob")

	// Transfers to an owner who already has a pet are refused.
	if _, err := s.CreatePet(ctx, protocol.Pet{ID: "pet-2", OwnerID: "carol"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.TransferPet(ctx, "bob", "carol", "pet-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pet, _ = s.GetPet(ctx, "bob")
	if pet == nil {
		t.Fatal("expected the pet to stay with bob")
	}
}

func TestMemoryStoreDeletePet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.CreatePet(ctx, protocol.Pet{ID: "pet-1", OwnerID: "alice"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Deleting with a mismatched pet id is a no-op.
	if err := s.DeletePet(ctx, "alice", "pet-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pet, _ := s.GetPet(ctx, "alice")
	if pet == nil {
		t.Fatal("expected the pet to survive a mismatched delete")
	}

	if err := s.DeletePet(ctx, "alice", "pet-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pet, _ = s.GetPet(ctx, "alice")
	if pet != nil {
		t.Fatal("expected the pet to be gone")
	}
}
