package town

import (
	"context"
	"time"

	"github.com/pixil98/go-town/internal/protocol"
)

// Store is the narrow persistence boundary the town depends on. All
// calls except GetOrCreatePlayer are best-effort: the town never blocks
// a broadcast on their completion, and failures are logged rather than
// surfaced to clients.
type Store interface {
	// GetOrCreatePlayer returns the durable record for a user, creating
	// one at the given location if none exists. Join cannot proceed
	// without at least this record.
	GetOrCreatePlayer(ctx context.Context, userID, userName string, loc protocol.PlayerLocation) (*protocol.Player, error)

	SetLocation(ctx context.Context, userID string, loc protocol.PlayerLocation) error
	SetLoginTime(ctx context.Context, userID string, t time.Time) error
	SetLogoutTime(ctx context.Context, userID string, t time.Time) error
	GetLogoutTime(ctx context.Context, userID string) (time.Time, error)

	// GetPet returns the user's persisted pet snapshot, or nil if they
	// have none.
	GetPet(ctx context.Context, userID string) (*protocol.Pet, error)

	// CreatePet records a new pet. It reports false when the owner
	// already has a different pet on record.
	CreatePet(ctx context.Context, pet protocol.Pet) (bool, error)

	SetMeter(ctx context.Context, ownerID, petID string, meter protocol.Meter, value int) error
	SetHospitalStatus(ctx context.Context, ownerID, petID string, inHospital bool) error
	SetSickStatus(ctx context.Context, ownerID, petID string, sick bool) error
	DeletePet(ctx context.Context, ownerID, petID string) error
	TransferPet(ctx context.Context, fromID, toID, petID string) error
}

// Publisher fans town events out to player connections and pet stat
// subscribers. Implementations format the underlying subjects.
type Publisher interface {
	PublishToPlayer(townID, playerID string, data []byte) error
	PublishPetStats(petID string, data []byte) error
}

// VideoProvider provisions per-player credentials for the external
// video/audio conferencing service.
type VideoProvider interface {
	GetToken(ctx context.Context, townID, userID string) (string, error)
}
