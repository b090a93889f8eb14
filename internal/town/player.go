package town

import (
	"github.com/google/uuid"
	"github.com/pixil98/go-town/internal/protocol"
)

// Player is the server-side representative of one connected user. It is
// created on join and destroyed on disconnect; durable identity lives in
// the persistence layer.
type Player struct {
	id           string
	userName     string
	sessionToken string
	videoToken   string

	location protocol.PlayerLocation
	pet      *Pet
}

func NewPlayer(userID, userName string, loc protocol.PlayerLocation) *Player {
	return &Player{
		id:           userID,
		userName:     userName,
		sessionToken: uuid.NewString(),
		location:     loc,
	}
}

func (p *Player) ID() string                   { return p.id }
func (p *Player) UserName() string             { return p.userName }
func (p *Player) SessionToken() string         { return p.sessionToken }
func (p *Player) VideoToken() string           { return p.videoToken }
func (p *Player) Loc() protocol.PlayerLocation { return p.location }
func (p *Player) Pet() *Pet                    { return p.pet }

// ToModel snapshots the player as a wire model, pet included.
func (p *Player) ToModel() protocol.Player {
	m := protocol.Player{
		ID:       p.id,
		UserName: p.userName,
		Location: p.location,
	}
	if p.pet != nil {
		pm := p.pet.ToModel()
		m.Pet = &pm
	}
	return m
}
