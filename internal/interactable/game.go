package interactable

import "github.com/pixil98/go-town/internal/protocol"

// Game area command kinds.
const (
	CmdJoinGame  = "joinGame"
	CmdLeaveGame = "leaveGame"
	CmdGameMove  = "gameMove"
)

const maxGamePlayers = 2

// gameMovePayload is the expected payload of a gameMove command.
type gameMovePayload struct {
	Move string `json:"move"`
}

// GameArea hosts a two-player mini-game. The area itself is always
// active; a game session is in progress once two players have joined.
// Moves are validated and recorded in order; interpreting them is the
// client's concern.
type GameArea struct {
	area
	players []string
	moves   []protocol.GameMove
}

func NewGameArea(id string, rect Rect) *GameArea {
	return &GameArea{area: newArea(id, rect)}
}

func (g *GameArea) Type() string {
	return TypeGameArea
}

func (g *GameArea) Active() bool {
	return true
}

// InProgress reports whether a game session is running.
func (g *GameArea) InProgress() bool {
	return len(g.players) == maxGamePlayers
}

// Remove drops the occupant and, if they were seated in the game, ends
// the session for everyone.
func (g *GameArea) Remove(o Occupant) {
	g.area.Remove(o)
	for _, id := range g.players {
		if id == o.ID() {
			g.players = nil
			g.moves = nil
			return
		}
	}
}

func (g *GameArea) ToModel() protocol.Interactable {
	moves := make([]protocol.GameMove, len(g.moves))
	copy(moves, g.moves)
	return protocol.Interactable{
		ID:             g.id,
		Type:           TypeGameArea,
		OccupantsByID:  g.OccupantIDs(),
		GameInProgress: g.InProgress(),
		PlayersByID:    append([]string(nil), g.players...),
		Moves:          moves,
	}
}

func (g *GameArea) HandleCommand(cmd *protocol.InteractableCommand, requesterID string) (any, error) {
	switch cmd.Kind {
	case CmdJoinGame:
		return g.joinGame(requesterID)
	case CmdLeaveGame:
		return g.leaveGame(requesterID)
	case CmdGameMove:
		return g.gameMove(cmd, requesterID)
	default:
		return nil, NewValidationError("game area %s does not accept command %q", g.id, cmd.Kind)
	}
}

func (g *GameArea) joinGame(requesterID string) (any, error) {
	if g.seat(requesterID) >= 0 {
		return nil, NewValidationError("player %s has already joined the game", requesterID)
	}
	if g.InProgress() {
		return nil, NewValidationError("game in area %s is full", g.id)
	}
	g.players = append(g.players, requesterID)
	return g.ToModel(), nil
}

func (g *GameArea) leaveGame(requesterID string) (any, error) {
	if g.seat(requesterID) < 0 {
		return nil, NewValidationError("player %s has not joined the game", requesterID)
	}
	// A player leaving ends the session for everyone.
	g.players = nil
	g.moves = nil
	return g.ToModel(), nil
}

func (g *GameArea) gameMove(cmd *protocol.InteractableCommand, requesterID string) (any, error) {
	seat := g.seat(requesterID)
	if seat < 0 {
		return nil, NewValidationError("player %s has not joined the game", requesterID)
	}
	if !g.InProgress() {
		return nil, NewValidationError("game in area %s has not started", g.id)
	}

	var move gameMovePayload
	if err := cmd.Decode(&move); err != nil || move.Move == "" {
		return nil, NewValidationError("malformed move payload")
	}

	// Turn order alternates starting with the first seated player.
	if len(g.moves)%maxGamePlayers != seat {
		return nil, NewValidationError("it is not player %s's turn", requesterID)
	}

	g.moves = append(g.moves, protocol.GameMove{PlayerID: requesterID, Move: move.Move})
	return g.ToModel(), nil
}

func (g *GameArea) seat(playerID string) int {
	for i, id := range g.players {
		if id == playerID {
			return i
		}
	}
	return -1
}
