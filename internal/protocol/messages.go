// Package protocol defines the named messages exchanged between town
// clients and the server, and the shared wire models they carry. All
// messages travel inside an Envelope; payloads are typed structs.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Client -> server message types.
const (
	MsgChatMessage         = "chatMessage"
	MsgPlayerMovement      = "playerMovement"
	MsgAddNewPet           = "addNewPet"
	MsgUpdatePetStats      = "updatePetStats"
	MsgDecreaseStats       = "decreaseStats"
	MsgHospitalTransition  = "hospitalTransition"
	MsgInteractableUpdate  = "interactableUpdate"
	MsgInteractableCommand = "interactableCommand"
)

// Server -> client message types.
const (
	MsgInitialize          = "initialize"
	MsgPlayerJoined        = "playerJoined"
	MsgPlayerMoved         = "playerMoved"
	MsgPlayerDisconnect    = "playerDisconnect"
	MsgPetAdded            = "petAdded"
	MsgPetStatsChanged     = "petStatsChanged"
	MsgCommandResponse     = "commandResponse"
	MsgTownSettingsUpdated = "townSettingsUpdated"
	MsgTownClosing         = "townClosing"
)

// Envelope wraps every message on the wire.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope marshals payload and wraps it in an Envelope. A nil payload
// produces an envelope with no payload field (e.g. townClosing).
func NewEnvelope(msgType string, payload any) (*Envelope, error) {
	env := &Envelope{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = data
	}
	return env, nil
}

// Encode marshals the envelope for transmission.
func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode unmarshals the envelope's payload into out.
func (e *Envelope) Decode(out any) error {
	return json.Unmarshal(e.Payload, out)
}

// DecodeFrom unmarshals an encoded envelope in place.
func (e *Envelope) DecodeFrom(data []byte) error {
	return json.Unmarshal(data, e)
}

// Rotation is the direction a player sprite faces.
type Rotation string

const (
	RotationFront Rotation = "front"
	RotationBack  Rotation = "back"
	RotationLeft  Rotation = "left"
	RotationRight Rotation = "right"
)

// PlayerLocation is a position on the town map. InteractableID is set when
// the position falls inside an active interactable area.
type PlayerLocation struct {
	X              float64  `json:"x"`
	Y              float64  `json:"y"`
	Rotation       Rotation `json:"rotation"`
	Moving         bool     `json:"moving"`
	InteractableID string   `json:"interactableID,omitempty"`
}

// PetType is the closed set of pet species.
type PetType string

const (
	PetTypeCat  PetType = "Cat"
	PetTypeDog  PetType = "Dog"
	PetTypeDuck PetType = "Duck"
)

// Meter names a single pet wellbeing stat.
type Meter string

const (
	MeterHealth    Meter = "health"
	MeterHunger    Meter = "hunger"
	MeterHappiness Meter = "happiness"
)

// Pet is the wire model of a pet.
type Pet struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	OwnerID    string         `json:"ownerID"`
	Type       PetType        `json:"type"`
	Location   PlayerLocation `json:"location"`
	Health     int            `json:"health"`
	Hunger     int            `json:"hunger"`
	Happiness  int            `json:"happiness"`
	InHospital bool           `json:"inHospital"`
	Sick       bool           `json:"isSick"`
}

// Player is the wire model of a connected player.
type Player struct {
	ID       string         `json:"id"`
	UserName string         `json:"userName"`
	Location PlayerLocation `json:"location"`
	Pet      *Pet           `json:"pet,omitempty"`
}

// GameMove is a single recorded move in a game area session.
type GameMove struct {
	PlayerID string `json:"playerID"`
	Move     string `json:"move"`
}

// Interactable is the wire model of any interactable area. Fields beyond
// the common ones are populated per area type and omitted otherwise.
type Interactable struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	OccupantsByID []string `json:"occupantsByID"`

	// Conversation areas.
	Topic string `json:"topic,omitempty"`

	// Viewing areas.
	Video      string  `json:"video,omitempty"`
	IsPlaying  bool    `json:"isPlaying,omitempty"`
	ElapsedSec float64 `json:"elapsedTimeSec,omitempty"`

	// Game areas.
	GameInProgress bool       `json:"gameInProgress,omitempty"`
	PlayersByID    []string   `json:"playersByID,omitempty"`
	Moves          []GameMove `json:"moves,omitempty"`

	// Hospital areas.
	TreatmentInProgress bool `json:"treatmentInProgress,omitempty"`
}

// ChatMessage is a single chat line, optionally scoped to an interactable.
type ChatMessage struct {
	Author         string `json:"author"`
	SID            string `json:"sid"`
	Body           string `json:"body"`
	DateCreated    int64  `json:"dateCreated"`
	InteractableID string `json:"interactableID,omitempty"`
}

// PlayerMovement is the payload of a playerMovement message.
type PlayerMovement struct {
	Location PlayerLocation `json:"location"`
}

// AddNewPet is the payload of an addNewPet message.
type AddNewPet struct {
	PetName string  `json:"petName"`
	PetID   string  `json:"petID"`
	PetType PetType `json:"petType"`
}

// UpdatePetStats is the payload of an updatePetStats message: a signed
// delta applied to one meter of the sender's pet.
type UpdatePetStats struct {
	PetID string `json:"petID"`
	Meter Meter  `json:"meter"`
	Delta int    `json:"delta"`
}

// DecreaseStats is the administrative decay trigger payload.
type DecreaseStats struct {
	Delta int `json:"delta"`
}

// HospitalTransition requests a pet's admission to or discharge from the
// hospital.
type HospitalTransition struct {
	PetID string `json:"petID"`
	Admit bool   `json:"admit"`
}

// InteractableCommand is a correlated request against one interactable.
type InteractableCommand struct {
	InteractableID string          `json:"interactableID"`
	CommandID      string          `json:"commandID"`
	Kind           string          `json:"kind"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

// Decode unmarshals the command's payload into out.
func (c *InteractableCommand) Decode(out any) error {
	if len(c.Payload) == 0 {
		return fmt.Errorf("command %s has no payload", c.CommandID)
	}
	return json.Unmarshal(c.Payload, out)
}

// CommandResponse correlates back to an InteractableCommand by CommandID.
// Exactly one of Payload or Error is meaningful, keyed by IsOK.
type CommandResponse struct {
	CommandID      string `json:"commandID"`
	InteractableID string `json:"interactableID"`
	IsOK           bool   `json:"isOK"`
	Payload        any    `json:"payload,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Initialize is the full-state snapshot sent to a client on join.
type Initialize struct {
	UserID             string         `json:"userID"`
	SessionToken       string         `json:"sessionToken"`
	ProviderVideoToken string         `json:"providerVideoToken"`
	FriendlyName       string         `json:"friendlyName"`
	IsPubliclyListed   bool           `json:"isPubliclyListed"`
	CurrentPlayers     []Player       `json:"currentPlayers"`
	CurrentPets        []Pet          `json:"currentPets"`
	Interactables      []Interactable `json:"interactables"`
	RecentChat         []ChatMessage  `json:"recentChat"`
}

// TownSummary is one entry in the public town listing.
type TownSummary struct {
	TownID           string `json:"townID"`
	FriendlyName     string `json:"friendlyName"`
	CurrentOccupancy int    `json:"currentOccupancy"`
	MaximumOccupancy int    `json:"maximumOccupancy"`
}

// TownSettingsUpdate carries changed town settings; nil fields are
// unchanged.
type TownSettingsUpdate struct {
	FriendlyName     *string `json:"friendlyName,omitempty"`
	IsPubliclyListed *bool   `json:"isPubliclyListed,omitempty"`
}
