// Package gateway provides the WebSocket transport and the event router that
// dispatches named client requests to the presence and persistence layers.
package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/ravenfell/worldserver/internal/game/character"
	"github.com/ravenfell/worldserver/internal/game/presence"
	"github.com/ravenfell/worldserver/internal/status"
)

// Request is one inbound named event with its payload.
type Request struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Envelope is one outbound named event with its payload.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Encode marshals an outbound envelope to the wire format.
func Encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", event, err)
	}
	return raw, nil
}

// responseEvent is the conventional response event name for a request.
func responseEvent(request string) string {
	return request + "_response"
}

// Broadcast event names.
const (
	EventPlayerJoined = "player_joined"
	EventPlayerLeft   = "player_left"
)

// CharacterDTO is the client-facing character representation.
type CharacterDTO struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Class string  `json:"classe"`
	Race  string  `json:"race"`
	Level int     `json:"level"`
	Map   string  `json:"map"`
	PosX  float64 `json:"pos_x"`
	PosY  float64 `json:"pos_y"`
	PosZ  float64 `json:"pos_z"`
}

func toCharacterDTO(c *character.Character) CharacterDTO {
	return CharacterDTO{
		ID:    c.ID,
		Name:  c.Name,
		Class: c.Class,
		Race:  c.Race,
		Level: c.Level,
		Map:   c.Map,
		PosX:  c.Position.X,
		PosY:  c.Position.Y,
		PosZ:  c.Position.Z,
	}
}

// FailureResponse is the structured failure payload every request can receive.
type FailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// LoginResponse is the success payload for the login request.
type LoginResponse struct {
	Success   bool  `json:"success"`
	AccountID int64 `json:"accountId"`
}

// ServersResponse is the payload for the get_servers request.
type ServersResponse struct {
	Success bool                  `json:"success"`
	Servers []status.ServerStatus `json:"servers"`
}

// CharacterResponse is the success payload for create_character and
// select_character.
type CharacterResponse struct {
	Success   bool         `json:"success"`
	Character CharacterDTO `json:"character"`
}

// CharactersResponse is the success payload for get_characters.
type CharactersResponse struct {
	Success    bool           `json:"success"`
	Characters []CharacterDTO `json:"characters"`
}

// EnterWorldResponse is the success payload for enter_world.
type EnterWorldResponse struct {
	Success   bool               `json:"success"`
	Character CharacterDTO       `json:"character"`
	SpawnInfo presence.SpawnInfo `json:"spawnInfo"`
}
