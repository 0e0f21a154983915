// Package character defines the character domain model and pure creation logic.
package character

import (
	"fmt"
	"time"
)

// Position is a 3D world-space coordinate.
type Position struct {
	X float64
	Y float64
	Z float64
}

// Character represents a player character's persistent state.
//
// AccountID and ID are set by the persistence layer; zero values indicate an unsaved character.
type Character struct {
	ID        int64
	AccountID int64

	Name  string
	Class string // class ID
	Race  string // race ID
	Level int

	Map      string // current map/room ID
	Position Position

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicView is the subset of character state safe to broadcast to other
// occupants of a room.
type PublicView struct {
	CharacterID int64   `json:"characterId"`
	Name        string  `json:"name"`
	Class       string  `json:"classe"`
	Race        string  `json:"race"`
	Level       int     `json:"level"`
	PosX        float64 `json:"pos_x"`
	PosY        float64 `json:"pos_y"`
	PosZ        float64 `json:"pos_z"`
}

// Public returns the broadcast-safe view of the character.
func (c *Character) Public() PublicView {
	return PublicView{
		CharacterID: c.ID,
		Name:        c.Name,
		Class:       c.Class,
		Race:        c.Race,
		Level:       c.Level,
		PosX:        c.Position.X,
		PosY:        c.Position.Y,
		PosZ:        c.Position.Z,
	}
}

// Known class and race identifiers.
var (
	Classes = []string{"warrior", "mage", "archer", "cleric"}
	Races   = []string{"human", "elf", "dwarf", "orc"}
)

// ValidClass reports whether class is a recognised class ID.
func ValidClass(class string) bool {
	for _, c := range Classes {
		if c == class {
			return true
		}
	}
	return false
}

// ValidRace reports whether race is a recognised race ID.
func ValidRace(race string) bool {
	for _, r := range Races {
		if r == race {
			return true
		}
	}
	return false
}

// StartMap is the map new characters spawn into.
const StartMap = "Gludin"

// startPosition is the spawn point within StartMap.
var startPosition = Position{X: 120, Y: 0, Z: 45}

// New builds an unsaved level-1 character at the starting location.
//
// Precondition: name must be non-empty; class and race must be valid IDs.
// Postcondition: Returns a Character with zero ID, or an error on invalid input.
func New(accountID int64, name, class, race string) (*Character, error) {
	if name == "" {
		return nil, fmt.Errorf("character name must not be empty")
	}
	if !ValidClass(class) {
		return nil, fmt.Errorf("unknown class %q", class)
	}
	if !ValidRace(race) {
		return nil, fmt.Errorf("unknown race %q", race)
	}
	return &Character{
		AccountID: accountID,
		Name:      name,
		Class:     class,
		Race:      race,
		Level:     1,
		Map:       StartMap,
		Position:  startPosition,
	}, nil
}
