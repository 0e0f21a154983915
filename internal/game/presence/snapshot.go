package presence

import (
	"github.com/ravenfell/worldserver/internal/game/character"
	"github.com/ravenfell/worldserver/internal/game/monster"
)

// SpawnInfo is the payload returned to a connection on successful room entry.
type SpawnInfo struct {
	X             float64                `json:"x"`
	Y             float64                `json:"y"`
	Z             float64                `json:"z"`
	Map           string                 `json:"map"`
	NearbyPlayers []character.PublicView `json:"nearbyPlayers"`
	Monsters      []monster.Monster      `json:"monsters"`
}

// LeaveNotice is broadcast to a room when an occupant disconnects or moves
// to another map.
type LeaveNotice struct {
	CharacterID int64 `json:"characterId"`
}

// BuildSpawnInfo assembles the room-entry payload for a joining character.
// Nil entries in occupants are skipped: a dangling connection ID resolved
// after its registry entry was removed is expected, not an error.
//
// Precondition: char must be non-nil.
// Postcondition: NearbyPlayers never contains the joining character and both
// slices are non-nil.
func BuildSpawnInfo(char *character.Character, occupants []*character.Character, monsters []monster.Monster) SpawnInfo {
	nearby := make([]character.PublicView, 0, len(occupants))
	for _, occ := range occupants {
		if occ == nil || occ.ID == char.ID {
			continue
		}
		nearby = append(nearby, occ.Public())
	}
	if monsters == nil {
		monsters = []monster.Monster{}
	}
	return SpawnInfo{
		X:             char.Position.X,
		Y:             char.Position.Y,
		Z:             char.Position.Z,
		Map:           char.Map,
		NearbyPlayers: nearby,
		Monsters:      monsters,
	}
}

// BuildJoinNotice produces the public-field payload broadcast to existing
// occupants when a character enters their room.
//
// Precondition: char must be non-nil.
func BuildJoinNotice(char *character.Character) character.PublicView {
	return char.Public()
}

// BuildLeaveNotice produces the payload broadcast to a room when one of its
// occupants departs.
func BuildLeaveNotice(characterID int64) LeaveNotice {
	return LeaveNotice{CharacterID: characterID}
}
