package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRooms_JoinFirstOccupant(t *testing.T) {
	rm := NewRooms()
	occupants, prior := rm.Join("Dion", "c1")
	assert.Empty(t, occupants)
	assert.Empty(t, prior)
	assert.Equal(t, []string{"c1"}, rm.Occupants("Dion"))
}

func TestRooms_JoinExcludesSelf(t *testing.T) {
	rm := NewRooms()
	rm.Join("Dion", "c1")
	occupants, _ := rm.Join("Dion", "c2")
	assert.Equal(t, []string{"c1"}, occupants)
	assert.ElementsMatch(t, []string{"c1", "c2"}, rm.Occupants("Dion"))
}

func TestRooms_JoinSameRoomTwice(t *testing.T) {
	rm := NewRooms()
	rm.Join("Dion", "c1")
	occupants, prior := rm.Join("Dion", "c1")
	assert.Empty(t, occupants, "re-joining the same room must not count self")
	assert.Empty(t, prior, "re-joining the same room is not a switch")
	assert.Equal(t, []string{"c1"}, rm.Occupants("Dion"))
}

func TestRooms_SwitchRoomReturnsPrior(t *testing.T) {
	rm := NewRooms()
	rm.Join("Gludin", "c1")
	occupants, prior := rm.Join("Dion", "c1")
	assert.Empty(t, occupants)
	assert.Equal(t, "Gludin", prior)

	assert.Empty(t, rm.Occupants("Gludin"), "prior membership must be removed")
	assert.Equal(t, []string{"c1"}, rm.Occupants("Dion"))

	room, ok := rm.RoomOf("c1")
	require.True(t, ok)
	assert.Equal(t, "Dion", room)
}

func TestRooms_Leave(t *testing.T) {
	rm := NewRooms()
	rm.Join("Dion", "c1")
	rm.Join("Dion", "c2")

	rm.Leave("Dion", "c1")
	assert.Equal(t, []string{"c2"}, rm.Occupants("Dion"))

	_, ok := rm.RoomOf("c1")
	assert.False(t, ok)
}

func TestRooms_LeaveNotMemberIsNoop(t *testing.T) {
	rm := NewRooms()
	rm.Join("Dion", "c1")

	rm.Leave("Dion", "ghost")
	rm.Leave("Gludin", "c1") // wrong room: must not remove the Dion membership
	assert.Equal(t, []string{"c1"}, rm.Occupants("Dion"))
}

func TestRooms_EmptyRoomIsDropped(t *testing.T) {
	rm := NewRooms()
	rm.Join("Dion", "c1")
	rm.Leave("Dion", "c1")
	assert.Nil(t, rm.Occupants("Dion"))
	assert.Equal(t, 0, rm.OccupantCount("Dion"))
}

func TestRooms_ConcurrentJoins(t *testing.T) {
	rm := NewRooms()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rm.Join("Dion", fmt.Sprintf("c%d", n))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, rm.OccupantCount("Dion"))
}

func TestRooms_ConcurrentSwitches(t *testing.T) {
	rm := NewRooms()
	rooms := []string{"Gludin", "Giran", "Dion"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", n)
			for _, room := range rooms {
				rm.Join(room, id)
			}
		}(i)
	}
	wg.Wait()

	// Every connection must end in exactly one room.
	total := 0
	for _, room := range rooms {
		total += rm.OccupantCount(room)
	}
	assert.Equal(t, 50, total)
	for i := 0; i < 50; i++ {
		room, ok := rm.RoomOf(fmt.Sprintf("c%d", i))
		require.True(t, ok)
		assert.Equal(t, "Dion", room)
	}
}

// Property: under any sequence of joins and leaves, a connection occupies at
// most one room, and the reverse index always agrees with the member sets.
func TestPropertyRooms_SingleRoomInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rm := NewRooms()
		conns := []string{"a", "b", "c", "d"}
		rooms := []string{"Gludin", "Giran", "Dion"}

		ops := rapid.IntRange(1, 40).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			conn := rapid.SampledFrom(conns).Draw(t, "conn")
			room := rapid.SampledFrom(rooms).Draw(t, "room")
			if rapid.Bool().Draw(t, "join") {
				occupants, _ := rm.Join(room, conn)
				for _, occ := range occupants {
					if occ == conn {
						t.Fatalf("join snapshot contains the joiner %q", conn)
					}
				}
			} else {
				rm.Leave(room, conn)
			}
		}

		for _, conn := range conns {
			memberships := 0
			for _, room := range rooms {
				for _, occ := range rm.Occupants(room) {
					if occ == conn {
						memberships++
						got, ok := rm.RoomOf(conn)
						if !ok || got != room {
							t.Fatalf("reverse index disagrees for %q: member of %q, RoomOf says (%q, %v)", conn, room, got, ok)
						}
					}
				}
			}
			if memberships > 1 {
				t.Fatalf("connection %q occupies %d rooms", conn, memberships)
			}
		}
	})
}
