package presence

import "sync"

// Rooms is the room membership index: it maps each map/room ID to the set of
// connection IDs currently occupying it, with a reverse index for cleanup.
// A connection belongs to at most one room at a time.
// All methods are safe for concurrent use.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[string]bool // roomID → set of connection IDs
	roomOf  map[string]string          // connection ID → roomID
}

// NewRooms creates an empty room membership index.
func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]map[string]bool),
		roomOf:  make(map[string]string),
	}
}

// Join adds connID to roomID. If the connection already occupies a different
// room, that membership is removed first and the prior room ID returned so
// the caller can broadcast a departure there. The returned occupant list
// excludes connID and is captured in the same critical section as the join,
// so a concurrently joining peer is either in the list or will itself see
// connID when it joins — never both, never neither.
//
// Precondition: roomID and connID must be non-empty.
// Postcondition: connID occupies exactly roomID. priorRoom is "" when the
// connection was not previously in a different room.
func (r *Rooms) Join(roomID, connID string) (occupants []string, priorRoom string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.roomOf[connID]; ok && prev != roomID {
		priorRoom = prev
		r.removeLocked(prev, connID)
	}

	set := r.members[roomID]
	if set == nil {
		set = make(map[string]bool)
		r.members[roomID] = set
	}

	occupants = make([]string, 0, len(set))
	for id := range set {
		if id != connID {
			occupants = append(occupants, id)
		}
	}

	set[connID] = true
	r.roomOf[connID] = roomID
	return occupants, priorRoom
}

// Leave removes connID from roomID. It is a no-op if the connection is not a
// member, so disconnect races clean up safely.
func (r *Rooms) Leave(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.roomOf[connID] != roomID {
		return
	}
	r.removeLocked(roomID, connID)
	delete(r.roomOf, connID)
}

// removeLocked deletes connID from roomID's member set, dropping empty sets.
// Caller must hold r.mu.
func (r *Rooms) removeLocked(roomID, connID string) {
	if set, ok := r.members[roomID]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(r.members, roomID)
		}
	}
}

// Occupants returns a point-in-time copy of roomID's member set.
//
// Postcondition: Returns a slice of connection IDs (may be empty).
func (r *Rooms) Occupants(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.members[roomID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// RoomOf returns the room currently occupied by connID.
//
// Postcondition: Returns (roomID, true) if the connection occupies a room,
// or ("", false) otherwise.
func (r *Rooms) RoomOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.roomOf[connID]
	return room, ok
}

// OccupantCount returns the number of occupants in roomID.
func (r *Rooms) OccupantCount(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members[roomID])
}
