package presence

import (
	"sync"
	"time"

	"github.com/ravenfell/worldserver/internal/game/character"
)

// Connection is a snapshot of one live network session's presence state.
//
// AccountID is zero until authentication succeeds; CharacterID is zero and
// Character nil until a character is selected or entered.
type Connection struct {
	ID          string
	AccountID   int64
	CharacterID int64
	Character   *character.Character
	ConnectedAt time.Time
}

// Authenticated reports whether an account has been bound to the connection.
func (c Connection) Authenticated() bool {
	return c.AccountID != 0
}

// Registry tracks all live connections. It is the sole owner of connection
// lifecycle; room occupancy holds only back-references into it.
// All methods are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Connection // connection ID → state
}

// NewRegistry creates an empty connection Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*Connection),
	}
}

// Register creates an unauthenticated entry for the given connection ID.
//
// Precondition: id must be non-empty.
// Postcondition: Returns the new connection state, or ErrAlreadyRegistered
// if the ID is already present.
func (r *Registry) Register(id string) (Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[id]; exists {
		return Connection{}, ErrAlreadyRegistered
	}

	conn := &Connection{
		ID:          id,
		ConnectedAt: time.Now(),
	}
	r.conns[id] = conn
	return *conn, nil
}

// Authenticate binds an account to a registered connection.
//
// Precondition: accountID must be > 0.
// Postcondition: Returns ErrUnknownConnection if the ID is not registered.
func (r *Registry) Authenticate(id string, accountID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[id]
	if !ok {
		return ErrUnknownConnection
	}
	conn.AccountID = accountID
	return nil
}

// BindCharacter attaches a character snapshot to an authenticated connection.
//
// Precondition: char must be non-nil with a valid ID.
// Postcondition: Returns ErrUnknownConnection if the ID is not registered,
// or ErrNotAuthenticated if no account is bound.
func (r *Registry) BindCharacter(id string, char *character.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[id]
	if !ok {
		return ErrUnknownConnection
	}
	if conn.AccountID == 0 {
		return ErrNotAuthenticated
	}
	conn.CharacterID = char.ID
	conn.Character = char
	return nil
}

// Remove deletes a connection and returns its final state so the caller can
// release room membership and persist character state.
//
// Postcondition: Returns ErrUnknownConnection if the ID is not registered.
func (r *Registry) Remove(id string) (Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[id]
	if !ok {
		return Connection{}, ErrUnknownConnection
	}
	delete(r.conns, id)
	return *conn, nil
}

// Get returns a point-in-time copy of the connection state.
//
// Postcondition: Returns (conn, true) if found, or (zero, false) otherwise.
func (r *Registry) Get(id string) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	if !ok {
		return Connection{}, false
	}
	return *conn, true
}

// Characters resolves connection IDs to their bound character snapshots.
// IDs that are no longer registered or have no character bound are skipped;
// registry removal and room cleanup are not perfectly synchronous, so a
// dangling ID is expected during disconnect races.
//
// Postcondition: Returns a slice with one entry per resolvable ID (may be empty).
func (r *Registry) Characters(ids []string) []*character.Character {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chars := make([]*character.Character, 0, len(ids))
	for _, id := range ids {
		conn, ok := r.conns[id]
		if !ok || conn.Character == nil {
			continue
		}
		chars = append(chars, conn.Character)
	}
	return chars
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
