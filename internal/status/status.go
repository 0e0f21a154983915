// Package status provides the aggregate server status model and the periodic
// heartbeat publisher that keeps the external status store current.
package status

import (
	"context"
	"time"
)

// State is the advertised availability of a world server.
type State string

const (
	StateOnline      State = "online"
	StateMaintenance State = "maintenance"
	StateOffline     State = "offline"
)

// ServerStatus is a derived snapshot of one server's load, recomputed
// periodically and pushed to the status store. It is not authoritative
// storage and holds no history.
type ServerStatus struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	State       State     `json:"status"`
	PlayerCount int       `json:"playerCount"`
	MaxPlayers  int       `json:"maxPlayers"`
	CapturedAt  time.Time `json:"-"`
}

// Store is the external status store collaborator. Both operations may fail;
// callers must treat every call as fallible.
type Store interface {
	// Upsert writes the status snapshot for its server ID.
	Upsert(ctx context.Context, s ServerStatus) error
	// List returns the last known status of every server.
	List(ctx context.Context) ([]ServerStatus, error)
}

// ConnectionCounter reports the current live connection count.
type ConnectionCounter interface {
	Count() int
}
