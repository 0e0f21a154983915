package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ravenfell/worldserver/internal/status"
)

// ServerStatusRepository persists periodic server status snapshots. It
// implements status.Store.
type ServerStatusRepository struct {
	db *pgxpool.Pool
}

// NewServerStatusRepository creates a ServerStatusRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewServerStatusRepository(db *pgxpool.Pool) *ServerStatusRepository {
	return &ServerStatusRepository{db: db}
}

// Upsert writes the latest status snapshot for its server ID, replacing any
// prior row.
//
// Precondition: s.ID must be > 0.
// Postcondition: The server_status row for s.ID reflects s.
func (r *ServerStatusRepository) Upsert(ctx context.Context, s status.ServerStatus) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO server_status (id, name, state, player_count, max_players, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			state = EXCLUDED.state,
			player_count = EXCLUDED.player_count,
			max_players = EXCLUDED.max_players,
			captured_at = EXCLUDED.captured_at`,
		s.ID, s.Name, string(s.State), s.PlayerCount, s.MaxPlayers, s.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting server status: %w", err)
	}
	return nil
}

// List returns the last known status of every server, ordered by ID.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *ServerStatusRepository) List(ctx context.Context) ([]status.ServerStatus, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, state, player_count, max_players, captured_at
		FROM server_status ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing server status: %w", err)
	}
	defer rows.Close()

	statuses := make([]status.ServerStatus, 0)
	for rows.Next() {
		var s status.ServerStatus
		var state string
		if err := rows.Scan(&s.ID, &s.Name, &state, &s.PlayerCount, &s.MaxPlayers, &s.CapturedAt); err != nil {
			return nil, fmt.Errorf("scanning server status row: %w", err)
		}
		s.State = status.State(state)
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}
