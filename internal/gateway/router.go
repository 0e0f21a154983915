package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/ravenfell/worldserver/internal/game/character"
	"github.com/ravenfell/worldserver/internal/game/monster"
	"github.com/ravenfell/worldserver/internal/game/presence"
	"github.com/ravenfell/worldserver/internal/observability"
	"github.com/ravenfell/worldserver/internal/status"
	"github.com/ravenfell/worldserver/internal/storage/postgres"
)

// clientErr is a request failure whose message is safe to send verbatim to
// the client: validation errors, absent characters, bad credentials.
// Anything else is reported as an internal error with the cause logged.
type clientErr struct {
	msg string
}

func (e *clientErr) Error() string { return e.msg }

// clientError builds a client-visible request failure.
func clientError(msg string) error { return &clientErr{msg: msg} }

// Client-facing error messages.
const (
	msgNotAuthenticated = "Not authenticated"
	msgInternalError    = "Internal server error"
	msgUnknownEvent     = "Unknown request"
)

// AccountStore verifies account credentials.
type AccountStore interface {
	Authenticate(ctx context.Context, username, password string) (postgres.Account, error)
}

// CharacterStore provides character persistence operations.
type CharacterStore interface {
	Create(ctx context.Context, c *character.Character) (*character.Character, error)
	ListByAccount(ctx context.Context, accountID int64) ([]*character.Character, error)
	GetByID(ctx context.Context, id int64) (*character.Character, error)
	SavePosition(ctx context.Context, id int64, mapID string, pos character.Position) error
}

// MonsterProvider answers per-map monster queries.
type MonsterProvider interface {
	FindByRoom(roomID string) []monster.Monster
}

// Router dispatches inbound named requests, enforces authentication and
// argument preconditions, and isolates per-request failures: a failing
// request always produces a structured failure response and never affects
// other connections.
type Router struct {
	registry *presence.Registry
	rooms    *presence.Rooms
	accounts AccountStore
	chars    CharacterStore
	monsters MonsterProvider
	statuses status.Store
	logger   *zap.Logger

	mu    sync.RWMutex
	peers map[string]Sender // connection ID → outbound channel
}

// NewRouter creates a Router with the given dependencies.
//
// Precondition: registry, rooms, accounts, chars, monsters, statuses, and
// logger must be non-nil.
func NewRouter(
	registry *presence.Registry,
	rooms *presence.Rooms,
	accounts AccountStore,
	chars CharacterStore,
	monsters MonsterProvider,
	statuses status.Store,
	logger *zap.Logger,
) *Router {
	return &Router{
		registry: registry,
		rooms:    rooms,
		accounts: accounts,
		chars:    chars,
		monsters: monsters,
		statuses: statuses,
		logger:   logger,
		peers:    make(map[string]Sender),
	}
}

// Attach registers the outbound channel for a connection so broadcasts can
// reach it.
func (r *Router) Attach(connID string, sender Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[connID] = sender
}

// handlerResult is what a handler produces: the response payload and an
// optional follow-up that runs after the response has been sent. Broadcasts
// go in the follow-up so the unicast response always precedes them.
type handlerResult struct {
	payload any
	after   func()
}

// Handle processes one inbound message for connID: decode, dispatch, and
// send exactly one response event. All failures are converted to structured
// failure responses; nothing propagates to the read loop.
func (r *Router) Handle(ctx context.Context, connID string, raw []byte) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil || req.Event == "" {
		r.logger.Warn("undecodable request",
			zap.String("conn_id", connID),
			zap.Error(err),
		)
		r.respond(connID, "error", FailureResponse{Success: false, Error: msgUnknownEvent})
		return
	}

	res := r.dispatch(ctx, connID, req)
	r.respond(connID, responseEvent(req.Event), res.payload)
	if res.after != nil {
		res.after()
	}
}

// dispatch routes the request to its handler and converts any error into a
// structured failure payload.
func (r *Router) dispatch(ctx context.Context, connID string, req Request) (res handlerResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("request handler panicked",
				zap.String("conn_id", connID),
				zap.String("event", req.Event),
				zap.Any("panic", rec),
			)
			observability.RequestsTotal.WithLabelValues(req.Event, "panic").Inc()
			res = handlerResult{payload: FailureResponse{Success: false, Error: msgInternalError}}
		}
	}()

	var err error
	switch req.Event {
	case "get_servers":
		res = r.handleGetServers(ctx, connID)
	case "login":
		res, err = r.handleLogin(ctx, connID, req.Data)
	case "create_character":
		res, err = r.handleCreateCharacter(ctx, connID, req.Data)
	case "get_characters":
		res, err = r.handleGetCharacters(ctx, connID)
	case "select_character":
		res, err = r.handleSelectCharacter(ctx, connID, req.Data)
	case "enter_world":
		res, err = r.handleEnterWorld(ctx, connID, req.Data)
	default:
		r.logger.Warn("unknown request event",
			zap.String("conn_id", connID),
			zap.String("event", req.Event),
		)
		observability.RequestsTotal.WithLabelValues("unknown", "error").Inc()
		return handlerResult{payload: FailureResponse{Success: false, Error: msgUnknownEvent}}
	}

	if err != nil {
		observability.RequestsTotal.WithLabelValues(req.Event, "error").Inc()
		return handlerResult{payload: r.failureFor(connID, req.Event, err)}
	}
	observability.RequestsTotal.WithLabelValues(req.Event, "ok").Inc()
	return res
}

// failureFor maps a handler error to the client-facing failure payload,
// logging internal causes the client must not see.
func (r *Router) failureFor(connID, event string, err error) FailureResponse {
	if errors.Is(err, presence.ErrNotAuthenticated) {
		return FailureResponse{Success: false, Error: msgNotAuthenticated}
	}
	var ce *clientErr
	if errors.As(err, &ce) {
		return FailureResponse{Success: false, Error: ce.msg}
	}
	r.logger.Error("request failed",
		zap.String("conn_id", connID),
		zap.String("event", event),
		zap.Error(err),
	)
	return FailureResponse{Success: false, Error: msgInternalError}
}

// respond sends one response event to the originating connection.
func (r *Router) respond(connID, event string, payload any) {
	data, err := Encode(event, payload)
	if err != nil {
		r.logger.Error("encoding response",
			zap.String("conn_id", connID),
			zap.String("event", event),
			zap.Error(err),
		)
		return
	}

	r.mu.RLock()
	sender, ok := r.peers[connID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	if err := sender.Send(data); err != nil {
		r.logger.Warn("delivering response",
			zap.String("conn_id", connID),
			zap.String("event", event),
			zap.Error(err),
		)
	}
}

// broadcast sends an event to every listed connection except excludeID.
// Delivery failures to individual peers are logged and skipped.
func (r *Router) broadcast(connIDs []string, excludeID, event string, payload any) {
	data, err := Encode(event, payload)
	if err != nil {
		r.logger.Error("encoding broadcast", zap.String("event", event), zap.Error(err))
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range connIDs {
		if id == excludeID {
			continue
		}
		sender, ok := r.peers[id]
		if !ok {
			continue
		}
		if err := sender.Send(data); err != nil {
			r.logger.Warn("delivering broadcast",
				zap.String("conn_id", id),
				zap.String("event", event),
				zap.Error(err),
			)
		}
	}
	observability.BroadcastsTotal.WithLabelValues(event).Inc()
}

// Disconnect releases everything held for a connection: room membership
// (with a departure broadcast to remaining occupants), the registry entry,
// and a best-effort character position save. Cleanup failures are logged,
// never retried; the connection is already gone.
func (r *Router) Disconnect(ctx context.Context, connID string) {
	r.mu.Lock()
	delete(r.peers, connID)
	r.mu.Unlock()

	roomID, inRoom := r.rooms.RoomOf(connID)
	if inRoom {
		r.rooms.Leave(roomID, connID)
		observability.RoomOccupancy.WithLabelValues(roomID).Set(float64(r.rooms.OccupantCount(roomID)))
	}

	conn, err := r.registry.Remove(connID)
	if err != nil {
		r.logger.Warn("removing connection from registry",
			zap.String("conn_id", connID),
			zap.Error(err),
		)
		return
	}

	if inRoom && conn.CharacterID != 0 {
		r.broadcast(r.rooms.Occupants(roomID), connID, EventPlayerLeft, presence.BuildLeaveNotice(conn.CharacterID))
	}

	if conn.Character != nil {
		if err := r.chars.SavePosition(ctx, conn.Character.ID, conn.Character.Map, conn.Character.Position); err != nil {
			r.logger.Warn("saving character position on disconnect",
				zap.String("conn_id", connID),
				zap.Int64("character_id", conn.Character.ID),
				zap.Error(err),
			)
		}
	}

	r.logger.Info("connection closed",
		zap.String("conn_id", connID),
		zap.Int("live_connections", r.registry.Count()),
	)
}
