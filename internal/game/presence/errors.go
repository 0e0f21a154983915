// Package presence tracks live connections, their authentication state, and
// room occupancy for the world server.
package presence

import "errors"

// ErrAlreadyRegistered is returned when registering a connection ID twice
// without an intervening remove.
var ErrAlreadyRegistered = errors.New("connection already registered")

// ErrUnknownConnection is returned when a connection ID is not registered.
var ErrUnknownConnection = errors.New("unknown connection")

// ErrNotAuthenticated is returned when an operation requires a bound account
// and the connection has none.
var ErrNotAuthenticated = errors.New("not authenticated")
