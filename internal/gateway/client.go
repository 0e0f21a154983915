package gateway

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Sender delivers encoded messages to one connection. The router talks to
// connections only through this interface so tests can substitute an
// in-memory implementation.
type Sender interface {
	Send(data []byte) error
}

// Client routes outbound messages to a WebSocket connection through a
// buffered channel, bridging the router to the transport write loop.
type Client struct {
	id     string
	conn   *websocket.Conn
	out    chan []byte
	mu     sync.Mutex
	closed bool
}

// NewClient creates a Client for the given connection ID.
//
// Precondition: id must be non-empty; conn must be open.
// Postcondition: Returns a Client with an open outbound channel.
func NewClient(id string, conn *websocket.Conn, bufferSize int) *Client {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Client{
		id:   id,
		conn: conn,
		out:  make(chan []byte, bufferSize),
	}
}

// ID returns the connection identifier.
func (c *Client) ID() string {
	return c.id
}

// Send enqueues data for the write loop.
//
// Postcondition: Data is enqueued, or an error if the client is closed or
// the buffer is full. A full buffer drops the message rather than blocking
// the caller; a slow consumer must never stall a room broadcast.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("client %s is closed", c.id)
	}
	select {
	case c.out <- data:
		return nil
	default:
		return fmt.Errorf("client %s send buffer full", c.id)
	}
}

// Close marks the client as closed and closes the outbound channel.
//
// Postcondition: Further Send calls return an error. Idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.out)
	}
}

// WriteLoop drains the outbound channel to the WebSocket connection. It
// returns when the channel is closed or a write fails.
//
// Precondition: Must be called from exactly one goroutine.
func (c *Client) WriteLoop(writeTimeout time.Duration) error {
	for data := range c.out {
		if writeTimeout > 0 {
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				return fmt.Errorf("setting write deadline: %w", err)
			}
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return fmt.Errorf("writing message: %w", err)
		}
	}
	return nil
}
