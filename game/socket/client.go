// game/socket/client.go
package socket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// client is one connected websocket user. A client is joined to at most
// one game room at a time.
type client struct {
	conn   *websocket.Conn
	userID string

	mu     sync.Mutex // guards writes to conn and gameID
	gameID string
}

func newClient(conn *websocket.Conn, userID string) *client {
	return &client{conn: conn, userID: userID}
}

// send writes one message to the client. Gorilla connections allow a
// single concurrent writer, so every write goes through the client mutex.
func (c *client) send(action string, data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(outboundMessage{Action: action, Data: data})
}

// sendError pushes an error action to the client. Failures are ignored;
// a dead connection is cleaned up by the read loop.
func (c *client) sendError(msg string) {
	_ = c.send(actionError, errorPayload{Message: msg})
}

func (c *client) currentGame() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID
}

func (c *client) setGame(gameID string) {
	c.mu.Lock()
	c.gameID = gameID
	c.mu.Unlock()
}
