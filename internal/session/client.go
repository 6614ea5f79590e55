package session

import (
	"sync"

	"github.com/gorilla/websocket"

	"gallery/internal/domain"
)

type client struct {
	id   string
	user domain.User
	conn *websocket.Conn
	send chan Frame
	done chan struct{}
	once sync.Once
}

func newClient(id string, user domain.User, conn *websocket.Conn, buffer int) *client {
	return &client{
		id:   id,
		user: user,
		conn: conn,
		send: make(chan Frame, buffer),
		done: make(chan struct{}),
	}
}

// enqueue never blocks: a client whose buffer is full is closed.
func (c *client) enqueue(f Frame) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- f:
		return true
	default:
		c.close()
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
