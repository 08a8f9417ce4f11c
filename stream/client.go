package stream

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn, queue int) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, queue),
		done: make(chan struct{}),
	}
}

// deliver queues msg. It reports false if the queue is full or the client
// is closed.
func (c *client) deliver(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// writeLoop is the only writer on conn.
func (c *client) writeLoop() {
	defer c.close()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

// readLoop answers pings until the connection fails or a message exceeds
// maxMessageSize.
func (c *client) readLoop() {
	c.conn.SetReadLimit(maxMessageSize)
	pong, _ := json.Marshal(clientMessage{Type: TypePong})
	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == TypePing {
			c.deliver(pong)
		}
	}
}
