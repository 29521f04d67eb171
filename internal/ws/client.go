package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// clientConn serializes writes to one websocket connection. The outbound
// relay loop and the probe replies from the inbound loop write concurrently.
type clientConn struct {
	rawConn *websocket.Conn
	mu      sync.Mutex
}

func (c *clientConn) write(mt int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.rawConn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.rawConn.WriteMessage(mt, data)
}

func (c *clientConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.rawConn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.rawConn.WriteJSON(v)
}

// pong answers an application-level liveness probe: a binary frame whose
// first byte is 0x9 gets a binary [0xA] back. Any other binary frame is
// ignored.
func (c *clientConn) pong(payload []byte) {
	if len(payload) > 0 && payload[0] == probePing {
		_ = c.write(websocket.BinaryMessage, []byte{probePong})
	}
}
