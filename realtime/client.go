package realtime

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one authenticated WebSocket connection registered with the hub.
// The identity bound at the handshake stays attached for the connection's
// whole lifetime and is the sender of everything it publishes.
type Client struct {
	conn     *websocket.Conn
	identity string
	hub      *Hub
	log      *slog.Logger

	send chan []byte
	done chan struct{}
	once sync.Once

	subsMu sync.Mutex
	subs   map[string]struct{}
}

func newClient(conn *websocket.Conn, identity string, hub *Hub, log *slog.Logger, bufferSize int) *Client {
	return &Client{
		conn:     conn,
		identity: identity,
		hub:      hub,
		log:      log,
		send:     make(chan []byte, bufferSize),
		done:     make(chan struct{}),
		subs:     make(map[string]struct{}),
	}
}

// Deliver enqueues a payload for the writer goroutine. It never blocks: a
// full buffer or a closed connection is reported to the hub, which logs and
// moves on to the next subscriber.
func (c *Client) Deliver(payload []byte) error {
	select {
	case <-c.done:
		return fmt.Errorf("connection of %s is closed", c.identity)
	case c.send <- payload:
		return nil
	default:
		return fmt.Errorf("send buffer of %s is full", c.identity)
	}
}

// writePump owns all writes on the connection: queued payloads and the
// keepalive pings. It exits when the connection is torn down.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.Debug("write failed", "identity", c.identity, "error", err)
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

func (c *Client) trackSubscription(topic string) {
	c.subsMu.Lock()
	c.subs[topic] = struct{}{}
	c.subsMu.Unlock()
}

func (c *Client) dropSubscription(topic string) {
	c.subsMu.Lock()
	delete(c.subs, topic)
	c.subsMu.Unlock()
}

func (c *Client) subscriptions() []string {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	topics := make([]string, 0, len(c.subs))
	for topic := range c.subs {
		topics = append(topics, topic)
	}
	return topics
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
	})
}
