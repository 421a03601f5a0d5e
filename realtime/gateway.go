package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"chatapp/auth"
	"chatapp/domain"
	"chatapp/errors"
	"chatapp/moderation"
	"chatapp/services"
)

const anonymousIdentity = "anonymous"

// Gateway authenticates inbound WebSocket connection attempts and runs the
// frame protocol on accepted ones. Authentication happens once, before the
// upgrade: a rejected connection never reaches the hub.
type Gateway struct {
	hub            *Hub
	messages       services.IMessageService
	authenticator  *auth.Authenticator
	moderator      *moderation.Moderator
	log            *slog.Logger
	allowAnonymous bool
	bufferSize     int
	upgrader       websocket.Upgrader
}

func NewGateway(log *slog.Logger, hub *Hub, messages services.IMessageService,
	authenticator *auth.Authenticator, moderator *moderation.Moderator,
	allowAnonymous bool, bufferSize int) *Gateway {
	return &Gateway{
		hub:            hub,
		messages:       messages,
		authenticator:  authenticator,
		moderator:      moderator,
		log:            log,
		allowAnonymous: allowAnonymous,
		bufferSize:     bufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handle gates and serves one realtime connection. The bearer credential is
// read from the upgrade request headers only; nothing on later frames can
// change the bound identity.
func (g *Gateway) Handle(c *gin.Context) {
	identity, err := g.authenticate(c.Request)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := newClient(conn, identity, g.hub, g.log, g.bufferSize)
	g.log.Debug("realtime connection opened", "identity", identity)

	go client.writePump()
	g.readLoop(client)
}

// authenticate applies the gate policy: a present but invalid credential is
// rejected outright, while an absent or malformed one downgrades to the
// anonymous identity only when the deployment allows it.
func (g *Gateway) authenticate(r *http.Request) (string, error) {
	token, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		if !g.allowAnonymous {
			return "", errors.ErrAuthFailure
		}
		return anonymousIdentity, nil
	}
	return g.authenticator.Verify(token)
}

// readLoop consumes inbound frames until the client disconnects. Teardown
// runs on every exit path: a LEAVE envelope goes out to every topic the
// connection was on before the subscriptions are dropped.
func (g *Gateway) readLoop(client *Client) {
	defer func() {
		for _, topic := range client.subscriptions() {
			g.broadcast(topic, EventEnvelope(FrameLeave))
		}
		g.hub.UnsubscribeAll(client)
		client.close()
		client.conn.Close()
		g.log.Debug("realtime connection closed", "identity", client.identity)
	}()

	client.conn.SetReadLimit(64 * 1024)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame InboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			g.log.Debug("malformed frame", "identity", client.identity, "error", err)
			continue
		}

		switch frame.Type {
		case FrameSendMessage:
			g.handleSend(client, frame)
		case FrameJoin:
			topic := domain.Topic(frame.ChatID)
			g.hub.Subscribe(topic, client)
			client.trackSubscription(topic)
			g.broadcast(topic, EventEnvelope(FrameJoin))
		case FrameLeave:
			topic := domain.Topic(frame.ChatID)
			g.broadcast(topic, EventEnvelope(FrameLeave))
			g.hub.Unsubscribe(topic, client)
			client.dropSubscription(topic)
		default:
			g.log.Debug("unknown frame type", "type", frame.Type)
		}
	}
}

// handleSend runs the send protocol: censor, persist, then broadcast the
// stored record. The sender is always the connection's bound identity.
func (g *Gateway) handleSend(client *Client, frame InboundFrame) {
	content := g.moderator.Censor(frame.Content)
	message, err := g.messages.Append(frame.ChatID, client.identity, content)
	if err != nil {
		g.log.Error("failed to persist message",
			"chat_id", frame.ChatID, "sender", client.identity, "error", err)
		return
	}
	g.broadcast(domain.Topic(message.ChatID), ChatEnvelope(message))
}

func (g *Gateway) broadcast(topic string, envelope Envelope) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		g.log.Error("failed to marshal envelope", "type", envelope.Type, "error", err)
		return
	}
	g.hub.Publish(topic, payload)
}
