// Package realtime carries messages between connected clients: a hub fans
// published payloads out to per-topic subscriber sets, and a gateway
// authenticates WebSocket connections and speaks the frame protocol.
package realtime

import (
	"time"

	"chatapp/domain"
)

type FrameType string

const (
	// Inbound frame types.
	FrameSendMessage FrameType = "SEND_MESSAGE"
	FrameJoin        FrameType = "JOIN"
	FrameLeave       FrameType = "LEAVE"

	// Outbound envelope types. JOIN and LEAVE are reused outbound.
	FrameChat FrameType = "CHAT"
)

// InboundFrame is what a connected client sends. Any sender field a client
// might smuggle into the payload is ignored: the identity bound at the
// handshake is authoritative.
type InboundFrame struct {
	Type    FrameType `json:"type"`
	ChatID  string    `json:"chatId,omitempty"`
	Content string    `json:"content,omitempty"`
}

// Envelope is the tagged outbound payload. Data is nil for JOIN and LEAVE.
type Envelope struct {
	Type FrameType       `json:"type"`
	Data *MessagePayload `json:"data"`
}

type MessagePayload struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func ChatEnvelope(message domain.Message) Envelope {
	return Envelope{
		Type: FrameChat,
		Data: &MessagePayload{
			ID:        message.ID.String(),
			ChatID:    message.ChatID,
			Sender:    message.Sender,
			Content:   message.Content,
			CreatedAt: message.CreatedAt,
		},
	}
}

func EventEnvelope(frameType FrameType) Envelope {
	return Envelope{Type: frameType, Data: nil}
}
