// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event. The chat id is a logical
// reference, not a storage-enforced foreign key: the realtime protocol uses
// the same external identifier.
type Message struct {
	ID        uuid.UUID
	ChatID    string
	Sender    string
	Content   string
	CreatedAt time.Time
}

// Topic derives the realtime fan-out key for a chat. It is never persisted
// and can always be recomputed from the chat id.
func Topic(chatID string) string {
	return "chat." + chatID
}
