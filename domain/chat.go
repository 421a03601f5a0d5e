// Package domain contains core concepts of the chat system.
// This file defines Chat and Participant entities and their invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

type ChatType string

const (
	ChatTypeDirect ChatType = "DIRECT"
	ChatTypeGroup  ChatType = "GROUP"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Chat is a conversation container. A DIRECT chat has exactly two MEMBER
// participants for its entire lifetime and no name; a GROUP chat has one or
// more participants and the creator holds the ADMIN role.
type Chat struct {
	ID           string
	Type         ChatType
	Name         string // empty for DIRECT
	CreatedAt    time.Time
	Participants []Participant
}

// Participant is a user's membership record in a chat. A user id appears at
// most once per chat.
type Participant struct {
	ChatID string
	UserID string
	Role   Role
}

func (c Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
