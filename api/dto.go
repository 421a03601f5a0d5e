package api

import (
	"time"

	"github.com/samber/lo"

	"chatapp/domain"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type CreateDirectChatRequest struct {
	User1 string `json:"user1" binding:"required"`
	User2 string `json:"user2" binding:"required"`
}

type CreateGroupChatRequest struct {
	Name string `json:"name" binding:"required"`
}

type ParticipantResponse struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type ChatResponse struct {
	ID           string                `json:"id"`
	Name         string                `json:"name,omitempty"`
	Type         string                `json:"type"`
	Participants []ParticipantResponse `json:"participants"`
}

type MessageResponse struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func toChatResponse(chat domain.Chat) ChatResponse {
	return ChatResponse{
		ID:   chat.ID,
		Name: chat.Name,
		Type: string(chat.Type),
		Participants: lo.Map(chat.Participants, func(p domain.Participant, _ int) ParticipantResponse {
			return ParticipantResponse{UserID: p.UserID, Role: string(p.Role)}
		}),
	}
}

func toMessageResponses(messages []domain.Message) []MessageResponse {
	return lo.Map(messages, func(m domain.Message, _ int) MessageResponse {
		return MessageResponse{
			ID:        m.ID.String(),
			ChatID:    m.ChatID,
			Sender:    m.Sender,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	})
}
