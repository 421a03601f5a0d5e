package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"chatapp/domain"
	"chatapp/repositories"
)

type IMessageService interface {
	Append(chatID, sender, content string) (domain.Message, error)
	History(chatID string) ([]domain.Message, error)
}

// MessageService assigns identity and server-side timestamps at persist time
// and reads history back in creation order. It never validates chat
// existence: the chat id is a logical reference shared with the realtime
// protocol, not a storage foreign key.
type MessageService struct {
	messages repositories.IMessageRepository
}

func NewMessageService(messages repositories.IMessageRepository) *MessageService {
	return &MessageService{messages: messages}
}

func (s *MessageService) Append(chatID, sender, content string) (domain.Message, error) {
	message := domain.Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		Sender:    sender,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	err := s.messages.StoreMessage(repositories.DiskMessage{
		ID:      message.ID,
		ChatID:  message.ChatID,
		Sender:  message.Sender,
		Content: message.Content,
		At:      message.CreatedAt,
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

func (s *MessageService) History(chatID string) ([]domain.Message, error) {
	diskMessages, err := s.messages.GetMessages(chatID)
	if err != nil {
		return nil, err
	}
	return lo.Map(diskMessages, func(dm repositories.DiskMessage, _ int) domain.Message {
		return domain.Message{
			ID:        dm.ID,
			ChatID:    dm.ChatID,
			Sender:    dm.Sender,
			Content:   dm.Content,
			CreatedAt: dm.At,
		}
	}), nil
}
