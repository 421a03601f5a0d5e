package services

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"chatapp/domain"
	"chatapp/errors"
	"chatapp/repositories"
)

type IChatService interface {
	CreateDirectChat(userA, userB string) (domain.Chat, error)
	CreateGroupChat(name, creatorID string) (domain.Chat, error)
	AddMember(chatID, userID string) error
	RemoveMember(chatID, userID string) error
	GetChat(chatID string) (domain.Chat, error)
	ListChatsForUser(userID string) ([]domain.Chat, error)
}

// ChatService owns chat creation and participant mutation rules.
// No caller authorization happens here: the HTTP layer decides who may call
// what, the service only guards the structural invariants (direct chats stay
// at exactly two members, a user joins a chat at most once).
type ChatService struct {
	chats repositories.IChatRepository
	log   *slog.Logger
}

func NewChatService(chats repositories.IChatRepository, log *slog.Logger) *ChatService {
	return &ChatService{chats: chats, log: log}
}

// CreateDirectChat returns the existing direct chat between the two users, or
// creates one with both participants as a single atomic unit. Losing the
// creation race to a concurrent call is not an error: the winner's chat is
// fetched and returned, keeping the operation idempotent.
func (s *ChatService) CreateDirectChat(userA, userB string) (domain.Chat, error) {
	existing, found, err := s.chats.FindDirectChatBetween(userA, userB)
	if err != nil {
		return domain.Chat{}, err
	}
	if found {
		return existing, nil
	}

	chat := domain.Chat{
		ID:        uuid.NewString(),
		Type:      domain.ChatTypeDirect,
		CreatedAt: time.Now().UTC(),
	}
	chat.Participants = []domain.Participant{
		{ChatID: chat.ID, UserID: userA, Role: domain.RoleMember},
		{ChatID: chat.ID, UserID: userB, Role: domain.RoleMember},
	}

	err = s.chats.SaveDirectChat(chat)
	if stderrors.Is(err, errors.ErrDirectChatExists) {
		s.log.Debug("lost direct chat creation race, returning winner",
			"user_a", userA, "user_b", userB)
		winner, found, err := s.chats.FindDirectChatBetween(userA, userB)
		if err != nil {
			return domain.Chat{}, err
		}
		if !found {
			return domain.Chat{}, fmt.Errorf("direct chat vanished after creation race")
		}
		return winner, nil
	}
	if err != nil {
		return domain.Chat{}, err
	}
	return chat, nil
}

// CreateGroupChat creates a group chat with the creator as its only
// participant, holding the ADMIN role.
func (s *ChatService) CreateGroupChat(name, creatorID string) (domain.Chat, error) {
	chat := domain.Chat{
		ID:        uuid.NewString(),
		Type:      domain.ChatTypeGroup,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	chat.Participants = []domain.Participant{
		{ChatID: chat.ID, UserID: creatorID, Role: domain.RoleAdmin},
	}
	if err := s.chats.SaveGroupChat(chat); err != nil {
		return domain.Chat{}, err
	}
	return chat, nil
}

// AddMember inserts a MEMBER participant into a group chat.
func (s *ChatService) AddMember(chatID, userID string) error {
	chat, found, err := s.chats.FindChatByID(chatID)
	if err != nil {
		return err
	}
	if !found {
		return errors.ErrChatNotFound
	}
	if chat.Type != domain.ChatTypeGroup {
		return errors.ErrInvalidOperation
	}

	exists, err := s.chats.ExistsParticipant(chatID, userID)
	if err != nil {
		return err
	}
	if exists {
		return errors.ErrAlreadyMember
	}

	return s.chats.SaveParticipant(domain.Participant{
		ChatID: chatID,
		UserID: userID,
		Role:   domain.RoleMember,
	})
}

// RemoveMember deletes a participant row from a group chat. Removing the last
// participant is allowed and leaves an empty chat behind.
func (s *ChatService) RemoveMember(chatID, userID string) error {
	chat, found, err := s.chats.FindChatByID(chatID)
	if err != nil {
		return err
	}
	if !found {
		return errors.ErrChatNotFound
	}
	if chat.Type != domain.ChatTypeGroup {
		return errors.ErrInvalidOperation
	}

	participant, found, err := s.chats.FindParticipant(chatID, userID)
	if err != nil {
		return err
	}
	if !found {
		return errors.ErrNotAMember
	}

	return s.chats.DeleteParticipant(participant)
}

func (s *ChatService) GetChat(chatID string) (domain.Chat, error) {
	chat, found, err := s.chats.FindChatByID(chatID)
	if err != nil {
		return domain.Chat{}, err
	}
	if !found {
		return domain.Chat{}, errors.ErrChatNotFound
	}
	return chat, nil
}

func (s *ChatService) ListChatsForUser(userID string) ([]domain.Chat, error) {
	return s.chats.FindChatsForUser(userID)
}
