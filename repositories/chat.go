//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"chatapp/domain"
	"chatapp/errors"
)

type IChatRepository interface {
	FindDirectChatBetween(userA, userB string) (domain.Chat, bool, error)
	SaveDirectChat(chat domain.Chat) error
	SaveGroupChat(chat domain.Chat) error
	FindChatByID(id string) (domain.Chat, bool, error)
	FindParticipant(chatID, userID string) (domain.Participant, bool, error)
	ExistsParticipant(chatID, userID string) (bool, error)
	SaveParticipant(p domain.Participant) error
	DeleteParticipant(p domain.Participant) error
	FindChatsForUser(userID string) ([]domain.Chat, error)
}

// ChatRepository persists chats and participants in BadgerDB.
//
// Key layout:
//   - "chat:{chatID}"            -> chat record
//   - "part:{chatID}:{userID}"   -> participant role
//   - "direct:{a}:{b}"           -> chatID, with a < b (canonical pair order)
//   - "userchat:{userID}:{chatID}" -> empty, secondary index for listing
//
// The "direct:" key is the uniqueness constraint over the unordered user
// pair: it is checked and written inside a single transaction, so two
// concurrent creations of the same direct chat cannot both commit.
type ChatRepository struct {
	db *badger.DB
}

func NewChatRepository(db *badger.DB) ChatRepository {
	return ChatRepository{db: db}
}

type chatRecord struct {
	ID        string          `json:"id"`
	Type      domain.ChatType `json:"type"`
	Name      string          `json:"name,omitempty"`
	CreatedAt int64           `json:"created_at"`
}

type participantRecord struct {
	Role domain.Role `json:"role"`
}

func chatKey(chatID string) []byte { return []byte("chat:" + chatID) }

func participantKey(chatID, userID string) []byte {
	return []byte(fmt.Sprintf("part:%s:%s", chatID, userID))
}

func userChatKey(userID, chatID string) []byte {
	return []byte(fmt.Sprintf("userchat:%s:%s", userID, chatID))
}

// directPairKey canonicalizes the unordered user pair before building the
// uniqueness key, so (a,b) and (b,a) resolve to the same entry.
func directPairKey(userA, userB string) []byte {
	if userB < userA {
		userA, userB = userB, userA
	}
	return []byte(fmt.Sprintf("direct:%s:%s", userA, userB))
}

func (r ChatRepository) FindDirectChatBetween(userA, userB string) (domain.Chat, bool, error) {
	var chat domain.Chat
	found := false
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(directPairKey(userA, userB))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		var chatID string
		if err = item.Value(func(val []byte) error {
			chatID = string(val)
			return nil
		}); err != nil {
			return err
		}
		chat, err = loadChat(txn, chatID)
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return chat, found, err
}

// SaveDirectChat stores the chat, both participants, the pair uniqueness key
// and the per-user indexes as one atomic unit. When the pair key already
// exists, or when Badger detects a conflicting concurrent write of it, the
// lost race is reported as ErrDirectChatExists and nothing is persisted.
func (r ChatRepository) SaveDirectChat(chat domain.Chat) error {
	pairKey := directPairKey(chat.Participants[0].UserID, chat.Participants[1].UserID)
	err := r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(pairKey)
		if err == nil {
			return errors.ErrDirectChatExists
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		if err = writeChat(txn, chat); err != nil {
			return err
		}
		return txn.Set(pairKey, []byte(chat.ID))
	})
	if err == badger.ErrConflict {
		return errors.ErrDirectChatExists
	}
	return err
}

func (r ChatRepository) SaveGroupChat(chat domain.Chat) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return writeChat(txn, chat)
	})
}

func (r ChatRepository) FindChatByID(id string) (domain.Chat, bool, error) {
	var chat domain.Chat
	found := false
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		chat, err = loadChat(txn, id)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return chat, found, err
}

func (r ChatRepository) FindParticipant(chatID, userID string) (domain.Participant, bool, error) {
	var participant domain.Participant
	found := false
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(participantKey(chatID, userID))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		var record participantRecord
		if err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		}); err != nil {
			return err
		}
		participant = domain.Participant{ChatID: chatID, UserID: userID, Role: record.Role}
		found = true
		return nil
	})
	return participant, found, err
}

func (r ChatRepository) ExistsParticipant(chatID, userID string) (bool, error) {
	_, found, err := r.FindParticipant(chatID, userID)
	return found, err
}

func (r ChatRepository) SaveParticipant(p domain.Participant) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return writeParticipant(txn, p)
	})
}

func (r ChatRepository) DeleteParticipant(p domain.Participant) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(participantKey(p.ChatID, p.UserID)); err != nil {
			return err
		}
		return txn.Delete(userChatKey(p.UserID, p.ChatID))
	})
}

// FindChatsForUser walks the per-user secondary index, then resolves every
// chat with its participants. Order follows the index iteration, which is
// deterministic for a given store content.
func (r ChatRepository) FindChatsForUser(userID string) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("userchat:" + userID + ":")
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			chatID := string(it.Item().Key()[len(prefix):])
			chat, err := loadChat(txn, chatID)
			if err == badger.ErrKeyNotFound {
				// Stale index entry, e.g. an administratively deleted chat.
				continue
			}
			if err != nil {
				return err
			}
			chats = append(chats, chat)
		}
		return nil
	})
	return chats, err
}

func writeChat(txn *badger.Txn, chat domain.Chat) error {
	record := chatRecord{
		ID:        chat.ID,
		Type:      chat.Type,
		Name:      chat.Name,
		CreatedAt: chat.CreatedAt.UnixNano(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err = txn.Set(chatKey(chat.ID), data); err != nil {
		return err
	}
	for _, p := range chat.Participants {
		if err = writeParticipant(txn, p); err != nil {
			return err
		}
	}
	return nil
}

func writeParticipant(txn *badger.Txn, p domain.Participant) error {
	data, err := json.Marshal(participantRecord{Role: p.Role})
	if err != nil {
		return err
	}
	if err = txn.Set(participantKey(p.ChatID, p.UserID), data); err != nil {
		return err
	}
	return txn.Set(userChatKey(p.UserID, p.ChatID), nil)
}

// loadChat reads a chat record and gathers its participants with a prefix
// scan over "part:{chatID}:". Returns badger.ErrKeyNotFound when the chat
// record itself is missing.
func loadChat(txn *badger.Txn, chatID string) (domain.Chat, error) {
	item, err := txn.Get(chatKey(chatID))
	if err != nil {
		return domain.Chat{}, err
	}
	var record chatRecord
	if err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &record)
	}); err != nil {
		return domain.Chat{}, err
	}

	chat := domain.Chat{
		ID:        record.ID,
		Type:      record.Type,
		Name:      record.Name,
		CreatedAt: time.Unix(0, record.CreatedAt).UTC(),
	}

	prefix := []byte("part:" + chatID + ":")
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		userID := strings.TrimPrefix(string(it.Item().Key()), string(prefix))
		var pr participantRecord
		if err = it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &pr)
		}); err != nil {
			return domain.Chat{}, err
		}
		chat.Participants = append(chat.Participants, domain.Participant{
			ChatID: chatID,
			UserID: userID,
			Role:   pr.Role,
		})
	}
	return chat, nil
}
