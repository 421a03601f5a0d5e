//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	StoreMessage(message DiskMessage) error
	GetMessages(chatID string) ([]DiskMessage, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

type DiskMessage struct {
	ID      uuid.UUID
	ChatID  string
	Sender  string
	Content string
	At      time.Time
}

type storedMessage struct {
	ID      string `json:"id"`
	ChatID  string `json:"chat_id"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
	At      int64  `json:"at"`
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{chat_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func (m MessageRepository) StoreMessage(message DiskMessage) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		message.ChatID,
		message.At.UnixNano(),
		message.ID,
	)
	data, err := json.Marshal(fromDiskMessage(message))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// GetMessages retrieves the full history of a chat using a prefix scan.
// Thanks to the padded timestamp in the key, messages come back naturally
// sorted in ascending creation order. An unknown chat id yields an empty
// slice, not an error: message keys are the only source of truth here.
func (m MessageRepository) GetMessages(chatID string) ([]DiskMessage, error) {
	var diskMessages []DiskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", chatID))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var stored storedMessage
				if err := json.Unmarshal(value, &stored); err != nil {
					return err
				}
				message, err := toDiskMessage(stored)
				if err != nil {
					return err
				}
				diskMessages = append(diskMessages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return diskMessages, err
}

func fromDiskMessage(message DiskMessage) storedMessage {
	return storedMessage{
		ID:      message.ID.String(),
		ChatID:  message.ChatID,
		Sender:  message.Sender,
		Content: message.Content,
		At:      message.At.UnixNano(),
	}
}

func toDiskMessage(stored storedMessage) (DiskMessage, error) {
	parsedID, err := uuid.Parse(stored.ID)
	if err != nil {
		return DiskMessage{}, err
	}
	return DiskMessage{
		ID:      parsedID,
		ChatID:  stored.ChatID,
		Sender:  stored.Sender,
		Content: stored.Content,
		At:      time.Unix(0, stored.At).UTC(),
	}, nil
}
