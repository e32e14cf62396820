package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"trust-lab/domain"
	liberrors "trust-lab/errors"
)

type IContactRepository interface {
	StoreBatch(messages []domain.ContactMessage) error
	ListRecent(limit int) ([]domain.ContactMessage, error)
}

// ContactRepository persists accepted contact-form messages until an
// operator reads them. Keys sort chronologically:
//
//	contact:{timestamp_padded}:{uuid} -> JSON message
type ContactRepository struct {
	db  *badger.DB
	ttl time.Duration
	log *slog.Logger
}

// DefaultContactTTL keeps contact messages around longer than comments;
// the inbox is read by a person, not a feed.
const DefaultContactTTL = 30 * 24 * time.Hour

func NewContactRepository(db *badger.DB, ttl time.Duration, log *slog.Logger) *ContactRepository {
	if ttl <= 0 {
		ttl = DefaultContactTTL
	}
	return &ContactRepository{db: db, ttl: ttl, log: log}
}

func contactKey(at time.Time, id string) []byte {
	return []byte(fmt.Sprintf("contact:%019d:%s", at.UnixNano(), id))
}

// StoreBatch writes a flushed sink batch in a single transaction.
func (r *ContactRepository) StoreBatch(messages []domain.ContactMessage) error {
	if len(messages) == 0 {
		return nil
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		for _, message := range messages {
			payload, err := json.Marshal(message)
			if err != nil {
				return err
			}
			entry := badger.NewEntry(contactKey(message.CreatedAt, message.ID.String()), payload).
				WithTTL(r.ttl)
			if err := txn.SetEntry(entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", liberrors.ErrStoreUnavailable, err)
	}
	return nil
}

// ListRecent returns the newest messages, capped at limit. A limit of
// zero or less means no cap.
func (r *ContactRepository) ListRecent(limit int) ([]domain.ContactMessage, error) {
	var messages []domain.ContactMessage
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("contact:")
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(messages) >= limit {
				return nil
			}
			err := it.Item().Value(func(value []byte) error {
				var message domain.ContactMessage
				if err := json.Unmarshal(value, &message); err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", liberrors.ErrStoreUnavailable, err)
	}
	return messages, nil
}
