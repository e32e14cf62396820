package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"trust-lab/domain"
	liberrors "trust-lab/errors"
)

type ICommentRepository interface {
	StoreComment(comment domain.Comment) error
	GetComments(postSlug string, includeHidden bool) ([]domain.Comment, error)
	CountBySlug() (map[string]int, error)
	HasRecentSubmission(ctx context.Context, identity string, since time.Time) (bool, error)
}

// CommentRepository persists moderated comments in BadgerDB.
//
// Key layout:
//
//	comment:{slug}:{timestamp_padded}:{uuid}  -> JSON comment
//	ident:{identity_digest}:{timestamp_padded} -> comment id
//
// The 19-digit zero padding keeps keys chronologically sorted under
// lexicographic iteration. The ident index is what the persistent
// rate-limit layer scans; it is written here, on the accept path, never
// by the limiter itself. Both entries carry the comment TTL so expired
// submissions vanish without a cleanup job.
type CommentRepository struct {
	db  *badger.DB
	ttl time.Duration
	log *slog.Logger
}

// DefaultTTL is how long a comment stays readable.
const DefaultTTL = 7 * 24 * time.Hour

func NewCommentRepository(db *badger.DB, ttl time.Duration, log *slog.Logger) *CommentRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CommentRepository{db: db, ttl: ttl, log: log}
}

func commentKey(slug string, at time.Time, id string) []byte {
	return []byte(fmt.Sprintf("comment:%s:%019d:%s", slug, at.UnixNano(), id))
}

func identKey(digest string, at time.Time) []byte {
	return []byte(fmt.Sprintf("ident:%s:%019d", digest, at.UnixNano()))
}

// StoreComment persists an accepted submission. Shadow-banned comments
// are stored like any other; only the read path treats them
// differently.
func (r *CommentRepository) StoreComment(comment domain.Comment) error {
	payload, err := json.Marshal(comment)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(commentKey(comment.PostSlug, comment.CreatedAt, comment.ID.String()), payload).
			WithTTL(r.ttl)
		if err := txn.SetEntry(entry); err != nil {
			return err
		}
		if comment.IdentityDigest != "" {
			marker := badger.NewEntry(identKey(comment.IdentityDigest, comment.CreatedAt), []byte(comment.ID.String())).
				WithTTL(r.ttl)
			if err := txn.SetEntry(marker); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetComments returns comments for one post, newest first. Shadow-banned
// entries are excluded unless includeHidden is set (operator tooling
// only); they must never reach another reader.
func (r *CommentRepository) GetComments(postSlug string, includeHidden bool) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("comment:%s:", postSlug))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key for this prefix, then walk
		// backwards in time.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var comment domain.Comment
				if err := json.Unmarshal(value, &comment); err != nil {
					return err
				}
				if comment.Status == domain.StatusShadowBanned && !includeHidden {
					return nil
				}
				comments = append(comments, comment)
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
	return comments, nil
}

// CountBySlug tallies visible comments per post for the feed.
func (r *CommentRepository) CountBySlug() (map[string]int, error) {
	counts := make(map[string]int)
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("comment:")
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var comment domain.Comment
				if err := json.Unmarshal(value, &comment); err != nil {
					return err
				}
				if comment.Status != domain.StatusShadowBanned {
					counts[comment.PostSlug]++
				}
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
	return counts, nil
}

// HasRecentSubmission implements the persistent rate-limit query: did
// this identity get a submission accepted after `since`? The identity
// is digested here so callers never handle key material.
func (r *CommentRepository) HasRecentSubmission(ctx context.Context, identity string, since time.Time) (bool, error) {
	digest := domain.DigestIdentity(identity)
	found := false
	err := r.db.View(func(txn *badger.Txn) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		prefix := []byte(fmt.Sprintf("ident:%s:", digest))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		// The newest marker is enough: keys sort by timestamp.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		it.Seek(seekKey)
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		key := string(it.Item().Key())
		nanos, err := strconv.ParseInt(strings.TrimPrefix(key, string(prefix)), 10, 64)
		if err != nil {
			return fmt.Errorf("malformed ident key %q: %w", key, err)
		}
		found = time.Unix(0, nanos).After(since)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", liberrors.ErrStoreUnavailable, err)
	}
	return found, nil
}
