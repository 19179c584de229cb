package badger

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/rankmatch/core"
	"github.com/poiesic/rankmatch/storage"
)

// FeedbackStore implements storage.FeedbackStore for BadgerDB.
// Records are keyed by a sequence ID and indexed by timestamp.
type FeedbackStore struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.FeedbackStore = (*FeedbackStore)(nil)

// NewFeedbackStore creates a new FeedbackStore.
func NewFeedbackStore(backend *Backend) (*FeedbackStore, error) {
	idSeq, err := backend.GetSequence(feedbackIDSeq)
	if err != nil {
		return nil, err
	}

	return &FeedbackStore{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (s *FeedbackStore) Close() error {
	return s.idSeq.Release()
}

// AddFeedback appends a feedback record.
func (s *FeedbackStore) AddFeedback(ctx context.Context, record *core.FeedbackRecord) error {
	if err := core.ValidateFeedbackRecord(record); err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := s.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = s.idSeq.Next()
			if err != nil {
				return err
			}
		}
		record.Id = core.ID(nextID)

		if record.Timestamp.IsZero() {
			record.Timestamp = time.Now().UTC()
		}
		record.Timestamp = record.Timestamp.Truncate(time.Microsecond)

		if err := tx.Set(makeFeedbackKey(record.Id), storage.MarshalFeedbackRecord(record)); err != nil {
			return err
		}
		timeKey := makeFeedbackTimeKey(record.Timestamp, record.Id)
		if err := tx.Set(timeKey, storage.MarshalID(record.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// RecentFeedback returns the newest records whose query contains the first
// token of query, case-insensitively.
func (s *FeedbackStore) RecentFeedback(ctx context.Context, query string, limit int) ([]*core.FeedbackRecord, error) {
	terms := strings.Fields(query)
	if len(terms) == 0 || limit <= 0 {
		return []*core.FeedbackRecord{}, nil
	}
	term := strings.ToLower(terms[0])
	return s.scanRecent(limit, func(record *core.FeedbackRecord) bool {
		return strings.Contains(strings.ToLower(record.Query), term)
	})
}

// ListFeedback returns up to limit records, newest first.
func (s *FeedbackStore) ListFeedback(ctx context.Context, limit int) ([]*core.FeedbackRecord, error) {
	if limit <= 0 {
		return []*core.FeedbackRecord{}, nil
	}
	return s.scanRecent(limit, func(*core.FeedbackRecord) bool { return true })
}

// scanRecent walks the timestamp index from newest to oldest.
func (s *FeedbackStore) scanRecent(limit int, keep func(*core.FeedbackRecord) bool) ([]*core.FeedbackRecord, error) {
	results := []*core.FeedbackRecord{}
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(feedbackTimePrefix + ":")
		for iter.Seek(makeFeedbackTimeSeekKey()); iter.Valid() && len(results) < limit; iter.Next() {
			item := iter.Item()
			if !bytes.HasPrefix(item.Key(), prefix) {
				break
			}

			var id core.ID
			if err := item.Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			value, err := readValue(tx, makeFeedbackKey(id))
			if err != nil {
				return err
			}
			record, err := storage.UnmarshalFeedbackRecord(value)
			if err != nil {
				return err
			}
			if keep(record) {
				results = append(results, record)
			}
		}
		return nil
	}, false)
	return results, err
}
