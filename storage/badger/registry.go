package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/rankmatch/core"
	"github.com/poiesic/rankmatch/storage"
)

// FileRegistry implements storage.FileRegistry for BadgerDB.
type FileRegistry struct {
	backend *Backend
}

var _ storage.FileRegistry = (*FileRegistry)(nil)

// NewFileRegistry creates a new FileRegistry.
func NewFileRegistry(backend *Backend) *FileRegistry {
	return &FileRegistry{
		backend: backend,
	}
}

// NeedsProcessing reports whether the file is unknown or has a newer mtime
// than the one recorded.
func (r *FileRegistry) NeedsProcessing(ctx context.Context, path string, mtime time.Time) (bool, error) {
	record, err := r.GetFileRecord(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	// Stored times have microsecond precision
	return mtime.Truncate(time.Microsecond).After(record.LastModified), nil
}

// GetResumeID returns the recorded resume ID, or the path-derived one.
func (r *FileRegistry) GetResumeID(ctx context.Context, path string) (string, error) {
	record, err := r.GetFileRecord(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		return core.ResumeIDFromPath(path), nil
	}
	if err != nil {
		return "", err
	}
	return record.ResumeID, nil
}

// UpsertFileRecord inserts a record or refreshes the mtime of an existing one.
func (r *FileRegistry) UpsertFileRecord(ctx context.Context, path string, mtime time.Time, resumeID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeFileRecordKey(path)
		record := &core.FileRecord{
			FilePath: path,
			ResumeID: resumeID,
		}

		value, err := readValue(tx, key)
		switch {
		case err == nil:
			existing, err := storage.UnmarshalFileRecord(value)
			if err != nil {
				return err
			}
			record.ResumeID = existing.ResumeID
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}

		record.LastModified = mtime.UTC().Truncate(time.Microsecond)
		record.UpdatedAt = time.Now().UTC()
		if err := tx.Set(key, storage.MarshalFileRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetFileRecord retrieves the registry entry for a path.
func (r *FileRegistry) GetFileRecord(ctx context.Context, path string) (*core.FileRecord, error) {
	var record *core.FileRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		value, err := readValue(tx, makeFileRecordKey(path))
		if err != nil {
			return err
		}
		record, err = storage.UnmarshalFileRecord(value)
		return err
	}, false)
	return record, err
}
