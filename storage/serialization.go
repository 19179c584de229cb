package storage

import (
	"fmt"

	"github.com/poiesic/rankmatch/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalFileRecord serializes a FileRecord to bytes.
func MarshalFileRecord(record *core.FileRecord) []byte {
	buf := make([]byte, core.FileRecordMUS.Size(*record))
	core.FileRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalFileRecord deserializes a FileRecord from bytes.
func UnmarshalFileRecord(data []byte) (*core.FileRecord, error) {
	record, _, err := core.FileRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalVectorRecord serializes a VectorRecord to bytes.
func MarshalVectorRecord(record *core.VectorRecord) []byte {
	buf := make([]byte, core.VectorRecordMUS.Size(*record))
	core.VectorRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalVectorRecord deserializes a VectorRecord from bytes.
func UnmarshalVectorRecord(data []byte) (*core.VectorRecord, error) {
	record, _, err := core.VectorRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalFeedbackRecord serializes a FeedbackRecord to bytes.
func MarshalFeedbackRecord(record *core.FeedbackRecord) []byte {
	buf := make([]byte, core.FeedbackRecordMUS.Size(*record))
	core.FeedbackRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalFeedbackRecord deserializes a FeedbackRecord from bytes.
func UnmarshalFeedbackRecord(data []byte) (*core.FeedbackRecord, error) {
	record, _, err := core.FeedbackRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}
