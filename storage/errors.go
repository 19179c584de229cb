package storage

import "errors"

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidQuery indicates invalid query parameters.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrVectorStore wraps failures of the vector store.
	ErrVectorStore = errors.New("vector store failure")

	// ErrDimensionMismatch indicates vectors of mixed dimension in one call.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
