package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/rankmatch/core"
)

// Key prefixes for different data types
const (
	fileRecordPrefix   = "filrec"
	feedbackPrefix     = "fdbrec"
	feedbackTimePrefix = "fdbrect"
	feedbackIDSeq      = "fdbrecseq"
	vectorPrefix       = "vecrec"
)

// makeFileRecordKey generates a key for a registry entry by file path.
func makeFileRecordKey(path string) []byte {
	return []byte(fileRecordPrefix + ":" + path)
}

// makeFeedbackKey generates a key for a feedback record by ID.
func makeFeedbackKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", feedbackPrefix, id))
}

// makeFeedbackTimeKey generates a composite key for the timestamp index.
// Format: prefix:timestamp:id
func makeFeedbackTimeKey(timestamp time.Time, id core.ID) []byte {
	prefixBytes := []byte(feedbackTimePrefix + ":")
	buf := make([]byte, len(prefixBytes)+16) // 8 bytes for timestamp + 8 bytes for ID
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeFeedbackTimeSeekKey returns a key past every entry of the timestamp
// index, for reverse iteration.
func makeFeedbackTimeSeekKey() []byte {
	prefixBytes := []byte(feedbackTimePrefix + ":")
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	for i := offset; i < len(buf); i++ {
		buf[i] = 0xff
	}
	return buf
}

// makeVectorPartitionPrefix generates the key prefix shared by every vector
// of one rank in one index.
// Format: prefix:index:rankhash:
func makeVectorPartitionPrefix(index, rank string) []byte {
	prefixBytes := []byte(vectorPrefix + ":" + index + ":")
	buf := make([]byte, len(prefixBytes)+9)
	offset := copy(buf, prefixBytes)
	// Ranks are free text; hash them so separators inside a rank cannot collide
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(rank)))
	buf[len(buf)-1] = ':'
	return buf
}

// makeVectorKey generates a key for a chunk vector.
// Format: prefix:index:rankhash:chunkID
func makeVectorKey(index, rank, chunkID string) []byte {
	prefix := makeVectorPartitionPrefix(index, rank)
	return append(prefix, chunkID...)
}
