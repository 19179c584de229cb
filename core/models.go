package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for sequence-backed entities such as feedback rows.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ResumeIDFromPath derives the stable document identifier for a file path.
// The result is a 40 character hex string (160-bit BLAKE2b digest).
func ResumeIDFromPath(path string) string {
	h, _ := blake2b.New(20, nil)
	h.Write([]byte(path))
	return hex.EncodeToString(h.Sum(nil))
}

// ShortResumeID returns the display prefix used when a resume has no known file.
func ShortResumeID(resumeID string) string {
	if len(resumeID) <= 8 {
		return resumeID
	}
	return resumeID[:8]
}

// FileRecord tracks the indexing state of a single document.
type FileRecord struct {
	FilePath     string
	ResumeID     string
	LastModified time.Time // mtime of the file when it was last embedded
	UpdatedAt    time.Time // when the record was last written
}

// VectorRecord is a stored chunk embedding.
type VectorRecord struct {
	ID       string // "{resume_id}-{index}"
	ResumeID string
	Rank     string
	Text     string
	Vector   []float32
}

// FeedbackRecord is a human correction of an earlier match decision.
type FeedbackRecord struct {
	Id            ID
	FileName      string
	Query         string
	LLMDecision   string
	LLMReason     string
	LLMConfidence float64
	UserDecision  string
	UserNotes     string
	Timestamp     time.Time
}

// Chunk is a retrieved slice of a document. Chunks are produced per
// retrieval call and never persisted in this form.
type Chunk struct {
	ID       string
	Text     string
	ResumeID string
	Rank     string
	Score    float32
}

// Decision is the reasoner's verdict for one candidate.
type Decision struct {
	IsMatch    bool    `json:"is_match"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// Match is a positive decision attached to a file name.
type Match struct {
	FileName   string  `json:"filename"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// Report is the aggregated outcome of a non-streaming analysis run.
type Report struct {
	Success   bool    `json:"success"`
	Verified  []Match `json:"verified_matches"`
	Uncertain []Match `json:"uncertain_matches"`
	Message   string  `json:"message"`
}

// CandidateSet groups chunks by resume ID and remembers the order in which
// resume IDs were first added.
type CandidateSet struct {
	order  []string
	chunks map[string][]Chunk
}

// NewCandidateSet returns an empty set.
func NewCandidateSet() *CandidateSet {
	return &CandidateSet{chunks: make(map[string][]Chunk)}
}

// Add appends a chunk under its resume ID.
func (s *CandidateSet) Add(chunk Chunk) {
	if _, ok := s.chunks[chunk.ResumeID]; !ok {
		s.order = append(s.order, chunk.ResumeID)
	}
	s.chunks[chunk.ResumeID] = append(s.chunks[chunk.ResumeID], chunk)
}

// IDs returns resume IDs in first-seen order.
func (s *CandidateSet) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Chunks returns the chunks recorded for a resume ID.
func (s *CandidateSet) Chunks(resumeID string) []Chunk {
	if s == nil {
		return nil
	}
	return s.chunks[resumeID]
}

// Has reports whether the resume ID is present.
func (s *CandidateSet) Has(resumeID string) bool {
	if s == nil {
		return false
	}
	_, ok := s.chunks[resumeID]
	return ok
}

// Len returns the number of distinct resume IDs.
func (s *CandidateSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}
