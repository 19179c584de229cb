package ingestion

import (
	"fmt"
	"strings"

	"github.com/poiesic/rankmatch/core"
)

// Default chunking parameters, in words.
const (
	DefaultChunkWindow  = 400
	DefaultChunkOverlap = 50
)

// Chunker splits text into overlapping windows of whitespace-separated words.
type Chunker struct {
	window  int
	overlap int
}

// NewChunker creates a chunker. Overlap must be non-negative and smaller than window.
func NewChunker(window, overlap int) (Chunker, error) {
	if window <= 0 || overlap < 0 || overlap >= window {
		return Chunker{}, fmt.Errorf("%w: window %d, overlap %d", ErrInvalidChunking, window, overlap)
	}
	return Chunker{window: window, overlap: overlap}, nil
}

// DefaultChunker returns a 400-word window with a 50-word overlap.
func DefaultChunker() Chunker {
	return Chunker{window: DefaultChunkWindow, overlap: DefaultChunkOverlap}
}

// Chunk returns one chunk per window start. Windows start every
// window-overlap words; the last windows may be shorter than window.
func (c Chunker) Chunk(text, resumeID, rank string) []core.Chunk {
	if c.window <= 0 || c.overlap >= c.window {
		c = DefaultChunker()
	}
	tokens := strings.Fields(text)
	step := c.window - c.overlap

	chunks := make([]core.Chunk, 0, (len(tokens)+step-1)/step)
	for i, idx := 0, 0; i < len(tokens); i, idx = i+step, idx+1 {
		end := min(i+c.window, len(tokens))
		chunks = append(chunks, core.Chunk{
			ID:       fmt.Sprintf("%s-%d", resumeID, idx),
			Text:     strings.Join(tokens[i:end], " "),
			ResumeID: resumeID,
			Rank:     rank,
		})
	}
	return chunks
}

// Texts returns the text of each chunk.
func Texts(chunks []core.Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}
