package rag

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// chunkNamespace scopes deterministic chunk IDs.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("papertrail/chunk"))

// Chunk is a fixed-size window over a document's full text.
type Chunk struct {
	// ID is stable for a given document ID and chunk index
	ID string `json:"id"`

	// Index is the position of this chunk in the document (0-indexed)
	Index int `json:"index"`

	// Text is the chunk content, equal to the source text[Start:End]
	Text string `json:"text"`

	// Start and End are byte offsets into the source text
	Start int `json:"start"`
	End   int `json:"end"`
}

// EstimatedTokens is a rough token count (chars/4).
func (c Chunk) EstimatedTokens() int {
	return (utf8.RuneCountInString(c.Text) + 3) / 4
}

// ChunkerConfig holds configuration for chunking
type ChunkerConfig struct {
	// ChunkSize is the target chunk length in bytes
	ChunkSize int `yaml:"chunk_size"`

	// ChunkOverlap is how many bytes of the previous chunk are repeated at
	// the start of the next one
	ChunkOverlap int `yaml:"chunk_overlap"`

	// MinBoundaryRatio is how far back from the target end (as a fraction
	// of ChunkSize) a sentence or word boundary is searched for
	MinBoundaryRatio float64 `yaml:"min_boundary_ratio"`
}

// DefaultChunkerConfig returns sensible defaults for chunking
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		ChunkSize:        4000,
		ChunkOverlap:     200,
		MinBoundaryRatio: 0.5,
	}
}

// Chunker splits text into overlapping chunks
type Chunker struct {
	config ChunkerConfig
}

// NewChunker creates a chunker. Zero or invalid fields fall back to the
// defaults; an overlap of half the chunk size or more is reduced below it.
func NewChunker(config ChunkerConfig) *Chunker {
	def := DefaultChunkerConfig()
	if config.ChunkSize <= 0 {
		config.ChunkSize = def.ChunkSize
	}
	if config.ChunkOverlap < 0 {
		config.ChunkOverlap = 0
	}
	if config.ChunkOverlap >= config.ChunkSize/2 {
		config.ChunkOverlap = config.ChunkSize / 4
	}
	if config.MinBoundaryRatio <= 0 || config.MinBoundaryRatio >= 1 {
		config.MinBoundaryRatio = def.MinBoundaryRatio
	}
	return &Chunker{config: config}
}

// Config returns the effective configuration.
func (c *Chunker) Config() ChunkerConfig {
	return c.config
}

// Chunk splits text into chunks. Chunk ends prefer paragraph breaks, then
// sentence ends, then whitespace; the overlap starts on a word boundary.
// The chunks cover the whole text in order.
func (c *Chunker) Chunk(docID, text string) []Chunk {
	if text == "" {
		return nil
	}

	var chunks []Chunk
	start := 0
	for start < len(text) {
		end := c.chunkEnd(text, start)
		chunks = append(chunks, Chunk{
			ID:    chunkID(docID, len(chunks)),
			Index: len(chunks),
			Text:  text[start:end],
			Start: start,
			End:   end,
		})
		if end >= len(text) {
			break
		}

		next := overlapStart(text, start, end, c.config.ChunkOverlap)
		start = next
	}
	return chunks
}

func (c *Chunker) chunkEnd(text string, start int) int {
	target := start + c.config.ChunkSize
	if target >= len(text) {
		return len(text)
	}
	target = runeFloor(text, target)
	minPos := start + int(float64(c.config.ChunkSize)*c.config.MinBoundaryRatio)

	if b := FindBoundary(text, minPos, target); b > start {
		return b
	}
	if target <= start {
		// A single rune larger than the chunk size.
		_, size := utf8.DecodeRuneInString(text[start:])
		return start + size
	}
	return target
}

// overlapStart picks where the next chunk begins: overlap bytes before end,
// moved forward to the next word start, and always after start.
func overlapStart(text string, start, end, overlap int) int {
	if overlap <= 0 {
		return end
	}
	next := runeFloor(text, end-overlap)
	for next < end && next > 0 && !isSpace(text[next-1]) {
		next++
	}
	next = runeFloor(text, next)
	if next <= start || next >= end {
		return end
	}
	return next
}

func chunkID(docID string, index int) string {
	name := fmt.Sprintf("%s#%d", docID, index)
	return uuid.NewSHA1(chunkNamespace, []byte(name)).String()
}

// runeFloor moves i back to the nearest rune start.
func runeFloor(text string, i int) int {
	if i >= len(text) {
		return len(text)
	}
	if i < 0 {
		return 0
	}
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

func isSpace(b byte) bool {
	return strings.IndexByte(" \t\n\r", b) >= 0
}
