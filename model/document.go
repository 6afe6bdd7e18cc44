package model

import (
	"strings"

	"github.com/google/uuid"
	"github.com/tsawler/papertrail/rag"
)

// documentNamespace scopes deterministic document IDs.
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("papertrail/document"))

// Document represents an ingested PDF with extracted structure.
// It is built once per ingestion and must not be modified afterwards.
type Document struct {
	ID       string
	Metadata Metadata
	Pages    []*Page

	// Text is the normalized full text: page texts joined by a blank line.
	Text string

	Sections           []Section
	Citations          []Citation
	ReferencesText     string
	MethodologyContext string

	DOIs        []string
	URLs        []string
	CaptionCues []string

	// Layout holds one entry per page when layout analysis ran.
	Layout []PageLayout

	Backend    string // Name of the backend that produced the pages
	OCRApplied bool

	ChunkSize    int
	ChunkOverlap int

	Warnings []Warning
}

// Metadata contains document-level information
type Metadata struct {
	Title            string
	Authors          string
	Subject          string
	Creator          string
	Producer         string
	CreationDate     string
	ModificationDate string
	FileSize         int64
	ContentHash      string // Hex SHA-256 of the file bytes
}

// Section is a named span of Document.Text. Start and End are byte offsets;
// Text excludes the heading line itself.
type Section struct {
	Name    string
	Heading string
	Start   int
	End     int
	Text    string
}

// Len returns the byte length of the section span.
func (s Section) Len() int {
	return s.End - s.Start
}

// DocumentID derives the stable document ID from a content hash.
func DocumentID(contentHash string) string {
	return uuid.NewSHA1(documentNamespace, []byte(contentHash)).String()
}

// PageCount returns the total number of pages
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// GetPage returns a page by number (1-indexed)
func (d *Document) GetPage(number int) *Page {
	if number < 1 || number > len(d.Pages) {
		return nil
	}
	return d.Pages[number-1]
}

// HasCoordinates returns true if any page carries positioned blocks.
func (d *Document) HasCoordinates() bool {
	for _, page := range d.Pages {
		if page.HasCoordinates() {
			return true
		}
	}
	return false
}

// SectionByName returns the first section with the given name, compared
// case-insensitively.
func (d *Document) SectionByName(name string) (Section, bool) {
	for _, s := range d.Sections {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Section{}, false
}

// Chunks splits the full text using the chunk size and overlap recorded at
// ingestion.
func (d *Document) Chunks() []rag.Chunk {
	return d.ChunksWith(d.ChunkSize, d.ChunkOverlap)
}

// ChunksWith splits the full text into fixed-size overlapping chunks.
func (d *Document) ChunksWith(size, overlap int) []rag.Chunk {
	return rag.NewChunker(rag.ChunkerConfig{
		ChunkSize:    size,
		ChunkOverlap: overlap,
	}).Chunk(d.ID, d.Text)
}

// HasWarning reports whether a warning of the given kind was recorded.
func (d *Document) HasWarning(kind WarningKind) bool {
	for _, w := range d.Warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}
