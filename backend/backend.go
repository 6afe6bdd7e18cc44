package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tsawler/papertrail/model"
)

// ErrNoText is returned by a backend that read the file but recovered no
// text on any page.
var ErrNoText = errors.New("no text extracted")

// Backend extracts raw pages from a PDF file. Implementations must be safe
// for concurrent use.
type Backend interface {
	// Name identifies the backend in logs, warnings and Document.Backend.
	Name() string

	// Extract reads at most maxPages pages (0 means all) from path.
	Extract(ctx context.Context, path string, maxPages int) ([]RawPage, RawMetadata, error)
}

// RawPage is one page as produced by a backend, before normalization.
type RawPage struct {
	Number int // 1-indexed
	Text   string
	Blocks []model.TextBlock
	Width  float64
	Height float64

	// DroppedBlocks counts blocks discarded for inconsistent geometry.
	DroppedBlocks int
}

// RawMetadata is the document information a backend could read. Empty
// fields mean the value was absent.
type RawMetadata struct {
	Title            string
	Authors          string
	Subject          string
	Creator          string
	Producer         string
	CreationDate     string
	ModificationDate string
}

// HasText reports whether any page carries non-blank text.
func HasText(pages []RawPage) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}

// limitPages returns the page count to read given the document total and a
// maxPages option (0 means no limit).
func limitPages(total, maxPages int) int {
	if maxPages > 0 && maxPages < total {
		return maxPages
	}
	return total
}

// recoverError converts a panic inside a third-party reader into an error.
func recoverError(name string, errp *error) {
	if r := recover(); r != nil {
		*errp = fmt.Errorf("%s: recovered from panic: %v", name, r)
	}
}
