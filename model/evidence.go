package model

import "fmt"

// EvidenceItem locates a snippet within the source document.
// Metadata is supplied by the caller and carried through unchanged.
type EvidenceItem struct {
	Snippet  string
	Page     int
	BBox     BBox
	Score    float64
	Matched  bool // False when BBox is the fallback estimate
	Metadata map[string]any
}

// WarningKind names a non-fatal failure class.
type WarningKind string

const (
	WarnBackendFailed      WarningKind = "backend_failed"
	WarnOCRUnavailable     WarningKind = "ocr_unavailable"
	WarnOCRPageFailed      WarningKind = "ocr_page_failed"
	WarnOCRNoText          WarningKind = "ocr_no_text"
	WarnReferencesNotFound WarningKind = "references_not_found"
	WarnMalformedCitation  WarningKind = "malformed_citation"
	WarnMalformedBlock     WarningKind = "malformed_block"
)

// Warning records a degraded unit of work. Page is 0 for document-level
// warnings.
type Warning struct {
	Kind    WarningKind
	Page    int
	Message string
}

func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("%s (page %d): %s", w.Kind, w.Page, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}
