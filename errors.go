package papertrail

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fatal ingestion failures. Test with errors.Is.
var (
	ErrFileNotFound      = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrExtractionFailed  = errors.New("extraction failed")
)

// ErrorKind classifies an IngestError.
type ErrorKind string

const (
	KindFileNotFound      ErrorKind = "file_not_found"
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	KindExtractionFailed  ErrorKind = "extraction_failed"
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindFileNotFound:
		return ErrFileNotFound
	case KindUnsupportedFormat:
		return ErrUnsupportedFormat
	default:
		return ErrExtractionFailed
	}
}

// IngestError is the only error Ingest returns. Every other failure is
// recorded as a model.Warning on the document.
type IngestError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *IngestError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind.sentinel(), e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind.sentinel(), e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *IngestError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
func (e *IngestError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func ingestError(kind ErrorKind, path string, err error) error {
	return &IngestError{Kind: kind, Path: path, Err: err}
}
