package pdf

import "context"

// DocumentInfo carries basic metadata extracted alongside the text.
type DocumentInfo struct {
	Title     string
	PageCount int
}

// TextExtractor turns raw PDF bytes into page-ordered plain text plus
// basic metadata. Extraction failures are deterministic: callers surface
// them immediately and never retry.
// Implementations must be thread-safe for concurrent use.
type TextExtractor interface {
	// ExtractText returns the document's plain text in page order.
	// Failures wrap core.ErrExtraction.
	ExtractText(ctx context.Context, data []byte) (string, DocumentInfo, error)
}
