package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pagemark/revisor/core"
)

// Extractor implements TextExtractor on top of the ledongthuc/pdf parser.
type Extractor struct {
	logger *slog.Logger
}

var _ TextExtractor = (*Extractor)(nil)

// NewExtractor creates a PDF text extractor.
//
// Returns the TextExtractor interface to enforce abstraction.
func NewExtractor() TextExtractor {
	return &Extractor{
		logger: slog.Default().With("component", "pdf-extractor"),
	}
}

// ExtractText parses the PDF and returns its plain text page by page,
// pages joined by blank lines. The parser panics on some malformed
// inputs, so extraction is fenced with a recover that surfaces
// core.ErrExtraction instead.
func (e *Extractor) ExtractText(ctx context.Context, data []byte) (text string, info DocumentInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("pdf parser panicked", "panic", r)
			text = ""
			info = DocumentInfo{}
			err = fmt.Errorf("%w: malformed document: %v", core.ErrExtraction, r)
		}
	}()

	if len(data) == 0 {
		return "", DocumentInfo{}, fmt.Errorf("%w: empty document", core.ErrExtraction)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Error("failed to open pdf", "err", err)
		return "", DocumentInfo{}, fmt.Errorf("%w: %w", core.ErrExtraction, err)
	}

	info.PageCount = reader.NumPage()
	if docInfo := reader.Trailer().Key("Info"); docInfo.Kind() == pdf.Dict {
		if title := docInfo.Key("Title"); title.Kind() == pdf.String {
			info.Title = title.RawString()
		}
	}

	var pages []string
	for i := 1; i <= info.PageCount; i++ {
		if err := ctx.Err(); err != nil {
			return "", DocumentInfo{}, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("failed to extract page text", "page", i, "err", err)
			continue
		}
		if strings.TrimSpace(content) != "" {
			pages = append(pages, content)
		}
	}

	e.logger.Debug("extracted pdf text", "pages", info.PageCount, "nonEmptyPages", len(pages))
	return strings.Join(pages, "\n\n"), info, nil
}
