// Package pdf provides text extraction from PDF documents.
//
// The core pipeline depends only on the TextExtractor interface; the
// bundled implementation uses the ledongthuc/pdf parser. Extraction
// failures wrap core.ErrExtraction and are never retried.
package pdf
