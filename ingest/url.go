package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/pagemark/revisor/core"
)

const defaultDownloadTimeout = 60 * time.Second

// maxDownloadSize caps a single document download at 100 MiB.
const maxDownloadSize = 100 << 20

// downloader fetches documents over HTTP with a per-request timeout.
type downloader struct {
	client  *http.Client
	timeout time.Duration
}

func newDownloader(timeout time.Duration) *downloader {
	return &downloader{
		client:  &http.Client{},
		timeout: timeout,
	}
}

func (d *downloader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrDownloadFailed, rawURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	return data, nil
}

// URLResult reports the outcome of ingesting a single URL within a batch.
type URLResult struct {
	URL        string
	DocumentID string
	ChunkCount int
	Success    bool
	Message    string
}

// IngestURL downloads a PDF, extracts its text and runs the standard
// ingestion. The filename is derived from the URL path; title and page
// count come from the extracted document info unless the caller set them.
func (p *Pipeline) IngestURL(ctx context.Context, rawURL, version string, opts *IngestOptions) (*core.IngestResult, error) {
	if p.extractor == nil {
		return nil, ErrExtractorRequired
	}
	if opts == nil {
		opts = &IngestOptions{}
	}

	data, err := p.downloader.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	text, info, err := p.extractor.ExtractText(ctx, data)
	if err != nil {
		return nil, err
	}

	urlOpts := *opts
	if urlOpts.Filename == "" {
		urlOpts.Filename = filenameFromURL(rawURL)
	}
	if urlOpts.Title == "" {
		urlOpts.Title = info.Title
	}
	if urlOpts.PageCount == 0 {
		urlOpts.PageCount = info.PageCount
	}

	return p.IngestText(ctx, text, version, &urlOpts)
}

// IngestURLs processes a batch of URLs with bounded parallelism.
// Failures are isolated per URL; the returned slice has one entry per
// input URL in input order.
func (p *Pipeline) IngestURLs(ctx context.Context, urls []string, version string, parallelism int, opts *IngestOptions) ([]*URLResult, error) {
	if p.extractor == nil {
		return nil, ErrExtractorRequired
	}
	if parallelism < 1 {
		parallelism = 1
	}

	pool, err := ants.NewPool(parallelism)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([]*URLResult, len(urls))

	var wg sync.WaitGroup
	for i, rawURL := range urls {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[i] = p.ingestOneURL(ctx, rawURL, version, opts)
		})
		if submitErr != nil {
			wg.Done()
			results[i] = &URLResult{URL: rawURL, Message: submitErr.Error()}
		}
	}
	wg.Wait()

	return results, nil
}

func (p *Pipeline) ingestOneURL(ctx context.Context, rawURL, version string, opts *IngestOptions) *URLResult {
	var urlOpts IngestOptions
	if opts != nil {
		urlOpts = *opts
	}
	// Each batch entry is its own document
	urlOpts.DocumentID = ""

	result, err := p.IngestURL(ctx, rawURL, version, &urlOpts)
	if err != nil {
		p.logger.Warn("url ingestion failed", "url", rawURL, "err", err)
		return &URLResult{URL: rawURL, Message: err.Error()}
	}
	return &URLResult{
		URL:        rawURL,
		DocumentID: result.DocumentID,
		ChunkCount: result.ChunkCount,
		Success:    true,
		Message:    fmt.Sprintf("ingested %d chunks", result.ChunkCount),
	}
}

// filenameFromURL extracts the final path element of a URL, falling
// back to the raw string when it does not parse.
func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" {
		return rawURL
	}
	name := path.Base(parsed.Path)
	if name == "/" || name == "." {
		return rawURL
	}
	return name
}
