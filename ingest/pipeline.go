package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/pagemark/revisor/ai"
	"github.com/pagemark/revisor/core"
	"github.com/pagemark/revisor/pdf"
	"github.com/pagemark/revisor/splitter"
	"github.com/pagemark/revisor/storage"
)

const (
	defaultChunkSize   = 1000
	defaultOverlap     = 200
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
)

// Pipeline turns raw document text into an embedded, versioned chunk
// set and stores it. Embedding calls for one document run concurrently
// on a worker pool and are joined back in chunk order.
type Pipeline struct {
	index       storage.VectorIndex
	embedder    ai.Embedder
	extractor   pdf.TextExtractor
	splitter    *splitter.Splitter
	pool        *ants.Pool
	downloader  *downloader
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithSplitter replaces the default chunking configuration.
func WithSplitter(s *splitter.Splitter) Option {
	return func(p *Pipeline) error {
		if s != nil {
			p.splitter = s
		}
		return nil
	}
}

// WithExtractor sets the text extractor used by the URL ingestion path.
func WithExtractor(extractor pdf.TextExtractor) Option {
	return func(p *Pipeline) error {
		p.extractor = extractor
		return nil
	}
}

// WithRetry sets the embedding retry policy.
// Defaults are 3 attempts with a 500ms base delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// WithDownloadTimeout bounds each URL download.
// Default is 60 seconds.
func WithDownloadTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		p.downloader.timeout = timeout
		return nil
	}
}

// NewPipeline creates an ingestion pipeline over the given index and
// embedder.
func NewPipeline(index storage.VectorIndex, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	split, err := splitter.New(defaultChunkSize, defaultOverlap)
	if err != nil {
		return nil, err
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		index:       index,
		embedder:    embedder,
		splitter:    split,
		pool:        pool,
		downloader:  newDownloader(defaultDownloadTimeout),
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	DocumentID string            // Generated when empty
	Replace    bool              // Replace an existing chunk set for the pair
	Metadata   map[string]string // Caller metadata attached to every chunk
	Title      string
	PageCount  int
	Filename   string
}

// IngestText splits, embeds and stores one document version.
// Empty or whitespace-only text is rejected.
func (p *Pipeline) IngestText(ctx context.Context, text, version string, opts *IngestOptions) (*core.IngestResult, error) {
	if opts == nil {
		opts = &IngestOptions{}
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: document text", core.ErrEmptyInput)
	}
	if version == "" {
		return nil, core.ErrEmptyVersion
	}

	documentID := opts.DocumentID
	if documentID == "" {
		documentID = uuid.NewString()
	}

	texts := p.splitter.Split(text)
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: document text", core.ErrEmptyInput)
	}

	vectors, err := p.embedAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	metadata := chunkMetadata(opts, now)

	chunks := make([]*core.Chunk, len(texts))
	for i, chunkText := range texts {
		chunks[i] = &core.Chunk{
			DocumentID: documentID,
			Version:    version,
			ChunkIndex: i,
			Text:       chunkText,
			Vector:     vectors[i],
			Metadata:   metadata,
			CreatedAt:  now,
		}
	}

	if err := p.index.Upsert(ctx, chunks, opts.Replace); err != nil {
		return nil, err
	}

	p.logger.Info("ingested document version",
		"documentID", documentID, "version", version, "chunks", len(chunks))

	return &core.IngestResult{
		DocumentID: documentID,
		Version:    version,
		Collection: p.index.Collection(),
		ChunkCount: len(chunks),
	}, nil
}

// embedAll dispatches one embedding task per chunk to the pool and
// joins results positionally. Each task retries with backoff; the
// first failure wins and the whole ingestion fails.
func (p *Pipeline) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, text := range texts {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()

			var vector []float32
			err := RetryWithBackoff(ctx, func() error {
				var embedErr error
				vector, embedErr = p.embedder.EmbedText(ctx, text)
				return embedErr
			}, p.maxAttempts, p.baseDelay)

			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("embedding chunk %d: %w", i, err)
				}
				mu.Unlock()
				return
			}
			vectors[i] = vector
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

// chunkMetadata merges caller metadata with document-level fields.
// Caller keys never overwrite the document fields.
func chunkMetadata(opts *IngestOptions, ingestedAt time.Time) map[string]string {
	metadata := make(map[string]string, len(opts.Metadata)+4)
	for key, value := range opts.Metadata {
		metadata[key] = value
	}
	if opts.Filename != "" {
		metadata["filename"] = opts.Filename
	}
	if opts.Title != "" {
		metadata["title"] = opts.Title
	}
	if opts.PageCount > 0 {
		metadata["page_count"] = strconv.Itoa(opts.PageCount)
	}
	metadata["ingested_at"] = ingestedAt.Format(time.RFC3339)
	return metadata
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
