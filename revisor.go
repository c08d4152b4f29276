// Copyright 2026 Pagemark Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package revisor

import (
	"log/slog"
	"time"

	"github.com/pagemark/revisor/ai"
	"github.com/pagemark/revisor/ai/openai"
	"github.com/pagemark/revisor/compare"
	"github.com/pagemark/revisor/config"
	"github.com/pagemark/revisor/ingest"
	"github.com/pagemark/revisor/pdf"
	"github.com/pagemark/revisor/retrieval"
	"github.com/pagemark/revisor/splitter"
	"github.com/pagemark/revisor/storage"
	"github.com/pagemark/revisor/storage/badger"
)

// Store bundles the vector index, the AI provider and the extractor,
// and constructs the pipeline, retrieval engine and comparator on top
// of them.
type Store struct {
	cfg       *config.Config
	index     storage.VectorIndex
	provider  ai.Provider
	extractor pdf.TextExtractor
	logger    *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	provider  ai.Provider
	extractor pdf.TextExtractor
}

// WithProvider substitutes the AI provider, bypassing the configured
// OpenAI-compatible one. Useful for tests.
func WithProvider(provider ai.Provider) StoreOption {
	return func(o *storeOptions) {
		o.provider = provider
	}
}

// WithExtractor substitutes the PDF text extractor.
func WithExtractor(extractor pdf.TextExtractor) StoreOption {
	return func(o *storeOptions) {
		o.extractor = extractor
	}
}

// Open wires a complete store from the configuration: the Badger-backed
// index at cfg.Store.Path, the embedding/generation provider and the
// PDF extractor.
func Open(cfg *config.Config, opts ...StoreOption) (*Store, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	options := &storeOptions{}
	for _, opt := range opts {
		opt(options)
	}

	index, err := badger.OpenIndex(cfg.Store.Path, cfg.Store.Collection)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		aiConfig := ai.NewConfig(
			ai.WithHost(cfg.Models.Host),
			ai.WithEmbeddingModel(cfg.Models.EmbeddingModel),
			ai.WithGenerationModel(cfg.Models.GenerationModel),
			ai.WithDimension(cfg.Models.Dimension),
			ai.WithRequestsPerSecond(cfg.Models.RequestsPerSecond),
		)
		provider, err = openai.NewProvider(aiConfig)
		if err != nil {
			index.Close()
			return nil, err
		}
	}

	extractor := options.extractor
	if extractor == nil {
		extractor = pdf.NewExtractor()
	}

	return &Store{
		cfg:       cfg,
		index:     index,
		provider:  provider,
		extractor: extractor,
		logger:    slog.Default(),
	}, nil
}

// Close releases the provider and the index.
func (s *Store) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.index.Close(); err != nil {
		s.logger.Error("error closing vector index", "err", err)
		return err
	}
	return nil
}

// Index exposes the underlying vector index.
func (s *Store) Index() storage.VectorIndex {
	return s.index
}

// NewPipeline constructs an ingestion pipeline with the configured
// chunking, download timeout and extractor.
func (s *Store) NewPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	split, err := splitter.New(s.cfg.Store.ChunkSize, s.cfg.Store.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	base := []ingest.Option{
		ingest.WithSplitter(split),
		ingest.WithExtractor(s.extractor),
		ingest.WithDownloadTimeout(time.Duration(s.cfg.Ingest.DownloadTimeoutSecs) * time.Second),
	}
	if s.cfg.Ingest.PoolSize > 0 {
		base = append(base, ingest.WithPoolSize(s.cfg.Ingest.PoolSize))
	}
	return ingest.NewPipeline(s.index, s.provider.Embedder(), append(base, opts...)...)
}

// NewEngine constructs a retrieval engine with the configured search
// limit and the provider's generator.
func (s *Store) NewEngine(opts ...retrieval.Option) (*retrieval.Engine, error) {
	base := []retrieval.Option{
		retrieval.WithTopK(s.cfg.Store.SearchLimit),
		retrieval.WithGenerator(s.provider.Generator()),
	}
	return retrieval.NewEngine(s.index, s.provider.Embedder(), append(base, opts...)...)
}

// NewComparator constructs a version comparator with the configured
// thresholds and the provider's generator.
func (s *Store) NewComparator(opts ...compare.Option) (*compare.Comparator, error) {
	base := []compare.Option{
		compare.WithThresholds(s.cfg.Compare.MatchThreshold, s.cfg.Compare.UnchangedThreshold),
		compare.WithGenerator(s.provider.Generator()),
	}
	return compare.NewComparator(s.index, append(base, opts...)...)
}
