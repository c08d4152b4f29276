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


package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pagemark/revisor/ai"
	"github.com/pagemark/revisor/core"
	"github.com/pagemark/revisor/storage"
)

const (
	defaultTopK           = 10
	defaultContextBudget  = 8000
	contextChunkSeparator = "\n\n---\n\n"
)

// Engine answers semantic queries over the stored document versions.
type Engine struct {
	index         storage.VectorIndex
	embedder      ai.Embedder
	generator     ai.Generator
	topK          int
	contextBudget int
	logger        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithTopK sets the maximum number of chunks a query returns.
// Default is 10.
func WithTopK(k int) Option {
	return func(e *Engine) error {
		if k > 0 {
			e.topK = k
		}
		return nil
	}
}

// WithContextBudget caps the assembled context length in runes.
// Lower-ranked chunks are dropped once the budget is reached.
// Default is 8000.
func WithContextBudget(budget int) Option {
	return func(e *Engine) error {
		if budget > 0 {
			e.contextBudget = budget
		}
		return nil
	}
}

// WithGenerator enables the Answer operation.
func WithGenerator(generator ai.Generator) Option {
	return func(e *Engine) error {
		e.generator = generator
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a retrieval engine over the given index and embedder.
func NewEngine(index storage.VectorIndex, embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		index:         index,
		embedder:      embedder,
		topK:          defaultTopK,
		contextBudget: defaultContextBudget,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Query embeds the query, searches the index and assembles a
// length-bounded context from the ranked chunks. Zero hits is a valid
// result with an empty context.
func (e *Engine) Query(ctx context.Context, query string, filter *storage.SearchFilter) (*core.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query", core.ErrEmptyInput)
	}

	vector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := e.index.Search(ctx, vector, e.topK, filter)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("query executed", "hits", len(results))

	return &core.RetrievalResult{
		Query:   query,
		Chunks:  results,
		Context: e.assembleContext(results),
	}, nil
}

// assembleContext joins chunk texts in rank order until the budget is
// reached. A chunk that would overflow the budget is dropped along with
// everything ranked below it, except that the top chunk is truncated
// rather than dropped so the context is never empty on a hit.
func (e *Engine) assembleContext(results []*core.SearchResult) string {
	var builder strings.Builder
	used := 0
	for i, result := range results {
		text := result.Chunk.Text
		length := utf8.RuneCountInString(text)
		if i > 0 {
			length += utf8.RuneCountInString(contextChunkSeparator)
		}
		if used+length > e.contextBudget {
			if i == 0 {
				return truncateRunes(text, e.contextBudget)
			}
			break
		}
		if i > 0 {
			builder.WriteString(contextChunkSeparator)
		}
		builder.WriteString(text)
		used += length
	}
	return builder.String()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// Answer runs Query and asks the generator to respond from the
// assembled context, citing the retrieved chunks as sources.
func (e *Engine) Answer(ctx context.Context, query string, filter *storage.SearchFilter) (*core.Answer, error) {
	if e.generator == nil {
		return nil, ErrGeneratorRequired
	}

	retrieved, err := e.Query(ctx, query, filter)
	if err != nil {
		return nil, err
	}

	if len(retrieved.Chunks) == 0 {
		return &core.Answer{
			Response: "No relevant content was found for this question.",
		}, nil
	}

	response, err := e.generator.Generate(ctx, answerPrompt(retrieved))
	if err != nil {
		return nil, err
	}

	sources := make([]core.Source, len(retrieved.Chunks))
	for i, result := range retrieved.Chunks {
		sources[i] = core.Source{
			DocumentID: result.Chunk.DocumentID,
			Version:    result.Chunk.Version,
			ChunkIndex: result.Chunk.ChunkIndex,
			Title:      result.Chunk.Metadata["title"],
			Score:      result.Score,
		}
	}

	return &core.Answer{
		Response: response,
		Sources:  sources,
	}, nil
}

func answerPrompt(retrieved *core.RetrievalResult) string {
	var builder strings.Builder
	builder.WriteString("Answer the question using only the document excerpts below. ")
	builder.WriteString("If the excerpts do not contain the answer, say so.\n\n")
	builder.WriteString("Excerpts:\n")
	builder.WriteString(retrieved.Context)
	builder.WriteString("\n\nQuestion: ")
	builder.WriteString(retrieved.Query)
	return builder.String()
}

// ListVersions returns the catalog of stored versions for a document.
func (e *Engine) ListVersions(ctx context.Context, documentID string) ([]*core.VersionInfo, error) {
	return e.index.ListVersions(ctx, documentID)
}
