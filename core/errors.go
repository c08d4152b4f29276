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


package core

import "errors"

// Failure taxonomy shared by all components. Callers match with errors.Is;
// producers wrap these with fmt.Errorf("...: %w", ...) to add context.
var (
	// ErrEmptyInput indicates empty or whitespace-only text after extraction.
	ErrEmptyInput = errors.New("empty input text")

	// ErrExtraction indicates an unreadable or corrupt source document.
	// Extraction failures are deterministic and are never retried.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbeddingProvider indicates a failed embedding-provider call.
	// These are treated as transient and retried with bounded backoff.
	ErrEmbeddingProvider = errors.New("embedding provider failed")

	// ErrDuplicateVersion indicates an ingest for an already-stored
	// (document, version) pair without the replace flag.
	ErrDuplicateVersion = errors.New("document version already exists")

	// ErrVersionNotFound indicates a referenced version with no stored chunks.
	ErrVersionNotFound = errors.New("document version not found")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyDocumentID indicates a missing document identifier.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrEmptyVersion indicates a missing version string.
	ErrEmptyVersion = errors.New("version cannot be empty")

	// ErrNegativeChunkIndex indicates a chunk index below zero.
	ErrNegativeChunkIndex = errors.New("chunk index cannot be negative")

	// ErrSparseChunkSet indicates chunk indices that are not dense and zero-based.
	ErrSparseChunkSet = errors.New("chunk indices must be dense and zero-based")
)
