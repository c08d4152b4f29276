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

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - DocumentID must not be empty
//   - Version must not be empty
//   - Text must not be empty
//   - ChunkIndex must be >= 0
//
// NOT validated:
//   - Vector (can be empty until the pipeline embeds the chunk)
//   - Metadata (free-form)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.DocumentID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyDocumentID)
	}

	if chunk.Version == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyVersion)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyInput)
	}

	if chunk.ChunkIndex < 0 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidChunk, ErrNegativeChunkIndex, chunk.ChunkIndex)
	}

	return nil
}

// ValidateChunkSet validates that chunks form one complete version:
// all chunks share the same (DocumentID, Version) and their indices are
// dense and zero-based in slice order.
func ValidateChunkSet(chunks []*Chunk) error {
	for i, chunk := range chunks {
		if err := ValidateChunk(chunk); err != nil {
			return err
		}
		if chunk.DocumentID != chunks[0].DocumentID || chunk.Version != chunks[0].Version {
			return fmt.Errorf("%w: chunk %d belongs to a different version", ErrInvalidChunk, i)
		}
		if chunk.ChunkIndex != i {
			return fmt.Errorf("%w: index %d at position %d", ErrSparseChunkSet, chunk.ChunkIndex, i)
		}
	}
	return nil
}
