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


package compare

import (
	"context"
	"log/slog"

	"github.com/pagemark/revisor/ai"
	"github.com/pagemark/revisor/core"
	"github.com/pagemark/revisor/storage"
)

const (
	defaultMatchThreshold     = 0.7
	defaultUnchangedThreshold = 0.95
)

// Comparator diffs two stored versions of a document at chunk level.
type Comparator struct {
	index              storage.VectorIndex
	generator          ai.Generator
	matchThreshold     float32
	unchangedThreshold float32
	logger             *slog.Logger
}

// Option configures a Comparator.
type Option func(*Comparator) error

// WithThresholds sets the similarity cutoffs. A matched pair at or
// above unchanged is classified unchanged; between match and unchanged
// it is modified; below match no pairing happens at all.
// Defaults are 0.7 and 0.95.
func WithThresholds(match, unchanged float32) Option {
	return func(c *Comparator) error {
		if match <= 0 || match > unchanged || unchanged > 1 {
			return ErrInvalidThresholds
		}
		c.matchThreshold = match
		c.unchangedThreshold = unchanged
		return nil
	}
}

// WithGenerator enables SummarizeChanges and QueryChanges.
func WithGenerator(generator ai.Generator) Option {
	return func(c *Comparator) error {
		c.generator = generator
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Comparator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewComparator creates a version comparator over the given index.
func NewComparator(index storage.VectorIndex, opts ...Option) (*Comparator, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}

	c := &Comparator{
		index:              index,
		matchThreshold:     defaultMatchThreshold,
		unchangedThreshold: defaultUnchangedThreshold,
		logger:             slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Compare fetches both chunk sequences and classifies every chunk of
// both versions exactly once: unchanged, modified, removed or added.
// Records follow the alignment path, interleaving both sequences in
// their natural order.
func (c *Comparator) Compare(ctx context.Context, documentID, oldVersion, newVersion string) (*core.ChangeSet, error) {
	if documentID == "" || oldVersion == "" || newVersion == "" {
		return nil, ErrInvalidArguments
	}

	oldChunks, err := c.index.FetchOrdered(ctx, documentID, oldVersion)
	if err != nil {
		return nil, err
	}
	newChunks, err := c.index.FetchOrdered(ctx, documentID, newVersion)
	if err != nil {
		return nil, err
	}

	sim := similarityMatrix(oldChunks, newChunks)
	pairs := alignSequences(sim, c.matchThreshold)

	changeSet := &core.ChangeSet{
		DocumentID: documentID,
		OldVersion: oldVersion,
		NewVersion: newVersion,
		Records:    c.buildRecords(oldChunks, newChunks, sim, pairs),
	}

	unchanged, modified, added, removed := changeSet.Counts()
	c.logger.Info("compared versions",
		"documentID", documentID, "old", oldVersion, "new", newVersion,
		"unchanged", unchanged, "modified", modified, "added", added, "removed", removed)

	return changeSet, nil
}

// similarityMatrix computes pairwise cosine similarity on the stored
// embeddings. Chunks with identical content fingerprints short-circuit
// to similarity 1 without touching the vectors.
func similarityMatrix(oldChunks, newChunks []*core.Chunk) [][]float32 {
	oldPrints := make([]core.Fingerprint, len(oldChunks))
	for i, chunk := range oldChunks {
		oldPrints[i] = chunk.Fingerprint()
	}
	newPrints := make([]core.Fingerprint, len(newChunks))
	for j, chunk := range newChunks {
		newPrints[j] = chunk.Fingerprint()
	}

	sim := make([][]float32, len(oldChunks))
	for i := range oldChunks {
		sim[i] = make([]float32, len(newChunks))
		for j := range newChunks {
			if oldPrints[i] == newPrints[j] {
				sim[i][j] = 1
				continue
			}
			sim[i][j] = core.CosineSimilarity(oldChunks[i].Vector, newChunks[j].Vector)
		}
	}
	return sim
}

func (c *Comparator) buildRecords(oldChunks, newChunks []*core.Chunk, sim [][]float32, pairs []alignedPair) []core.ChangeRecord {
	records := make([]core.ChangeRecord, 0, len(oldChunks)+len(newChunks))
	oldPos, newPos := 0, 0

	emitGap := func(untilOld, untilNew int) {
		for ; oldPos < untilOld; oldPos++ {
			records = append(records, core.ChangeRecord{
				Kind:     core.ChangeRemoved,
				OldIndex: oldPos,
				NewIndex: core.NoIndex,
				OldText:  oldChunks[oldPos].Text,
			})
		}
		for ; newPos < untilNew; newPos++ {
			records = append(records, core.ChangeRecord{
				Kind:     core.ChangeAdded,
				OldIndex: core.NoIndex,
				NewIndex: newPos,
				NewText:  newChunks[newPos].Text,
			})
		}
	}

	for _, pair := range pairs {
		emitGap(pair.oldIdx, pair.newIdx)

		record := core.ChangeRecord{
			OldIndex:   pair.oldIdx,
			NewIndex:   pair.newIdx,
			OldText:    oldChunks[pair.oldIdx].Text,
			NewText:    newChunks[pair.newIdx].Text,
			Similarity: sim[pair.oldIdx][pair.newIdx],
		}
		if record.Similarity >= c.unchangedThreshold {
			record.Kind = core.ChangeUnchanged
		} else {
			record.Kind = core.ChangeModified
			record.Diff = inlineDiff(record.OldText, record.NewText)
		}
		records = append(records, record)
		oldPos, newPos = pair.oldIdx+1, pair.newIdx+1
	}
	emitGap(len(oldChunks), len(newChunks))

	return records
}
