// Package compare diffs two stored versions of a document at chunk
// level. Both chunk sequences are fetched in order, a full pairwise
// cosine-similarity matrix is computed on the stored embeddings, and an
// order-preserving DP alignment classifies every chunk as unchanged,
// modified, added or removed. Modified records carry a character-level
// inline diff. SummarizeChanges and QueryChanges narrate a change set
// through the generative model.
package compare
