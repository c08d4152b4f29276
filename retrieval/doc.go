// Package retrieval implements semantic search over stored document
// versions: the query is embedded, matched against the vector index and
// the ranked chunks are assembled into a length-bounded context suitable
// for generation. The optional Answer operation feeds that context to a
// generative model and returns the response with source citations.
package retrieval
