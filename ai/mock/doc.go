// Package mock provides test doubles for the ai interfaces.
//
// The mock embedder produces deterministic hash-based vectors and the
// mock generator returns canned responses, so components can be tested
// without network access to AI services.
package mock
