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


// Package storage provides the vector-index abstraction layer for Revisor.
//
// This package defines the VectorIndex interface that decouples the
// ingestion, retrieval and comparison logic from any specific storage
// engine, plus the binary serialization for chunks and version records.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return the
// storage.VectorIndex interface to enforce abstraction:
//
//	index, err := badger.OpenIndex(path, "pdf_documents")
//
// # Atomicity
//
// Upsert replaces a (document, version) chunk set in one transaction.
// Concurrent Search and FetchOrdered calls against that pair observe
// either the whole old set or the whole new set, never a mix.
//
// # Thread Safety
//
// All VectorIndex implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
