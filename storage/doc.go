// Copyright 2025 Poiesic Systems
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

// Package storage defines the persistence collaborators of the matching engine.
//
// Three interfaces decouple the engine from storage:
//
//   - FileRegistry: per-document last-modified state and stable resume IDs
//   - FeedbackStore: append-only log of human corrections
//   - VectorStore: chunk embeddings partitioned by rank
//
// The badger sub-package implements all three on a single BadgerDB instance.
// Records are encoded with the mus serializers generated into the core package
// (see MarshalFileRecord, MarshalVectorRecord, MarshalFeedbackRecord).
//
// # Usage
//
//	backend, err := badger.OpenBackend("/var/lib/rankmatch", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	registry := badger.NewFileRegistry(backend)
//	vectors := badger.NewVectorStore(backend, "resumes", 768)
//
// Tests use in-memory storage:
//
//	stores, err := badger.NewMemoryStores()
//
// # Consistency
//
// Registry and vector writes are separate transactions. A crash between them
// leaves the file unrecorded, so the next indexing pass re-embeds it and the
// vector upsert overwrites the same chunk keys.
package storage
