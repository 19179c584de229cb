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

package retrieval

import "errors"

var (
	// ErrVectorStoreRequired is returned when a vector store is not provided.
	ErrVectorStoreRequired = errors.New("vector store required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrFallbackRequired is returned when a keyword fallback is not provided.
	ErrFallbackRequired = errors.New("keyword fallback required")

	// ErrRegistryRequired is returned when a file registry is not provided.
	ErrRegistryRequired = errors.New("file registry required")

	// ErrExtractorRequired is returned when a text extractor is not provided.
	ErrExtractorRequired = errors.New("text extractor required")

	// ErrNoSubQueries is returned when a fan-out is requested with nothing to search.
	ErrNoSubQueries = errors.New("no sub-queries to retrieve")
)
