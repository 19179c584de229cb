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

package analysis

import "errors"

var (
	// ErrRankFolderNotFound is returned when a rank has no document folder.
	ErrRankFolderNotFound = errors.New("rank folder not found")

	// ErrRegistryRequired is returned when a file registry is not provided.
	ErrRegistryRequired = errors.New("file registry required")

	// ErrFeedbackStoreRequired is returned when a feedback store is not provided.
	ErrFeedbackStoreRequired = errors.New("feedback store required")

	// ErrIndexerRequired is returned when an indexer is not provided.
	ErrIndexerRequired = errors.New("indexer required")

	// ErrRetrieverRequired is returned when a retriever is not provided.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrReasonerRequired is returned when a reasoner is not provided.
	ErrReasonerRequired = errors.New("reasoner required")

	// ErrInvalidConfig is returned when analysis tunables are out of range.
	ErrInvalidConfig = errors.New("invalid analysis config")

	// ErrStreamInterrupted is returned by Run when the event stream ends
	// without a terminal event.
	ErrStreamInterrupted = errors.New("analysis stream ended early")
)
