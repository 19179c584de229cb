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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidFeedback indicates a FeedbackRecord failed validation.
	ErrInvalidFeedback = errors.New("invalid feedback record")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyFileName indicates the FileName field is empty.
	ErrEmptyFileName = errors.New("file name cannot be empty")

	// ErrEmptyQuery indicates the Query field is empty.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrEmptyDecision indicates a decision field is empty.
	ErrEmptyDecision = errors.New("decision cannot be empty")

	// ErrInvalidConfidence indicates a confidence outside [0, 1].
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")
)
