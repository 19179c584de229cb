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

import (
	"fmt"
	"time"
)

// ValidateFeedbackRecord validates a FeedbackRecord according to domain rules.
//
// Validation rules:
//   - FileName, Query, LLMDecision and UserDecision must not be empty
//   - LLMConfidence must lie in [0, 1]
//   - Timestamp must not be in the future (zero is allowed; storage fills it in)
//
// NOT validated:
//   - LLMReason and UserNotes (optional free text)
//   - ID (assigned from the storage sequence)
func ValidateFeedbackRecord(record *FeedbackRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidFeedback)
	}

	if record.FileName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFeedback, ErrEmptyFileName)
	}

	if record.Query == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFeedback, ErrEmptyQuery)
	}

	if record.LLMDecision == "" || record.UserDecision == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFeedback, ErrEmptyDecision)
	}

	if err := ValidateConfidence(record.LLMConfidence); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFeedback, err)
	}

	if !record.Timestamp.IsZero() && !IsValidTimestamp(record.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidFeedback, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateConfidence checks that a confidence score lies in [0, 1].
func ValidateConfidence(confidence float64) error {
	if confidence < 0 || confidence > 1 {
		return fmt.Errorf("%w: value %v", ErrInvalidConfidence, confidence)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
