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

import "encoding/json"

// EventType tags an analysis event.
type EventType string

const (
	EventStatus           EventType = "status"
	EventIndexingStart    EventType = "indexing_start"
	EventIndexingProgress EventType = "indexing_progress"
	EventIndexingComplete EventType = "indexing_complete"
	EventProgress         EventType = "progress"
	EventMatchFound       EventType = "match_found"
	EventUncertainFound   EventType = "uncertain_found"
	EventComplete         EventType = "complete"
	EventError            EventType = "error"
)

// Event is one element of an analysis stream. Optional fields are omitted
// from the JSON form when unset.
type Event struct {
	Type             EventType `json:"type"`
	Current          *int      `json:"current,omitempty"`
	Total            *int      `json:"total,omitempty"`
	Message          string    `json:"message,omitempty"`
	Match            *Match    `json:"match,omitempty"`
	VerifiedMatches  []Match   `json:"verified_matches,omitempty"`
	UncertainMatches []Match   `json:"uncertain_matches,omitempty"`
}

// StatusEvent builds a status message event.
func StatusEvent(message string) Event {
	return Event{Type: EventStatus, Message: message}
}

// ErrorEvent builds a terminal error event.
func ErrorEvent(message string) Event {
	return Event{Type: EventError, Message: message}
}

// CountedEvent builds an event carrying current/total counters.
func CountedEvent(typ EventType, current, total int, message string) Event {
	return Event{Type: typ, Current: &current, Total: &total, Message: message}
}

// MatchEvent builds a match_found or uncertain_found event.
func MatchEvent(typ EventType, match Match, current, total int) Event {
	return Event{Type: typ, Match: &match, Current: &current, Total: &total}
}

// CompleteEvent builds the terminal success event.
func CompleteEvent(verified, uncertain []Match, message string) Event {
	return Event{
		Type:             EventComplete,
		VerifiedMatches:  verified,
		UncertainMatches: uncertain,
		Message:          message,
	}
}

// Counters returns current and total, treating unset values as zero.
func (e Event) Counters() (current, total int) {
	if e.Current != nil {
		current = *e.Current
	}
	if e.Total != nil {
		total = *e.Total
	}
	return current, total
}

// Terminal reports whether the event ends a stream.
func (e Event) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

// MarshalJSON always writes both match lists on complete events.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	if e.Type != EventComplete {
		return json.Marshal(alias(e))
	}
	return json.Marshal(struct {
		alias
		VerifiedMatches  []Match `json:"verified_matches"`
		UncertainMatches []Match `json:"uncertain_matches"`
	}{
		alias:            alias(e),
		VerifiedMatches:  nonNilMatches(e.VerifiedMatches),
		UncertainMatches: nonNilMatches(e.UncertainMatches),
	})
}

func nonNilMatches(m []Match) []Match {
	if m == nil {
		return []Match{}
	}
	return m
}
