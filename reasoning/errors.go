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

package reasoning

import "errors"

var (
	// ErrCompleterRequired is returned when a completer is not provided.
	ErrCompleterRequired = errors.New("completer required")

	// ErrInvalidMaxAttempts is returned when max attempts is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNoJSONObject is returned when a reply contains no JSON object.
	ErrNoJSONObject = errors.New("no JSON object in reply")
)
