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


package ai

import "errors"

var (
	// ErrUnknownProvider indicates Config.Provider names no supported backend.
	ErrUnknownProvider = errors.New("unknown ai provider")

	// ErrAPIKeyRequired indicates a hosted provider was configured without a key.
	ErrAPIKeyRequired = errors.New("api key is required")

	// ErrHostRequired indicates an OpenAI-compatible host is missing.
	ErrHostRequired = errors.New("host is required")

	// ErrModelRequired indicates a model name is missing.
	ErrModelRequired = errors.New("model is required")

	// ErrUnsupportedAPIVersion indicates a request for an API version the
	// transport cannot reach.
	ErrUnsupportedAPIVersion = errors.New("unsupported api version")

	// ErrEmptyResponse indicates the service answered without usable content.
	ErrEmptyResponse = errors.New("empty response from ai service")

	// ErrCircuitOpen indicates calls are being rejected after repeated failures.
	ErrCircuitOpen = errors.New("ai service circuit breaker is open")
)
