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

import (
	"context"
	"log/slog"
	"time"
)

// RetryWithBackoff calls operation until it succeeds or maxAttempts is
// reached, doubling baseDelay after each failure. It returns the result of
// the first success or the error of the last attempt.
func RetryWithBackoff[T any](ctx context.Context, logger *slog.Logger, maxAttempts int, baseDelay time.Duration, operation func(context.Context) (T, error)) (T, error) {
	var zero T
	if maxAttempts <= 0 {
		return zero, ErrInvalidMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := operation(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return result, nil
		}
		lastErr = err
		logger.Debug("operation failed", "attempt", attempt, "maxAttempts", maxAttempts, "err", err)

		if attempt == maxAttempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return zero, lastErr
}
