package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/poiesic/rankmatch/ai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// guard applies rate limiting and circuit breaking to outbound calls.
type guard struct {
	name    string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// newLimiter returns a limiter for rpm requests per minute, or nil when rpm is zero.
func newLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), max(1, rpm/10))
}

func newGuard(name string, limiter *rate.Limiter, config *ai.Config, logger *slog.Logger) *guard {
	g := &guard{name: name, limiter: limiter}
	if config.BreakerFailures == 0 {
		return g
	}

	failures := config.BreakerFailures
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err)
		},
	})
	return g
}

// call waits for the limiter and runs fn inside the breaker.
func (g *guard) call(ctx context.Context, fn func() (any, error)) (any, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if g.breaker == nil {
		return fn()
	}

	result, err := g.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w (%s)", ai.ErrCircuitOpen, g.name)
	}
	return result, err
}

// isClientError reports whether err was caused by the request rather than
// by the service: unknown model, bad argument, auth, or cancellation.
func isClientError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, ai.ErrUnsupportedAPIVersion) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests
	}

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.NotFound, codes.InvalidArgument, codes.PermissionDenied,
			codes.Unauthenticated, codes.FailedPrecondition, codes.Canceled:
			return true
		}
	}
	return false
}
