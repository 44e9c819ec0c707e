package pipeline

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/postforge/postforge/internal/domain"
)

// newBreaker builds a circuit breaker for one upstream. The breaker
// trips after a majority of recent calls fail, so a flapping upstream is
// backed off instead of hammered.
func newBreaker(name string, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 3 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}

// execute runs fn through the breaker and keeps the stage's error kind
// when the breaker rejects the call outright.
func execute[T any](cb *gobreaker.CircuitBreaker, kind domain.ErrorKind, fn func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, &domain.Error{Kind: kind, Message: "upstream unavailable: " + err.Error()}
		}
		return zero, err
	}
	return out.(T), nil
}
