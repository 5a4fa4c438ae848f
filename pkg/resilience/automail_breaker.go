// Package resilience provides fault tolerance around external service calls.
package resilience

import (
	"time"

	"github.com/sony/gobreaker"

	"automail_server/pkg/logger"
)

// NewBreaker returns a circuit breaker tuned for chatty upstream APIs
// (mail provider, LLM). Trips on 5 consecutive failures or a 60%
// failure ratio over at least 10 requests.
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithComponent("circuit-breaker").
				WithField("breaker", name).
				Warn("state changed from %s to %s", from.String(), to.String())
		},
	}
	return gobreaker.NewCircuitBreaker(settings)
}

// Execute runs fn through the breaker and unwraps the typed result.
func Execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}
