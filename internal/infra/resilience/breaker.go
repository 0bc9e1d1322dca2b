package resilience

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"example.com/storefront/internal/logger"
)

// ErrUnavailable is returned while a breaker is open or half-open and
// refusing calls.
var ErrUnavailable = errors.New("dependency unavailable")

type Settings struct {
	Name                string
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// NewBreaker trips after more than ConsecutiveFailures failures in a row.
// isSuccessful decides which errors count as failures; nil treats every
// error as one.
func NewBreaker[T any](s Settings, isSuccessful func(error) bool, log *zap.Logger) *gobreaker.CircuitBreaker[T] {
	log = logger.OrNop(log)
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 5 * time.Second
	}

	st := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > s.ConsecutiveFailures
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	}
	return gobreaker.NewCircuitBreaker[T](st)
}

// Unavailable maps the breaker's rejection errors onto ErrUnavailable.
func Unavailable(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrUnavailable, err)
	}
	return err
}
