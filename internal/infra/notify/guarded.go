package notify

import (
	"context"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	domorder "example.com/storefront/internal/domain/order"
	"example.com/storefront/internal/infra/resilience"
	orderuc "example.com/storefront/internal/usecase/order"
)

// Guarded stops calling a failing notifier until its breaker half-opens.
type Guarded struct {
	next    orderuc.Notifier
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewGuarded(next orderuc.Notifier, s resilience.Settings, log *zap.Logger) *Guarded {
	if s.Name == "" {
		s.Name = "notifier"
	}
	return &Guarded{next: next, breaker: resilience.NewBreaker[struct{}](s, nil, log)}
}

func (g *Guarded) OrderPlaced(ctx context.Context, o *domorder.Order) error {
	_, err := g.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, g.next.OrderPlaced(ctx, o)
	})
	return resilience.Unavailable(err)
}
