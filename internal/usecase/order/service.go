package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domorder "example.com/storefront/internal/domain/order"
	"example.com/storefront/internal/logger"
)

// Notifier announces a placed order. Failures never fail the order.
type Notifier interface {
	OrderPlaced(ctx context.Context, o *domorder.Order) error
}

type Option func(*Service)

// WithProcessingDelay simulates a payment backend round trip.
func WithProcessingDelay(d time.Duration) Option {
	return func(s *Service) { s.delay = d }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// Service is the local order processor. It implements domorder.Submitter and
// serves the signed-in user's order history.
type Service struct {
	repo     domorder.Repository
	notifier Notifier
	logger   *zap.Logger
	delay    time.Duration
	now      func() time.Time
	newID    func() string
}

func NewService(repo domorder.Repository, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: logger.OrNop(log).Named("orders"),
		now:    time.Now,
		newID:  func() string { return "ORD-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Submit(ctx context.Context, d domorder.Draft) (*domorder.Confirmation, error) {
	if len(d.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", domorder.ErrOrderSubmissionFailed)
	}
	if !d.PaymentMethod.IsValid() {
		return nil, domorder.ErrInvalidPayment
	}

	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	c := &domorder.Confirmation{
		ID:     s.newID(),
		Total:  d.Total,
		Status: domorder.StatusConfirmed,
	}
	o := domorder.FromDraft(d, c, s.now().UTC())
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("%w: %v", domorder.ErrOrderSubmissionFailed, err)
	}

	s.logger.Info("order confirmed",
		zap.String("order_id", o.ID),
		zap.Int64("user_id", o.UserID),
		zap.Stringer("total", o.Total),
	)

	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(ctx, o); err != nil {
			s.logger.Warn("order notification failed", zap.String("order_id", o.ID), zap.Error(err))
		}
	}

	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domorder.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*domorder.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}
