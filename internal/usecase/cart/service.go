package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domcart "example.com/storefront/internal/domain/cart"
	"example.com/storefront/internal/domain/money"
	domorder "example.com/storefront/internal/domain/order"
	domproduct "example.com/storefront/internal/domain/product"
	"example.com/storefront/internal/logger"
)

// StorageKey is the key the cart is persisted under.
const StorageKey = "cart"

// Catalog resolves product ids. Implementations return
// domproduct.ErrProductNotFound for unknown ids.
type Catalog interface {
	GetByID(ctx context.Context, id int64) (*domproduct.Product, error)
}

// Store is the string key-value storage the cart is persisted in.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Option configures a Service.
type Option func(*Service)

// WithSubmitTimeout bounds a single order submission. Zero means no limit
// beyond the caller's context.
func WithSubmitTimeout(d time.Duration) Option {
	return func(s *Service) { s.submitTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service is the cart engine. It is the only writer of its cart; every
// successful mutation is persisted before the call returns.
type Service struct {
	catalog       Catalog
	store         Store
	submitter     domorder.Submitter
	validate      *validator.Validate
	logger        *zap.Logger
	submitTimeout time.Duration
	now           func() time.Time

	mu         sync.Mutex
	cart       domcart.Cart
	submitting bool
}

func NewService(catalog Catalog, store Store, submitter domorder.Submitter, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		catalog:   catalog,
		store:     store,
		submitter: submitter,
		validate:  validator.New(),
		logger:    logger.OrNop(log).Named("cart"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddItem adds delta units of a product. The resulting quantity may not
// exceed the product's stock; on failure the cart is left as it was.
func (s *Service) AddItem(ctx context.Context, productID, delta int64) (*domcart.Snapshot, error) {
	if delta < 1 {
		return nil, domcart.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return nil, domorder.ErrSubmissionInProgress
	}

	p, err := s.lookup(ctx, productID)
	if err != nil {
		return nil, err
	}

	existing := s.cart.Quantity(productID)
	if delta > p.Stock-existing {
		return nil, &domcart.StockExceededError{
			ProductID: productID,
			Requested: addQuantity(existing, delta),
			Stock:     p.Stock,
		}
	}
	newQuantity := existing + delta

	s.cart.Upsert(productID, newQuantity)
	s.persistLocked(ctx)
	s.logger.Debug("item added",
		zap.Int64("product_id", productID),
		zap.Int64("quantity", newQuantity),
	)

	return s.snapshotLocked(ctx)
}

// SetItemQuantity replaces a line's quantity. Zero or less removes the line.
func (s *Service) SetItemQuantity(ctx context.Context, productID, quantity int64) (*domcart.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return nil, domorder.ErrSubmissionInProgress
	}

	p, err := s.lookup(ctx, productID)
	if err != nil {
		return nil, err
	}

	if quantity > p.Stock {
		return nil, &domcart.StockExceededError{
			ProductID: productID,
			Requested: quantity,
			Stock:     p.Stock,
		}
	}

	s.cart.Upsert(productID, quantity)
	s.persistLocked(ctx)

	return s.snapshotLocked(ctx)
}

// RemoveItem drops a product's line. Removing an absent product is a no-op.
func (s *Service) RemoveItem(ctx context.Context, productID int64) (*domcart.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return nil, domorder.ErrSubmissionInProgress
	}

	if s.cart.Remove(productID) {
		s.persistLocked(ctx)
	}

	return s.snapshotLocked(ctx)
}

// Total sums live catalog prices over all lines, in cents.
func (s *Service) Total(ctx context.Context) (money.Amount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.snapshotLocked(ctx)
	if err != nil {
		return money.Zero, err
	}
	return snap.Total, nil
}

func (s *Service) Snapshot(ctx context.Context) (*domcart.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked(ctx)
}

// Cart returns a copy of the current lines.
func (s *Service) Cart() domcart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Clone()
}

func (s *Service) ItemCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.ItemCount()
}

// Clear empties the cart and persists the empty state.
func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked(ctx)
}

func (s *Service) clearLocked(ctx context.Context) {
	s.cart = domcart.Cart{}
	s.persistLocked(ctx)
}

func (s *Service) lookup(ctx context.Context, productID int64) (*domproduct.Product, error) {
	p, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domproduct.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}
	if p == nil {
		return nil, domproduct.ErrProductNotFound
	}
	return p, nil
}

func (s *Service) snapshotLocked(ctx context.Context) (*domcart.Snapshot, error) {
	snap := &domcart.Snapshot{
		Lines: make([]domcart.DetailedLine, 0, len(s.cart.Lines)),
	}
	for _, line := range s.cart.Lines {
		p, err := s.lookup(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		subtotal := p.Price.Mul(line.Quantity)
		snap.Lines = append(snap.Lines, domcart.DetailedLine{
			Line:        line,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Subtotal:    subtotal,
		})
		snap.ItemCount += line.Quantity
		snap.Total += subtotal
	}
	return snap, nil
}

// addQuantity adds two non-negative quantities, saturating at math.MaxInt64.
func addQuantity(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}
