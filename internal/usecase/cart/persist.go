package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	domcart "example.com/storefront/internal/domain/cart"
	domproduct "example.com/storefront/internal/domain/product"
)

// legacyLine is the browser storefront's stored cart entry.
type legacyLine struct {
	ID       int64 `json:"id"`
	Quantity int64 `json:"quantity"`
}

// Persist writes the full cart under StorageKey.
func (s *Service) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx)
}

func (s *Service) save(ctx context.Context) error {
	c := s.cart
	if c.Lines == nil {
		c.Lines = []domcart.Line{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.store.Set(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// persistLocked saves after a mutation. The in-memory cart stays
// authoritative when the store is unavailable.
func (s *Service) persistLocked(ctx context.Context) {
	if err := s.save(ctx); err != nil {
		s.logger.Warn("failed to persist cart", zap.Error(err))
	}
}

// LoadPersisted restores the cart from the store and reconciles it against
// the catalog. Missing or unreadable data yields an empty cart.
func (s *Service) LoadPersisted(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = domcart.Cart{}

	raw, ok, err := s.store.Get(ctx, StorageKey)
	if err != nil {
		s.logger.Warn("failed to load cart, starting empty", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	lines, err := decodeCart(raw)
	if err != nil {
		s.logger.Warn("discarding persisted cart",
			zap.Error(fmt.Errorf("%w: %v", domcart.ErrPersistenceCorrupt, err)),
		)
		s.persistLocked(ctx)
		return
	}

	var changed bool
	s.cart, changed = s.reconcile(ctx, lines)
	if changed {
		s.persistLocked(ctx)
	}
}

func decodeCart(raw string) ([]domcart.Line, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 {
		return nil, errors.New("empty payload")
	}

	if data[0] == '[' {
		var legacy []legacyLine
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, err
		}
		lines := make([]domcart.Line, 0, len(legacy))
		for _, l := range legacy {
			lines = append(lines, domcart.Line{ProductID: l.ID, Quantity: l.Quantity})
		}
		return lines, nil
	}

	var c domcart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return c.Lines, nil
}

// reconcile merges duplicate lines, drops non-positive quantities and
// products missing from the catalog, and clamps quantities to stock.
// Lines whose product cannot be checked right now are kept unchanged.
func (s *Service) reconcile(ctx context.Context, lines []domcart.Line) (domcart.Cart, bool) {
	var (
		out     domcart.Cart
		changed bool
	)

	for _, line := range lines {
		if line.Quantity <= 0 {
			changed = true
			continue
		}
		if existing := out.Quantity(line.ProductID); existing > 0 {
			changed = true
			line.Quantity = addQuantity(existing, line.Quantity)
		}
		out.Upsert(line.ProductID, line.Quantity)
	}

	for _, line := range out.Clone().Lines {
		p, err := s.lookup(ctx, line.ProductID)
		switch {
		case errors.Is(err, domproduct.ErrProductNotFound):
			s.logger.Info("dropping cart line for unknown product", zap.Int64("product_id", line.ProductID))
			out.Remove(line.ProductID)
			changed = true
		case err != nil:
			s.logger.Warn("cannot verify cart line", zap.Int64("product_id", line.ProductID), zap.Error(err))
		case line.Quantity > p.Stock:
			s.logger.Info("clamping cart line to stock",
				zap.Int64("product_id", line.ProductID),
				zap.Int64("quantity", line.Quantity),
				zap.Int64("stock", p.Stock),
			)
			out.Upsert(line.ProductID, p.Stock)
			changed = true
		}
	}

	return out, changed
}
