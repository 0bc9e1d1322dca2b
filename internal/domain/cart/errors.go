package cart

import (
	"errors"
	"fmt"
)

var (
	ErrStockExceeded      = errors.New("quantity exceeds available stock")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrPersistenceCorrupt = errors.New("persisted cart is corrupt")
)

// StockExceededError carries the product and limit that rejected a change.
type StockExceededError struct {
	ProductID int64
	Requested int64
	Stock     int64
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("product %d: requested %d, stock %d: %s", e.ProductID, e.Requested, e.Stock, ErrStockExceeded)
}

func (e *StockExceededError) Is(target error) bool {
	return target == ErrStockExceeded
}
