package product

import "context"

// Catalog is the read-only product source the cart engine reconciles against.
type Catalog interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
}
