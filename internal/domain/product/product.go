package product

import "example.com/storefront/internal/domain/money"

type Product struct {
	ID          int64
	Name        string
	Description string
	Category    string
	Price       money.Amount
	Stock       int64
}

// ListFilter narrows a catalog listing. Empty fields match everything.
type ListFilter struct {
	Category string
	Search   string
}
