package memory

import (
	"context"
	"sort"
	"sync"

	"example.com/storefront/internal/domain/money"
	domproduct "example.com/storefront/internal/domain/product"
	productuc "example.com/storefront/internal/usecase/product"
)

// SampleProducts is the demo storefront catalog.
func SampleProducts() []domproduct.Product {
	return []domproduct.Product{
		{ID: 1, Name: "Premium Laptop", Description: "High-performance laptop with the latest processor and plenty of storage.", Category: "electronics", Price: money.MustParse("1299.99"), Stock: 10},
		{ID: 2, Name: "Coding T-Shirt", Description: "Comfortable cotton t-shirt for developers.", Category: "clothing", Price: money.MustParse("29.99"), Stock: 50},
		{ID: 3, Name: "JavaScript Guide", Description: "Complete guide to modern JavaScript development.", Category: "books", Price: money.MustParse("49.99"), Stock: 25},
		{ID: 4, Name: "Wireless Mouse", Description: "Ergonomic wireless mouse with long battery life.", Category: "electronics", Price: money.MustParse("79.99"), Stock: 30},
		{ID: 5, Name: "Developer Hoodie", Description: "Warm hoodie with a programming-themed design.", Category: "clothing", Price: money.MustParse("59.99"), Stock: 20},
		{ID: 6, Name: "React Handbook", Description: "Learn React from basics to advanced patterns.", Category: "books", Price: money.MustParse("39.99"), Stock: 15},
	}
}

// Catalog is an in-process product source. Returned products are copies.
type Catalog struct {
	mu       sync.RWMutex
	products map[int64]domproduct.Product
}

func NewCatalog(products ...domproduct.Product) *Catalog {
	c := &Catalog{products: make(map[int64]domproduct.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *Catalog) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return nil, domproduct.ErrProductNotFound
	}
	return &p, nil
}

func (c *Catalog) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domproduct.Product, 0, len(c.products))
	for _, p := range c.products {
		if productuc.Matches(&p, filter) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Put adds or replaces a product.
func (c *Catalog) Put(p domproduct.Product) {
	c.mu.Lock()
	c.products[p.ID] = p
	c.mu.Unlock()
}

// Delete removes a product, as when it is withdrawn from sale.
func (c *Catalog) Delete(id int64) {
	c.mu.Lock()
	delete(c.products, id)
	c.mu.Unlock()
}
