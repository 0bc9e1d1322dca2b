package storeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"example.com/storefront/internal/domain/money"
	domproduct "example.com/storefront/internal/domain/product"
)

type productDTO struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Price       json.Number `json:"price"`
	Stock       int64       `json:"stock"`
}

func (d productDTO) toDomain() (*domproduct.Product, error) {
	price, err := money.Parse(d.Price.String())
	if err != nil {
		return nil, fmt.Errorf("product %d price: %w", d.ID, err)
	}
	return &domproduct.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Price:       price,
		Stock:       d.Stock,
	}, nil
}

// Catalog reads products from GET /products/.
type Catalog struct {
	c *Client
}

func (c *Client) Catalog() *Catalog {
	return &Catalog{c: c}
}

func (cat *Catalog) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	var dto productDTO
	if err := cat.c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d/", id), "", nil, &dto); err != nil {
		if statusOf(err) == http.StatusNotFound {
			return nil, domproduct.ErrProductNotFound
		}
		return nil, err
	}
	return dto.toDomain()
}

func (cat *Catalog) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	path := "/products/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var dtos []productDTO
	if err := cat.c.do(ctx, http.MethodGet, path, "", nil, &dtos); err != nil {
		return nil, err
	}

	out := make([]*domproduct.Product, 0, len(dtos))
	for _, d := range dtos {
		p, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
