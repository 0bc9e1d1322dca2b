package product

import (
	"context"
	"strings"

	dom "example.com/storefront/internal/domain/product"
)

const DefaultFeatured = 3

type Service struct {
	catalog dom.Catalog
}

func NewService(catalog dom.Catalog) *Service {
	return &Service{catalog: catalog}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*dom.Product, error) {
	p, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, dom.ErrProductNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, filter dom.ListFilter) ([]*dom.Product, error) {
	filter.Category = strings.ToLower(strings.TrimSpace(filter.Category))
	filter.Search = strings.TrimSpace(filter.Search)
	return s.catalog.List(ctx, filter)
}

// Featured returns the first n catalog products. n <= 0 means DefaultFeatured.
func (s *Service) Featured(ctx context.Context, n int) ([]*dom.Product, error) {
	if n <= 0 {
		n = DefaultFeatured
	}
	all, err := s.catalog.List(ctx, dom.ListFilter{})
	if err != nil {
		return nil, err
	}
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// Matches reports whether p satisfies f. Category is compared exactly,
// Search is a case-insensitive substring of name or description.
func Matches(p *dom.Product, f dom.ListFilter) bool {
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}
