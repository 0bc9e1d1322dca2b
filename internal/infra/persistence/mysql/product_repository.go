package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"example.com/storefront/internal/domain/money"
	domproduct "example.com/storefront/internal/domain/product"
)

// ProductRepository is a read-only Catalog over the shop's products table.
// Inactive products are invisible.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `
        SELECT p.id, p.name, p.description, p.price, p.stock, COALESCE(c.slug, '')
        FROM products p
        LEFT JOIN categories c ON c.id = p.category_id
    `

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domproduct.Product, error) {
	var (
		p     domproduct.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Stock, &p.Category); err != nil {
		return nil, err
	}
	amount, err := money.Parse(price)
	if err != nil {
		return nil, fmt.Errorf("product %d price: %w", p.ID, err)
	}
	p.Price = amount
	return &p, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	row := r.db.QueryRowContext(ctx, productColumns+`
        WHERE p.id = ? AND p.is_active = 1
    `, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domproduct.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	query := productColumns
	clauses := []string{"p.is_active = 1"}
	var args []any

	if filter.Category != "" {
		clauses = append(clauses, "c.slug = ?")
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		clauses = append(clauses, "(LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)")
		like := fmt.Sprintf("%%%s%%", strings.ToLower(filter.Search))
		args = append(args, like, like)
	}

	query += " WHERE " + strings.Join(clauses, " AND ")
	query += " ORDER BY p.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domproduct.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
