package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"example.com/storefront/internal/domain/money"
	domorder "example.com/storefront/internal/domain/order"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// OrderRepository stores confirmed orders and decrements product stock in the
// same transaction. The DSN must set parseTime=true.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *domorder.Order) (retErr error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, item := range o.Items {
		var stock int64
		row := tx.QueryRowContext(ctx, `
            SELECT stock FROM products WHERE id = ? FOR UPDATE
        `, item.ProductID)
		if err := row.Scan(&stock); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("product %d: %w", item.ProductID, ErrInsufficientStock)
			}
			return err
		}
		if stock < item.Quantity {
			return fmt.Errorf("product %d: %w", item.ProductID, ErrInsufficientStock)
		}
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO orders (id, user_id, status, payment_method, shipping_name, shipping_email, shipping_address, total_amount, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, o.ID, o.UserID, o.Status, o.PaymentMethod,
		o.Shipping.Name, o.Shipping.Email, o.Shipping.Address,
		o.Total.String(), o.CreatedAt)
	if err != nil {
		return err
	}

	for _, item := range o.Items {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity)
            VALUES (?, ?, ?, ?, ?)
        `, o.ID, item.ProductID, item.Name, item.UnitPrice.String(), item.Quantity); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
            UPDATE products SET stock = stock - ? WHERE id = ?
        `, item.Quantity, item.ProductID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const orderColumns = `
        SELECT id, user_id, status, payment_method, shipping_name, shipping_email, shipping_address, total_amount, created_at
        FROM orders
    `

func scanOrder(row rowScanner) (*domorder.Order, error) {
	var (
		o     domorder.Order
		total string
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentMethod,
		&o.Shipping.Name, &o.Shipping.Email, &o.Shipping.Address, &total, &o.CreatedAt); err != nil {
		return nil, err
	}
	amount, err := money.Parse(total)
	if err != nil {
		return nil, fmt.Errorf("order %s total: %w", o.ID, err)
	}
	o.Total = amount
	return &o, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domorder.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, orderColumns+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domorder.ErrOrderNotFound
		}
		return nil, err
	}
	if o.Items, err = r.listOrderItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]*domorder.Order, error) {
	rows, err := r.db.QueryContext(ctx, orderColumns+`
        WHERE user_id = ?
        ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domorder.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		if o.Items, err = r.listOrderItems(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *OrderRepository) listOrderItems(ctx context.Context, orderID string) ([]domorder.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT product_id, product_name, unit_price, quantity
        FROM order_items WHERE order_id = ?
    `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domorder.Item
	for rows.Next() {
		var (
			item  domorder.Item
			price string
		)
		if err := rows.Scan(&item.ProductID, &item.Name, &price, &item.Quantity); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = money.Parse(price); err != nil {
			return nil, fmt.Errorf("order %s item price: %w", orderID, err)
		}
		item.Subtotal = item.UnitPrice.Mul(item.Quantity)
		items = append(items, item)
	}
	return items, rows.Err()
}
