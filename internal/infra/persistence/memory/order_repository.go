package memory

import (
	"context"
	"sort"
	"sync"

	domorder "example.com/storefront/internal/domain/order"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domorder.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*domorder.Order)}
}

func (r *OrderRepository) Create(ctx context.Context, o *domorder.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domorder.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, domorder.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]*domorder.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domorder.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func cloneOrder(o *domorder.Order) *domorder.Order {
	c := *o
	c.Items = append([]domorder.Item(nil), o.Items...)
	return &c
}
