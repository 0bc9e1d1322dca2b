package notify

import (
	"time"

	"example.com/storefront/internal/domain/money"
	domorder "example.com/storefront/internal/domain/order"
)

// OrderPlaced is the payload published for a confirmed order.
type OrderPlaced struct {
	OrderID       string                 `json:"order_id"`
	UserID        int64                  `json:"user_id"`
	Email         string                 `json:"email"`
	Name          string                 `json:"name"`
	PaymentMethod domorder.PaymentMethod `json:"payment_method"`
	Items         []domorder.Item        `json:"items"`
	Total         money.Amount           `json:"total"`
	PlacedAt      time.Time              `json:"placed_at"`
}

func newOrderPlaced(o *domorder.Order) OrderPlaced {
	return OrderPlaced{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Email:         o.Shipping.Email,
		Name:          o.Shipping.Name,
		PaymentMethod: o.PaymentMethod,
		Items:         o.Items,
		Total:         o.Total,
		PlacedAt:      o.CreatedAt,
	}
}
