package order

import (
	"strings"
	"time"

	"example.com/storefront/internal/domain/money"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "CARD"
	PaymentPayPal PaymentMethod = "PAYPAL"
	PaymentCOD    PaymentMethod = "COD"
)

// ParsePaymentMethod normalises form input such as "paypal".
func ParsePaymentMethod(s string) PaymentMethod {
	return PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
}

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCard, PaymentPayPal, PaymentCOD:
		return true
	default:
		return false
	}
}

type ShippingInfo struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required"`
}

type Item struct {
	ProductID int64        `json:"product_id"`
	Name      string       `json:"name"`
	UnitPrice money.Amount `json:"unit_price"`
	Quantity  int64        `json:"quantity"`
	Subtotal  money.Amount `json:"subtotal"`
}

// Draft is the order snapshot handed to a Submitter. Prices are resolved at
// the moment the draft is built. Token is the buyer's bearer credential for
// remote submitters and never serialised.
type Draft struct {
	UserID        int64         `json:"user_id"`
	Token         string        `json:"-"`
	Items         []Item        `json:"items"`
	Shipping      ShippingInfo  `json:"shipping"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Total         money.Amount  `json:"total"`
}

// Confirmation is what a Submitter returns for an accepted order.
type Confirmation struct {
	ID     string       `json:"id"`
	Total  money.Amount `json:"total"`
	Status Status       `json:"status"`
}

type Order struct {
	ID            string
	UserID        int64
	Status        Status
	PaymentMethod PaymentMethod
	Shipping      ShippingInfo
	Items         []Item
	Total         money.Amount
	CreatedAt     time.Time
}

// FromDraft combines a draft with its confirmation.
func FromDraft(d Draft, c *Confirmation, at time.Time) *Order {
	items := make([]Item, len(d.Items))
	copy(items, d.Items)
	return &Order{
		ID:            c.ID,
		UserID:        d.UserID,
		Status:        c.Status,
		PaymentMethod: d.PaymentMethod,
		Shipping:      d.Shipping,
		Items:         items,
		Total:         d.Total,
		CreatedAt:     at,
	}
}
