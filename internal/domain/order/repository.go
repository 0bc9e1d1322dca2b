package order

import "context"

// Submitter accepts a finalized order. One call is one attempt.
type Submitter interface {
	Submit(ctx context.Context, draft Draft) (*Confirmation, error)
}

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
}
