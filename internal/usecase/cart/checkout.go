package cart

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"example.com/storefront/internal/domain/money"
	domorder "example.com/storefront/internal/domain/order"
	domuser "example.com/storefront/internal/domain/user"
)

type CheckoutInput struct {
	Shipping      domorder.ShippingInfo
	PaymentMethod domorder.PaymentMethod
}

// SubmitOrder hands a snapshot of the cart to the order submitter. The cart
// is cleared only after the submitter confirms; on failure it is untouched
// and the submitter's error is returned as is. Only one submission may be
// in flight at a time, and the cart cannot change while it is.
func (s *Service) SubmitOrder(ctx context.Context, in CheckoutInput, identity *domuser.Identity) (*domorder.Order, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, domorder.ErrSubmissionInProgress
	}
	draft, err := s.draftLocked(ctx, in, identity)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.submitting = true
	s.mu.Unlock()

	confirmation, err := s.submit(ctx, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false

	if err != nil {
		s.logger.Warn("order submission failed",
			zap.Int64("user_id", identity.ID),
			zap.Stringer("total", draft.Total),
			zap.Error(err),
		)
		return nil, err
	}
	if confirmation == nil {
		return nil, domorder.ErrOrderSubmissionFailed
	}
	if confirmation.Total != draft.Total {
		s.logger.Warn("confirmed total differs from cart total",
			zap.String("order_id", confirmation.ID),
			zap.Stringer("cart_total", draft.Total),
			zap.Stringer("confirmed_total", confirmation.Total),
		)
	}

	s.clearLocked(ctx)
	s.logger.Info("order confirmed",
		zap.String("order_id", confirmation.ID),
		zap.Int64("user_id", identity.ID),
		zap.Stringer("total", draft.Total),
	)

	return domorder.FromDraft(*draft, confirmation, s.now()), nil
}

// submit calls the submitter. A panicking submitter releases the in-flight
// flag before the panic propagates.
func (s *Service) submit(ctx context.Context, draft *domorder.Draft) (*domorder.Confirmation, error) {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.submitting = false
			s.mu.Unlock()
			panic(r)
		}
	}()

	if s.submitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.submitTimeout)
		defer cancel()
	}

	return s.submitter.Submit(ctx, *draft)
}

func (s *Service) draftLocked(ctx context.Context, in CheckoutInput, identity *domuser.Identity) (*domorder.Draft, error) {
	if s.cart.IsEmpty() {
		return nil, domorder.ErrEmptyCart
	}
	if identity == nil {
		return nil, domuser.ErrNotAuthenticated
	}
	if !in.PaymentMethod.IsValid() {
		return nil, domorder.ErrInvalidPayment
	}
	if err := s.validate.Struct(in.Shipping); err != nil {
		return nil, fmt.Errorf("%w: %v", domorder.ErrCheckoutValidation, err)
	}

	snap, err := s.snapshotLocked(ctx)
	if err != nil {
		return nil, err
	}

	draft := &domorder.Draft{
		UserID:        identity.ID,
		Token:         identity.Token,
		Items:         make([]domorder.Item, 0, len(snap.Lines)),
		Shipping:      in.Shipping,
		PaymentMethod: in.PaymentMethod,
		Total:         money.Zero,
	}
	for _, line := range snap.Lines {
		draft.Items = append(draft.Items, domorder.Item{
			ProductID: line.ProductID,
			Name:      line.ProductName,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal,
		})
		draft.Total += line.Subtotal
	}
	return draft, nil
}
