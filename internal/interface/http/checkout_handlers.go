package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domorder "example.com/storefront/internal/domain/order"
	cartuc "example.com/storefront/internal/usecase/cart"
)

// Shipping fields are validated by the cart engine so that an empty cart is
// reported before a bad form.
type checkoutRequest struct {
	Shipping      domorder.ShippingInfo `json:"shipping"`
	PaymentMethod string                `json:"payment_method"`
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := a.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	order, err := a.cartSvc.SubmitOrder(r.Context(), cartuc.CheckoutInput{
		Shipping:      req.Shipping,
		PaymentMethod: domorder.ParsePaymentMethod(req.PaymentMethod),
	}, a.sessionSvc.Current())
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapOrder(order))
}

func (a *API) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	id := getIdentity(r.Context())

	orders, err := a.orderSvc.ListByUser(r.Context(), id.ID)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	resp := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, mapOrder(o))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

// handleMyOrder hides other users' orders behind a 404.
func (a *API) handleMyOrder(w http.ResponseWriter, r *http.Request) {
	id := getIdentity(r.Context())

	o, err := a.orderSvc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	if o.UserID != id.ID {
		a.handleDomainError(w, r, domorder.ErrOrderNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}
