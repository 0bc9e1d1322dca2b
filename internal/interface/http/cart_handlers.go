package http

import (
	"net/http"
)

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity"`
}

// A quantity of zero or less removes the line.
type setCartItemRequest struct {
	Quantity *int64 `json:"quantity" validate:"required"`
}

func (a *API) handleGetCart(w http.ResponseWriter, r *http.Request) {
	snap, err := a.cartSvc.Snapshot(r.Context())
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSnapshot(snap))
}

func (a *API) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	req := addCartItemRequest{Quantity: 1}
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	snap, err := a.cartSvc.AddItem(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapSnapshot(snap))
}

func (a *API) handleSetCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req setCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	snap, err := a.cartSvc.SetItemQuantity(r.Context(), id, *req.Quantity)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSnapshot(snap))
}

func (a *API) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	snap, err := a.cartSvc.RemoveItem(r.Context(), id)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSnapshot(snap))
}
