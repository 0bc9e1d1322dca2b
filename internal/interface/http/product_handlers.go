package http

import (
	"net/http"
	"strconv"

	domproduct "example.com/storefront/internal/domain/product"
)

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	filter := domproduct.ListFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("q"),
	}

	products, err := a.productSvc.List(r.Context(), filter)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": mapProducts(products)})
}

func (a *API) handleFeaturedProducts(w http.ResponseWriter, r *http.Request) {
	n := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		n = parsed
	}

	products, err := a.productSvc.Featured(r.Context(), n)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": mapProducts(products)})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	p, err := a.productSvc.GetByID(r.Context(), id)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func mapProducts(products []*domproduct.Product) []map[string]any {
	resp := make([]map[string]any, 0, len(products))
	for _, p := range products {
		resp = append(resp, mapProduct(p))
	}
	return resp
}
