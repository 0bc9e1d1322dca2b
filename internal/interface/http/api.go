package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domcart "example.com/storefront/internal/domain/cart"
	domorder "example.com/storefront/internal/domain/order"
	domproduct "example.com/storefront/internal/domain/product"
	domuser "example.com/storefront/internal/domain/user"
	"example.com/storefront/internal/infra/resilience"
	"example.com/storefront/internal/logger"
	cartuc "example.com/storefront/internal/usecase/cart"
	orderuc "example.com/storefront/internal/usecase/order"
	productuc "example.com/storefront/internal/usecase/product"
	sessionuc "example.com/storefront/internal/usecase/session"
)

// TokenVerifier resolves a bearer token issued at sign-in.
type TokenVerifier interface {
	Verify(token string) (*domuser.Identity, error)
}

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

// API is a JSON view over a single shopper's cart and session.
type API struct {
	productSvc *productuc.Service
	cartSvc    *cartuc.Service
	sessionSvc *sessionuc.Holder
	orderSvc   *orderuc.Service
	verifier   TokenVerifier
	checks     map[string]HealthCheck
	validator  *validator.Validate
	logger     *zap.Logger
}

type Dependencies struct {
	ProductService *productuc.Service
	CartService    *cartuc.Service
	SessionHolder  *sessionuc.Holder
	OrderService   *orderuc.Service
	TokenVerifier  TokenVerifier
	HealthChecks   map[string]HealthCheck
	Logger         *zap.Logger
}

func NewAPI(deps Dependencies) *API {
	return &API{
		productSvc: deps.ProductService,
		cartSvc:    deps.CartService,
		sessionSvc: deps.SessionHolder,
		orderSvc:   deps.OrderService,
		verifier:   deps.TokenVerifier,
		checks:     deps.HealthChecks,
		validator:  validator.New(),
		logger:     logger.OrNop(deps.Logger).Named("http"),
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(a.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.AllowContentType("application/json", "text/plain"))

	r.Get("/health", a.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", a.handleListProducts)
		r.Get("/products/featured", a.handleFeaturedProducts)
		r.Get("/products/{id}", a.handleGetProduct)

		r.Get("/cart", a.handleGetCart)
		r.Post("/cart/items", a.handleAddCartItem)
		r.Put("/cart/items/{id}", a.handleSetCartItem)
		r.Delete("/cart/items/{id}", a.handleRemoveCartItem)

		r.Post("/auth/login", a.handleLogin)
		r.Post("/auth/register", a.handleRegister)
		r.Post("/auth/logout", a.handleLogout)

		r.Post("/checkout", a.handleCheckout)

		r.Group(func(pr chi.Router) {
			pr.Use(a.requireSession)
			pr.Get("/me", a.handleMe)
			pr.Get("/me/orders", a.handleMyOrders)
			pr.Get("/me/orders/{id}", a.handleMyOrder)
		})
	})

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(a.checks))
	for name, check := range a.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	body := map[string]any{"status": "ok"}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if len(results) > 0 {
		body["checks"] = results
	}
	writeJSON(w, status, body)
}

func (a *API) decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	if err := a.decodeJSON(r, dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	idStr := chi.URLParam(r, key)
	return strconv.ParseInt(idStr, 10, 64)
}

func mapProduct(p *domproduct.Product) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"category":    p.Category,
		"price":       p.Price,
		"stock":       p.Stock,
	}
}

func mapSnapshot(s *domcart.Snapshot) map[string]any {
	items := make([]map[string]any, 0, len(s.Lines))
	for _, l := range s.Lines {
		items = append(items, map[string]any{
			"product_id": l.ProductID,
			"name":       l.ProductName,
			"price":      l.UnitPrice,
			"quantity":   l.Quantity,
			"subtotal":   l.Subtotal,
		})
	}
	return map[string]any{
		"items":      items,
		"item_count": s.ItemCount,
		"total":      s.Total,
	}
}

func mapOrder(o *domorder.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, map[string]any{
			"product_id": item.ProductID,
			"name":       item.Name,
			"price":      item.UnitPrice,
			"quantity":   item.Quantity,
			"subtotal":   item.Subtotal,
		})
	}

	return map[string]any{
		"id":             o.ID,
		"user_id":        o.UserID,
		"status":         o.Status,
		"payment_method": o.PaymentMethod,
		"shipping":       o.Shipping,
		"total":          o.Total,
		"created_at":     o.CreatedAt,
		"items":          items,
	}
}

func (a *API) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *domcart.StockExceededError
	switch {
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: err.Error(),
			Details: map[string]int64{
				"product_id": stockErr.ProductID,
				"requested":  stockErr.Requested,
				"stock":      stockErr.Stock,
			},
		})
	case errors.Is(err, domproduct.ErrProductNotFound),
		errors.Is(err, domorder.ErrOrderNotFound),
		errors.Is(err, domuser.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, domcart.ErrStockExceeded),
		errors.Is(err, domcart.ErrInvalidQuantity),
		errors.Is(err, domorder.ErrEmptyCart),
		errors.Is(err, domorder.ErrInvalidPayment),
		errors.Is(err, domorder.ErrCheckoutValidation),
		errors.Is(err, domuser.ErrPasswordMismatch):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, domuser.ErrNotAuthenticated),
		errors.Is(err, domuser.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err)
	case errors.Is(err, domuser.ErrEmailAlreadyUsed),
		errors.Is(err, domorder.ErrSubmissionInProgress):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, domuser.ErrRegistrationFailed):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, domorder.ErrOrderSubmissionFailed),
		errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusBadGateway, err)
	case errors.Is(err, resilience.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, err)
	default:
		a.logger.Error("unhandled error",
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}
