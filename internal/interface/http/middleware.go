package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	domuser "example.com/storefront/internal/domain/user"
)

type ctxKey struct{}

var (
	ctxIdentityKey     = ctxKey{}
	errUnauthenticated = errors.New("unauthenticated")
)

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		a.logger.Info("request completed",
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// requireSession resolves the caller from an Authorization bearer token when
// one is sent, and from the signed-in session otherwise.
func (a *API) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id *domuser.Identity
		if token, ok := bearerToken(r); ok {
			if a.verifier == nil {
				respondError(w, http.StatusUnauthorized, errUnauthenticated)
				return
			}
			verified, err := a.verifier.Verify(token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, errUnauthenticated)
				return
			}
			id = verified
		} else {
			id = a.sessionSvc.Current()
		}
		if id == nil {
			respondError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}
		ctx := context.WithValue(r.Context(), ctxIdentityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", true
	}
	return strings.TrimSpace(parts[1]), true
}

func getIdentity(ctx context.Context) *domuser.Identity {
	if id, ok := ctx.Value(ctxIdentityKey).(*domuser.Identity); ok {
		return id
	}
	return nil
}
