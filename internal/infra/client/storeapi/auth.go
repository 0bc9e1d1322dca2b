package storeapi

import (
	"context"
	"fmt"
	"net/http"

	domuser "example.com/storefront/internal/domain/user"
)

// Authenticator signs in against POST /auth/login/ and /auth/register/.
type Authenticator struct {
	c *Client
}

func (c *Client) Authenticator() *Authenticator {
	return &Authenticator{c: c}
}

func (a *Authenticator) Login(ctx context.Context, email, password string) (*domuser.Identity, error) {
	body := map[string]string{"email": domuser.NormalizeEmail(email), "password": password}

	var id domuser.Identity
	if err := a.c.do(ctx, http.MethodPost, "/auth/login/", "", body, &id); err != nil {
		switch statusOf(err) {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound:
			return nil, domuser.ErrInvalidCredentials
		}
		return nil, err
	}
	return &id, nil
}

func (a *Authenticator) Register(ctx context.Context, name, email, password string) (*domuser.Identity, error) {
	body := map[string]string{"name": name, "email": domuser.NormalizeEmail(email), "password": password}

	var id domuser.Identity
	if err := a.c.do(ctx, http.MethodPost, "/auth/register/", "", body, &id); err != nil {
		switch statusOf(err) {
		case http.StatusConflict:
			return nil, fmt.Errorf("%w: %w", domuser.ErrRegistrationFailed, domuser.ErrEmailAlreadyUsed)
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return nil, fmt.Errorf("%w: %w", domuser.ErrRegistrationFailed, err)
		}
		return nil, err
	}
	return &id, nil
}
