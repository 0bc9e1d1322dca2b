package http

import (
	"net/http"

	domuser "example.com/storefront/internal/domain/user"
	sessionuc "example.com/storefront/internal/usecase/session"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	id, err := a.sessionSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapIdentity(id))
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	id, err := a.sessionSvc.Register(r.Context(), sessionuc.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapIdentity(id))
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessionSvc.Logout(r.Context()); err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mapIdentity(getIdentity(r.Context())))
}

func mapIdentity(id *domuser.Identity) map[string]any {
	return map[string]any{
		"id":    id.ID,
		"name":  id.Name,
		"email": id.Email,
		"token": id.Token,
	}
}
