package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	domuser "example.com/storefront/internal/domain/user"
	"example.com/storefront/internal/logger"
)

// StorageKey is the key the signed-in identity is persisted under.
const StorageKey = "currentUser"

// Authenticator resolves credentials to an identity. Implementations return
// domuser.ErrInvalidCredentials or domuser.ErrRegistrationFailed.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*domuser.Identity, error)
	Register(ctx context.Context, name, email, password string) (*domuser.Identity, error)
}

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Holder tracks at most one signed-in identity.
type Holder struct {
	auth   Authenticator
	store  Store
	logger *zap.Logger

	mu      sync.RWMutex
	current *domuser.Identity
}

func NewHolder(auth Authenticator, store Store, log *zap.Logger) *Holder {
	return &Holder{
		auth:   auth,
		store:  store,
		logger: logger.OrNop(log).Named("session"),
	}
}

// Current returns a copy of the signed-in identity, or nil.
func (h *Holder) Current() *domuser.Identity {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.current == nil {
		return nil
	}
	id := *h.current
	return &id
}

func (h *Holder) Login(ctx context.Context, email, password string) (*domuser.Identity, error) {
	identity, err := h.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	h.signIn(ctx, identity)
	return h.Current(), nil
}

func (h *Holder) Register(ctx context.Context, in RegisterInput) (*domuser.Identity, error) {
	if in.Password != in.ConfirmPassword {
		return nil, domuser.ErrPasswordMismatch
	}
	identity, err := h.auth.Register(ctx, strings.TrimSpace(in.Name), in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	h.signIn(ctx, identity)
	return h.Current(), nil
}

// Logout clears the identity and its persisted copy.
func (h *Holder) Logout(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = nil
	if err := h.store.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Load restores a persisted identity. Unreadable data is discarded.
func (h *Holder) Load(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = nil

	raw, ok, err := h.store.Get(ctx, StorageKey)
	if err != nil {
		h.logger.Warn("failed to load session", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	var identity domuser.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil || identity.Email == "" {
		h.logger.Warn("discarding persisted session", zap.Error(err))
		if err := h.store.Delete(ctx, StorageKey); err != nil {
			h.logger.Warn("failed to delete session", zap.Error(err))
		}
		return
	}
	h.current = &identity
}

func (h *Holder) signIn(ctx context.Context, identity *domuser.Identity) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := *identity
	h.current = &id

	data, err := json.Marshal(id)
	if err != nil {
		h.logger.Error("failed to encode session", zap.Error(err))
		return
	}
	if err := h.store.Set(ctx, StorageKey, string(data)); err != nil {
		h.logger.Warn("failed to persist session", zap.Error(err))
	}
	h.logger.Info("signed in", zap.Int64("user_id", id.ID))
}
