package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	domuser "example.com/storefront/internal/domain/user"
)

type mockAuthenticator struct {
	loginErr    error
	registerErr error
	calls       int
}

func (m *mockAuthenticator) Login(ctx context.Context, email, password string) (*domuser.Identity, error) {
	m.calls++
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &domuser.Identity{ID: 1, Name: "Test User", Email: email, Token: "tok"}, nil
}

func (m *mockAuthenticator) Register(ctx context.Context, name, email, password string) (*domuser.Identity, error) {
	m.calls++
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return &domuser.Identity{ID: 2, Name: name, Email: email}, nil
}

type mockStore struct {
	data   map[string]string
	getErr error
	delErr error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Get(ctx context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockStore) Set(ctx context.Context, key, value string) error {
	m.data[key] = value
	return nil
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.data, key)
	return nil
}

func TestLogin_StoresAndPersistsIdentity(t *testing.T) {
	store := newMockStore()
	h := NewHolder(&mockAuthenticator{}, store, nil)

	id, err := h.Login(context.Background(), "test@example.com", "password")
	require.NoError(t, err)
	require.Equal(t, "test@example.com", id.Email)
	require.Equal(t, id, h.Current())
	require.JSONEq(t, `{"id":1,"name":"Test User","email":"test@example.com","token":"tok"}`, store.data[StorageKey])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	store := newMockStore()
	h := NewHolder(&mockAuthenticator{loginErr: domuser.ErrInvalidCredentials}, store, nil)

	_, err := h.Login(context.Background(), "x@example.com", "nope")
	require.ErrorIs(t, err, domuser.ErrInvalidCredentials)
	require.Nil(t, h.Current())
	require.NotContains(t, store.data, StorageKey)
}

func TestRegister_PasswordMismatchSkipsProvider(t *testing.T) {
	auth := &mockAuthenticator{}
	h := NewHolder(auth, newMockStore(), nil)

	_, err := h.Register(context.Background(), RegisterInput{
		Name: "A", Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret2",
	})
	require.ErrorIs(t, err, domuser.ErrPasswordMismatch)
	require.Equal(t, 0, auth.calls)
}

func TestRegister_Success(t *testing.T) {
	h := NewHolder(&mockAuthenticator{}, newMockStore(), nil)

	id, err := h.Register(context.Background(), RegisterInput{
		Name: "  Ada ", Email: "ada@example.com", Password: "secret", ConfirmPassword: "secret",
	})
	require.NoError(t, err)
	require.Equal(t, "Ada", id.Name)
	require.NotNil(t, h.Current())
}

func TestRegister_Failure(t *testing.T) {
	h := NewHolder(&mockAuthenticator{registerErr: domuser.ErrRegistrationFailed}, newMockStore(), nil)

	_, err := h.Register(context.Background(), RegisterInput{Password: "x", ConfirmPassword: "x"})
	require.ErrorIs(t, err, domuser.ErrRegistrationFailed)
	require.Nil(t, h.Current())
}

func TestLogout(t *testing.T) {
	store := newMockStore()
	h := NewHolder(&mockAuthenticator{}, store, nil)
	ctx := context.Background()

	_, err := h.Login(ctx, "test@example.com", "password")
	require.NoError(t, err)

	require.NoError(t, h.Logout(ctx))
	require.Nil(t, h.Current())
	require.NotContains(t, store.data, StorageKey)
}

func TestLogout_StoreError(t *testing.T) {
	store := newMockStore()
	store.delErr = errors.New("down")
	h := NewHolder(&mockAuthenticator{}, store, nil)

	require.Error(t, h.Logout(context.Background()))
	require.Nil(t, h.Current())
}

func TestLoad(t *testing.T) {
	store := newMockStore()
	store.data[StorageKey] = `{"id":7,"name":"Saved","email":"saved@example.com"}`
	h := NewHolder(&mockAuthenticator{}, store, nil)

	h.Load(context.Background())
	require.Equal(t, &domuser.Identity{ID: 7, Name: "Saved", Email: "saved@example.com"}, h.Current())
}

func TestLoad_Malformed(t *testing.T) {
	for _, raw := range []string{"garbage", "{}", "null"} {
		store := newMockStore()
		store.data[StorageKey] = raw
		h := NewHolder(&mockAuthenticator{}, store, nil)

		h.Load(context.Background())
		require.Nil(t, h.Current(), raw)
		require.NotContains(t, store.data, StorageKey, raw)
	}
}

func TestLoad_StoreError(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("down")
	h := NewHolder(&mockAuthenticator{}, store, nil)

	h.Load(context.Background())
	require.Nil(t, h.Current())
}
