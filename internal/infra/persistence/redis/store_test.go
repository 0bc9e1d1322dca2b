package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestStore_GetSetDelete(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := NewStore(client, "storefront:", 0)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "cart", `{"lines":[]}`))
	raw, err := mr.Get("storefront:cart")
	require.NoError(t, err)
	require.Equal(t, `{"lines":[]}`, raw)

	v, ok, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"lines":[]}`, v)

	require.NoError(t, s.Delete(ctx, "cart"))
	require.False(t, mr.Exists("storefront:cart"))
}

func TestStore_TTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := NewStore(client, "", time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "currentUser", `{"id":1}`))
	require.Equal(t, time.Hour, mr.TTL("currentUser"))

	mr.FastForward(2 * time.Hour)
	_, ok, err := s.Get(ctx, "currentUser")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_ServerError(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := NewStore(client, "", 0)
	mr.Close()

	_, _, err := s.Get(context.Background(), "cart")
	require.Error(t, err)
	require.Error(t, s.Set(context.Background(), "cart", "x"))
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = Connect(context.Background(), "not a url")
	require.Error(t, err)
}
