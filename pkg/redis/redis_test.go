package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAdapter(t *testing.T, prefix string) (*miniredis.Miniredis, RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	adapter, err := NewRedisAdapter(t.Name()+"-"+mr.Addr(), prefix, &Options{Addrs: []string{mr.Addr()}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = adapter.Close() })
	return mr, adapter
}

func TestRedisAdapter_SetGetDel(t *testing.T) {
	mr, adapter := setupAdapter(t, "app-")
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "cards", []byte(`[]`), 0))
	assert.True(t, mr.Exists("app-cards"), "key must be stored with prefix")

	v, err := adapter.Get(ctx, "cards")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), v)

	require.NoError(t, adapter.Del(ctx, "cards", "transactions"))
	_, err = adapter.Get(ctx, "cards")
	assert.ErrorIs(t, err, NilError)
}

func TestRedisAdapter_SetWithTTL(t *testing.T) {
	mr, adapter := setupAdapter(t, "")
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "k", []byte("1"), time.Second))
	mr.FastForward(2 * time.Second)

	_, err := adapter.Get(ctx, "k")
	assert.ErrorIs(t, err, NilError)
}

func TestRedisAdapter_Ping(t *testing.T) {
	mr, adapter := setupAdapter(t, "")

	require.NoError(t, adapter.Ping(context.Background()))
	mr.Close()
	assert.Error(t, adapter.Ping(context.Background()))
}

func TestRedisAdapter_TxPipelined(t *testing.T) {
	mr, adapter := setupAdapter(t, "p:")
	ctx := context.Background()

	_, err := adapter.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, adapter.Prefix()+"a", "1", 0)
		p.Set(ctx, adapter.Prefix()+"b", "2", 0)
		return nil
	})
	require.NoError(t, err)

	v, err := mr.Get("p:a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
	assert.True(t, mr.Exists("p:b"))
}

func TestNewRedisAdapter_CachesByName(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	name := t.Name()
	a, err := NewRedisAdapter(name, "", &Options{Addrs: []string{mr.Addr()}})
	require.NoError(t, err)
	b, err := NewRedisAdapter(name, "other", &Options{Addrs: []string{mr.Addr()}})
	require.NoError(t, err)

	assert.Same(t, a, b)
	require.NoError(t, a.Close())

	c, err := NewRedisAdapter(name, "", &Options{Addrs: []string{mr.Addr()}})
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	require.NoError(t, c.Close())
}

func TestNewRedisAdapter_PingFailure(t *testing.T) {
	_, err := NewRedisAdapter(t.Name(), "", &Options{Addrs: []string{"127.0.0.1:1"}, DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	assert.Error(t, err)
}
